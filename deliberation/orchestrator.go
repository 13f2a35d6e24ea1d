package deliberation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/councilflow/conflict"
	"github.com/BaSui01/councilflow/internal/metrics"
	"github.com/BaSui01/councilflow/internal/tokens"
	"github.com/BaSui01/councilflow/provider"
	"github.com/BaSui01/councilflow/roster"
	"github.com/BaSui01/councilflow/synthesis"
	"github.com/BaSui01/councilflow/types"
)

// Orchestrator runs deliberation sessions. It is safe for concurrent
// use; each Run owns its session state and the collaborators are
// stateless or internally synchronized.
type Orchestrator struct {
	cfg      *Config
	resolver provider.Resolver
	chain    *provider.Chain

	selector     *roster.Selector
	roleRegistry *roster.Registry
	detector     *conflict.Detector
	engine       *synthesis.Engine
	counter      tokens.Counter

	metrics    *metrics.Collector
	metricsReq *metricsRequest
	tracer     trace.Tracer
	observer   *Observer
	logger     *zap.Logger
}

type metricsRequest struct {
	namespace  string
	registerer prometheus.Registerer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger shared by the orchestrator and any
// collaborators it constructs itself.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSelector replaces the roster selector.
func WithSelector(s *roster.Selector) Option {
	return func(o *Orchestrator) { o.selector = s }
}

// WithRoleRegistry builds the default selector over a custom role
// registry. Ignored when WithSelector is also given.
func WithRoleRegistry(r *roster.Registry) Option {
	return func(o *Orchestrator) { o.roleRegistry = r }
}

// WithDetector replaces the conflict detector.
func WithDetector(d *conflict.Detector) Option {
	return func(o *Orchestrator) { o.detector = d }
}

// WithSynthesisEngine replaces the synthesis engine.
func WithSynthesisEngine(e *synthesis.Engine) Option {
	return func(o *Orchestrator) { o.engine = e }
}

// WithMetrics enables Prometheus metrics under the given namespace,
// registered on reg. An empty namespace uses "councilflow"; a nil reg
// uses the default registerer.
func WithMetrics(namespace string, reg prometheus.Registerer) Option {
	return func(o *Orchestrator) {
		o.metricsReq = &metricsRequest{namespace: namespace, registerer: reg}
	}
}

// WithTracer enables span-per-phase tracing.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = tracer }
}

// WithObserver attaches an event observer. What it receives per
// session is controlled by that session's visibility.
func WithObserver(obs *Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// New creates an Orchestrator. A nil cfg uses DefaultConfig; a non-nil
// cfg is copied and normalized. The resolver maps roster roles to
// providers and must cover every role a session selects.
func New(cfg *Config, resolver provider.Resolver, opts ...Option) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		c := *cfg
		c.normalize()
		cfg = &c
	}

	o := &Orchestrator{cfg: cfg, resolver: resolver}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	base := o.logger
	o.logger = base.With(zap.String("component", "deliberation"))

	if o.selector == nil {
		reg := o.roleRegistry
		if reg == nil {
			reg = roster.DefaultRegistry()
		}
		o.selector = roster.NewSelector(reg, base)
	}
	if o.detector == nil {
		o.detector = conflict.NewDetector(base)
	}
	if o.engine == nil {
		o.engine = synthesis.NewEngine(base)
	}
	if o.metricsReq != nil {
		ns := o.metricsReq.namespace
		if ns == "" {
			ns = "councilflow"
		}
		o.metrics = metrics.NewCollector(ns, o.metricsReq.registerer, base)
	}
	o.counter = tokens.NewCounter(cfg.TokenModel)

	retryPolicy := provider.DefaultRetryPolicy()
	retryPolicy.MaxRetries = cfg.ProviderRetries
	o.chain = provider.NewChain(
		provider.Validate(),
		provider.Retry(retryPolicy),
		provider.Timeout(cfg.CallTimeout),
		provider.Recover(),
	)
	return o
}

// session is the run-scoped state of one Run call.
type session struct {
	id         string
	cfg        types.SessionConfig
	roster     []types.RoleID
	wrapped    map[types.RoleID]provider.Provider
	strategy   synthesis.Strategy
	maxRounds  int
	visibility types.Visibility
	triggers   []string
	prior      string
	result     *types.SessionResult
}

// Run executes one deliberation session to its terminal state. The
// returned result is always inspectable on non-nil: contributions,
// conflicts and gaps survive every failure mode, and Synthesis is set
// exactly when the session completed without a veto.
//
// Configuration errors surface before any provider call, with a nil
// result.
func (o *Orchestrator) Run(ctx context.Context, cfg types.SessionConfig) (*types.SessionResult, error) {
	sess, err := o.initSession(cfg)
	if err != nil {
		o.logger.Warn("session rejected", zap.String("topic", cfg.Topic), zap.Error(err))
		return nil, err
	}

	ctx = types.WithSessionID(ctx, sess.id)
	ctx, end := o.startSpan(ctx, "deliberation.session",
		attribute.String("session.id", sess.id),
		attribute.Int("session.max_rounds", sess.maxRounds),
		attribute.Int("session.roster_size", len(sess.roster)),
	)

	startFields := []zap.Field{
		zap.String("session_id", sess.id),
		zap.String("topic", cfg.Topic),
		zap.Strings("roster", roleStrings(sess.roster)),
		zap.Int("max_rounds", sess.maxRounds),
		zap.String("strategy", string(sess.strategy.Name())),
	}
	if traceID, ok := types.TraceID(ctx); ok {
		startFields = append(startFields, zap.String("trace_id", traceID))
	}
	o.logger.Info("session started", startFields...)
	if o.metrics != nil {
		o.metrics.SessionStarted()
	}
	o.emit(sess, Event{Type: EventSessionStarted})

	err = o.deliberate(ctx, sess)
	o.finalize(sess, err)
	end(err)
	return sess.result, err
}

// initSession validates everything that can be validated without
// calling a provider: field constraints, strategy parameters, roster
// constraints, and provider coverage for every roster role.
func (o *Orchestrator) initSession(cfg types.SessionConfig) (*session, error) {
	if err := validateSessionConfig(&cfg); err != nil {
		return nil, err
	}
	strategy, err := synthesis.FromConfig(cfg.Strategy, cfg.StrategyParams)
	if err != nil {
		return nil, err
	}
	roles, err := o.resolveRoster(cfg)
	if err != nil {
		return nil, err
	}

	wrapped := make(map[types.RoleID]provider.Provider, len(roles))
	for _, role := range roles {
		p, ok := o.resolver.Resolve(role)
		if !ok {
			return nil, types.NewError(types.ErrInsufficientRoster,
				fmt.Sprintf("role %q resolves to no provider", role))
		}
		wrapped[role] = o.chain.Wrap(p)
	}

	maxRounds := cfg.MaxRounds
	if maxRounds == 0 {
		maxRounds = types.DefaultRounds
	}
	visibility := cfg.Visibility
	if visibility == "" {
		visibility = types.VisibilitySummary
	}
	triggers := cfg.VetoTriggers
	if cfg.VetoRole != "" && len(triggers) == 0 {
		triggers = types.DefaultVetoTriggers()
	}

	sess := &session{
		id:         uuid.NewString(),
		cfg:        cfg,
		roster:     roles,
		wrapped:    wrapped,
		strategy:   strategy,
		maxRounds:  maxRounds,
		visibility: visibility,
		triggers:   triggers,
	}
	sess.result = &types.SessionResult{
		SessionID: sess.id,
		Topic:     cfg.Topic,
		StartedAt: time.Now(),
	}
	return sess, nil
}

// resolveRoster produces the canonical participant list, either by
// automatic selection or by validating an explicit roster against the
// same constraints.
func (o *Orchestrator) resolveRoster(cfg types.SessionConfig) ([]types.RoleID, error) {
	if len(cfg.Roster) == 0 {
		roles, err := o.selector.Select(cfg.Topic, cfg.Context, cfg.RosterConfig)
		if err != nil {
			return nil, err
		}
		types.SortRoles(roles)
		return roles, nil
	}
	return validateExplicitRoster(cfg)
}

func validateExplicitRoster(cfg types.SessionConfig) ([]types.RoleID, error) {
	roles := append([]types.RoleID(nil), cfg.Roster...)
	seen := make(map[types.RoleID]bool, len(roles))
	for _, r := range roles {
		if seen[r] {
			return nil, types.NewError(types.ErrInvalidConstraint,
				fmt.Sprintf("role %q appears twice in roster", r))
		}
		seen[r] = true
	}
	for _, required := range cfg.RosterConfig.Required {
		if !seen[required] {
			return nil, types.NewError(types.ErrInvalidConstraint,
				fmt.Sprintf("roster is missing required role %q", required))
		}
	}
	for _, excluded := range cfg.RosterConfig.Excluded {
		if seen[excluded] {
			return nil, types.NewError(types.ErrInvalidConstraint,
				fmt.Sprintf("roster includes excluded role %q", excluded))
		}
	}
	if max := cfg.RosterConfig.MaxParticipants; max > 0 && len(roles) > max {
		return nil, types.NewError(types.ErrInvalidConstraint,
			fmt.Sprintf("roster size %d exceeds max participants %d", len(roles), max))
	}
	if len(roles) < types.MinRosterSize {
		return nil, types.NewError(types.ErrInsufficientRoster,
			fmt.Sprintf("roster size %d is below the %d-role quorum", len(roles), types.MinRosterSize))
	}
	types.SortRoles(roles)
	return roles, nil
}

// deliberate walks the round loop to a terminal state and returns the
// session error, if any. The caller finalizes timings and metrics.
func (o *Orchestrator) deliberate(ctx context.Context, sess *session) error {
	res := sess.result
	lastRound := 0

	for round := 1; round <= sess.maxRounds; round++ {
		if ctx.Err() != nil {
			return o.cancelled(sess, ctx.Err())
		}

		roundStart := time.Now()
		rctx, endRound := o.startSpan(types.WithRound(ctx, round), "deliberation.round", attribute.Int("round", round))
		o.emit(sess, Event{Type: EventRoundStarted, Round: round})

		roundPerspectives := o.collectPerspectives(rctx, sess, round)
		endRound(nil)
		lastRound = round

		if ctx.Err() != nil {
			return o.cancelled(sess, ctx.Err())
		}
		if len(roundPerspectives) < types.Quorum {
			res.Status = types.StatusFailed
			return types.NewError(types.ErrQuorumNotMet,
				fmt.Sprintf("round %d produced %d perspectives, quorum is %d",
					round, len(roundPerspectives), types.Quorum)).WithRound(round)
		}

		conflicts := o.detector.Detect(roundPerspectives, o.cfg.ConflictThreshold)
		res.Conflicts = append(res.Conflicts, conflicts...)
		if len(conflicts) > 0 {
			o.emit(sess, Event{Type: EventConflictsDetected, Round: round, Conflicts: conflicts})
		}
		o.emit(sess, Event{Type: EventRoundCompleted, Round: round})
		if o.metrics != nil {
			o.metrics.RecordRound(round, time.Since(roundStart), len(roundPerspectives), len(conflicts))
		}
		o.logger.Debug("round completed",
			zap.String("session_id", sess.id),
			zap.Int("round", round),
			zap.Int("perspectives", len(roundPerspectives)),
			zap.Int("conflicts", len(conflicts)),
		)

		if veto := checkVeto(sess.cfg.VetoRole, sess.triggers, roundPerspectives, round); veto != nil {
			res.Veto = veto
			res.Status = types.StatusVetoed
			o.logger.Info("veto raised",
				zap.String("session_id", sess.id),
				zap.String("role", string(veto.Role)),
				zap.Int("round", round),
				zap.String("reason", veto.Reason),
			)
			if o.metrics != nil {
				o.metrics.RecordVeto(string(veto.Role))
			}
			o.emit(sess, Event{Type: EventVetoRaised, Round: round, Role: veto.Role})
			return nil
		}

		if o.cfg.EarlyTermination && round < sess.maxRounds && len(conflicts) == 0 {
			o.logger.Info("stable agreement, skipping remaining rounds",
				zap.String("session_id", sess.id),
				zap.Int("round", round),
				zap.Int("max_rounds", sess.maxRounds),
			)
			break
		}
		if round < sess.maxRounds {
			sess.prior = o.digest(roundPerspectives, conflicts)
		}
	}

	final := res.PerspectivesForRound(lastRound)
	synth, err := o.engine.Synthesize(final, sess.strategy)
	if err != nil {
		res.Status = types.StatusFailed
		return err
	}
	res.Synthesis = synth
	res.Status = types.StatusCompleted
	return nil
}

// collectPerspectives fans out one provider call per roster role and
// waits at the round barrier. Failed calls become gaps; they never
// cancel sibling calls. The returned perspectives are in canonical
// order and already appended to the session contributions.
func (o *Orchestrator) collectPerspectives(ctx context.Context, sess *session, round int) []types.Perspective {
	res := sess.result

	g, gctx := errgroup.WithContext(ctx)
	if o.cfg.MaxParallel > 0 {
		g.SetLimit(o.cfg.MaxParallel)
	}
	results := make([]*types.Perspective, len(sess.roster))
	failures := make([]error, len(sess.roster))

	for i, role := range sess.roster {
		i, role := i, role
		g.Go(func() error {
			req := provider.Request{
				Role:         role,
				Topic:        sess.cfg.Topic,
				Context:      sess.cfg.Context,
				Round:        round,
				PriorSummary: sess.prior,
			}
			callStart := time.Now()
			cctx, endCall := o.startSpan(gctx, "deliberation.provider_call",
				attribute.String("role", string(role)),
				attribute.Int("round", round),
			)
			p, err := sess.wrapped[role].Invoke(cctx, req)
			endCall(err)
			if o.metrics != nil {
				o.metrics.RecordProviderCall(string(role), outcomeLabel(err), time.Since(callStart))
			}
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = p
			o.emit(sess, Event{Type: EventPerspectiveReceived, Round: round, Role: role, Perspective: p})
			return nil
		})
	}
	_ = g.Wait()

	var collected []types.Perspective
	for i, role := range sess.roster {
		if p := results[i]; p != nil {
			collected = append(collected, *p)
			continue
		}
		gap := types.ProviderGap{Role: role, Round: round, Reason: gapReason(failures[i])}
		res.Gaps = append(res.Gaps, gap)
		o.logger.Warn("provider gap",
			zap.String("session_id", sess.id),
			zap.String("role", string(role)),
			zap.Int("round", round),
			zap.String("reason", gap.Reason),
		)
		o.emit(sess, Event{Type: EventProviderGap, Round: round, Role: role, Gap: &gap})
	}
	types.SortPerspectives(collected)
	res.Contributions = append(res.Contributions, collected...)
	res.RoundsRun = round
	return collected
}

func (o *Orchestrator) cancelled(sess *session, cause error) error {
	sess.result.Status = types.StatusCancelled
	o.logger.Info("session cancelled",
		zap.String("session_id", sess.id),
		zap.Int("rounds_run", sess.result.RoundsRun),
	)
	return types.NewError(types.ErrSessionCancelled, "session cancelled").WithCause(cause)
}

// finalize stamps timings, records terminal metrics and emits the
// terminal event. It runs exactly once per session.
func (o *Orchestrator) finalize(sess *session, err error) {
	res := sess.result
	res.CompletedAt = time.Now()
	res.Duration = res.CompletedAt.Sub(res.StartedAt)
	if res.Status == "" {
		res.Status = types.StatusFailed
	}
	if o.metrics != nil {
		o.metrics.RecordSession(string(res.Status), res.Duration, res.RoundsRun)
	}
	o.emit(sess, Event{Type: EventSessionCompleted, Status: res.Status})

	if err != nil {
		o.logger.Warn("session finished with error",
			zap.String("session_id", sess.id),
			zap.String("status", string(res.Status)),
			zap.Int("rounds_run", res.RoundsRun),
			zap.Error(err),
		)
		return
	}
	o.logger.Info("session finished",
		zap.String("session_id", sess.id),
		zap.String("status", string(res.Status)),
		zap.Int("rounds_run", res.RoundsRun),
		zap.Duration("duration", res.Duration),
	)
}

func (o *Orchestrator) emit(sess *session, ev Event) {
	if o.observer == nil {
		return
	}
	if !visibleAt(sess.visibility, ev.Type) {
		return
	}
	ev.SessionID = sess.id
	ev.Timestamp = time.Now()
	o.observer.publish(ev)
}

// outcomeLabel classifies a provider call result for metrics.
func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	switch types.GetErrorCode(err) {
	case types.ErrProviderTimeout:
		return "timeout"
	case types.ErrInvalidPerspective:
		return "invalid"
	default:
		return "failed"
	}
}

func gapReason(err error) string {
	if err == nil {
		return "provider returned no perspective"
	}
	return err.Error()
}

func roleStrings(roles []types.RoleID) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
