package deliberation

import (
	"sync/atomic"
	"time"

	"github.com/BaSui01/councilflow/types"
)

// EventType names what happened inside a running session.
type EventType string

const (
	EventSessionStarted      EventType = "session_started"
	EventRoundStarted        EventType = "round_started"
	EventPerspectiveReceived EventType = "perspective_received"
	EventProviderGap         EventType = "provider_gap"
	EventConflictsDetected   EventType = "conflicts_detected"
	EventRoundCompleted      EventType = "round_completed"
	EventVetoRaised          EventType = "veto_raised"
	EventSessionCompleted    EventType = "session_completed"
)

// Event is one observation from a running session. Which fields are set
// depends on Type: perspective_received carries the perspective,
// conflicts_detected the conflict list, provider_gap the gap, and
// session_completed the terminal status.
type Event struct {
	Type        EventType           `json:"type"`
	SessionID   string              `json:"session_id"`
	Round       int                 `json:"round,omitempty"`
	Role        types.RoleID        `json:"role,omitempty"`
	Status      types.SessionStatus `json:"status,omitempty"`
	Perspective *types.Perspective  `json:"perspective,omitempty"`
	Conflicts   []types.Conflict    `json:"conflicts,omitempty"`
	Gap         *types.ProviderGap  `json:"gap,omitempty"`
	Timestamp   time.Time           `json:"timestamp"`
}

const defaultObserverBuffer = 64

// Observer receives session events through a buffered channel. Sends
// never block the session: when the buffer is full the event is dropped
// and counted. One observer may watch many sessions.
type Observer struct {
	events  chan Event
	dropped atomic.Uint64
}

// NewObserver creates an observer with the given buffer size. A
// non-positive size uses the default of 64.
func NewObserver(buffer int) *Observer {
	if buffer <= 0 {
		buffer = defaultObserverBuffer
	}
	return &Observer{events: make(chan Event, buffer)}
}

// Events returns the receive side of the event stream.
func (o *Observer) Events() <-chan Event {
	return o.events
}

// Dropped returns how many events were discarded because the buffer
// was full.
func (o *Observer) Dropped() uint64 {
	return o.dropped.Load()
}

// Close closes the event channel. Only the owner should call it, and
// only after every session using this observer has returned.
func (o *Observer) Close() {
	close(o.events)
}

func (o *Observer) publish(ev Event) {
	select {
	case o.events <- ev:
	default:
		o.dropped.Add(1)
	}
}

// visibleAt reports whether events of this type are surfaced at the
// given visibility level. Full streams everything, progress everything
// except perspective payloads, summary only the terminal event.
func visibleAt(vis types.Visibility, t EventType) bool {
	switch vis {
	case types.VisibilityFull:
		return true
	case types.VisibilityProgress:
		return t != EventPerspectiveReceived
	default:
		return t == EventSessionCompleted
	}
}
