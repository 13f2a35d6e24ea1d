// Copyright (c) CouncilFlow Authors.
// Licensed under the MIT License.

// Package deliberation runs multi-role deliberation sessions from
// roster to synthesis.
//
// # Overview
//
// The Orchestrator owns the session state machine:
//
//	Init -> Round(1) -> ... -> Round(maxRounds) -> (Synthesizing | Vetoed) -> Done
//
// Init validates the whole configuration and resolves the roster, so
// every configuration error surfaces before the first provider call.
// Each round fans out one provider call per roster role, waits at the
// round barrier, records failed calls as gaps, then detects conflicts
// over the round's perspectives. A round needs at least two successful
// perspectives; below that the session fails with QUORUM_NOT_MET. The
// designated veto role can short-circuit the session by asserting a
// trigger phrase, which suppresses synthesis entirely. With no
// conflicts above the threshold the round loop may exit early. The
// final round's perspectives feed the synthesis strategy chosen at
// Init.
//
// Cancelling the context abandons in-flight calls and yields a
// cancelled result, distinct from a veto.
//
// # Determinism
//
// Perspectives complete in any order, but every aggregation step
// processes them in canonical role order, so provider latency never
// changes the outcome. Observers see events as they happen; the
// session's visibility level only filters what is surfaced, never what
// is computed.
//
// An Orchestrator is safe for concurrent use. Sessions share no
// mutable state beyond the read-only configuration and collaborators.
package deliberation
