// Copyright (c) CouncilFlow Authors.
// Licensed under the MIT License.

/*
Package types provides the shared data model for the CouncilFlow engine.

# Overview

types is the lowest-level package in the module. It depends on no other
CouncilFlow package and only on the standard library, so every other package
(roster, conflict, synthesis, provider, deliberation) can import it without
cycles. All cross-package contracts live here: the session configuration, the
perspective and conflict records, the synthesis output, and the structured
error taxonomy.

# Core types

  - RoleID          - opaque participant role identifier
  - RosterConfig    - automatic roster selection constraints
  - SessionConfig   - immutable per-session request (topic, rounds, strategy)
  - Perspective     - one role's position, reasoning, concerns and confidence
  - Conflict        - a detected disagreement dimension between roles
  - VetoSignal      - terminal interrupt raised by the designated veto role
  - SessionResult   - terminal session record (contributions, conflicts,
    gaps, optional veto, optional synthesis)
  - SynthesisResult - aggregated recommendation with dissent and follow-ups
  - Error/ErrorCode - structured error taxonomy with retryability and cause

# Conventions

  - Enumerations are typed strings with package constants.
  - All sorting helpers establish the canonical (deterministic) orderings
    the engine relies on: roles lexicographic, conflicts by magnitude.
  - Context propagation: WithSessionID / SessionID, WithRound / Round.
*/
package types
