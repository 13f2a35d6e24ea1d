// Copyright (c) CouncilFlow Authors.
// Licensed under the MIT License.

// Package synthesis aggregates a finished perspective set into a single
// recommendation.
//
// # Overview
//
// The Engine applies one of three strategies to the final round's
// perspectives:
//
//   - Consensus groups perspectives by position similarity; the
//     majority group carries the recommendation and minority groups
//     become advisory dissent.
//   - Weighted scores each position group by the sum of its members'
//     configured role weights; unset roles split the residual weight
//     equally.
//   - Facilitator packages the facilitator role's own position, which
//     must engage with at least one other participant's concern.
//
// The strategy set is closed: Strategy has an unexported method, so
// Consensus, Weighted and Facilitator are the only implementations.
// FromConfig converts the serializable strategy name and parameters
// from a session config into the matching variant, rejecting unknown
// names and missing parameters before any deliberation work starts.
//
// Regardless of strategy, the Engine extracts next steps from
// imperative-mood sentences in position statements, revisit triggers
// from conditional-phrased concerns, and consensus points from claims
// shared by at least two participants.
//
// # Determinism
//
// Synthesize is a pure function of its inputs. Perspectives are
// processed in canonical role order and every list in the result has a
// stable order, so identical inputs yield identical results, field for
// field.
package synthesis
