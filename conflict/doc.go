// Copyright (c) CouncilFlow Authors.
// Licensed under the MIT License.

// Package conflict detects disagreement between perspectives collected
// in a deliberation round.
//
// # Overview
//
// The Detector compares every pair of perspectives. A pair is in
// tension when the two roles share no stated priority and their
// position texts read as opposing: an antonym pair across the texts,
// an explicit disagreement marker, or a negated restatement of the
// same subject. Qualifying pairs are grouped into named dimensions
// (the topic area the pair disagrees about) and each dimension whose
// aggregate magnitude reaches the caller's threshold is reported as
// one types.Conflict.
//
// Magnitude is (1 - priority overlap) weighted by the pair's average
// confidence, so two confident roles pulling in unrelated directions
// score higher than two hesitant ones.
//
// # Determinism
//
// Detect sorts its input into canonical role order and emits conflicts
// sorted by magnitude descending with ties broken by dimension name.
// Identical inputs always produce identical output.
//
// The pair heuristic is pluggable via WithPairFn for callers that want
// an embedding-based or rule-based assessor instead of the default
// keyword tables.
package conflict
