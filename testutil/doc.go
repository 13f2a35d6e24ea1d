// Copyright (c) CouncilFlow Authors.
// Licensed under the MIT License.

// Package testutil provides shared helpers for deliberation tests.
//
// # Overview
//
// The central piece is ScriptedProvider, a builder-style provider.Provider
// with call recording and failure injection: fixed or per-round
// perspectives, transient failures for retry paths, delays that honor
// context cancellation, and a custom invoke hook for anything else.
// BuildRegistry wires a map of providers into a provider.Registry, and
// the context helpers register their cancel functions with t.Cleanup so
// test contexts never outlive their test.
//
// # Usage
//
//	ctx := testutil.TestContext(t)
//	p := testutil.NewScriptedProvider().
//		WithPosition("Adopt the proposal.").
//		WithConfidence(0.9)
//	reg := testutil.BuildRegistry(map[types.RoleID]provider.Provider{
//		"security": p,
//	})
package testutil
