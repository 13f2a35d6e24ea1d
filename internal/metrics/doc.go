// Copyright (c) CouncilFlow Authors.
// Licensed under the MIT License.

/*
Package metrics provides Prometheus-based metrics collection for the
deliberation engine: sessions, rounds, provider calls and vetoes.

# Overview

The Collector registers its metrics through promauto against an injectable
prometheus.Registerer, so the embedding application controls exposition and
tests can use a private registry. All metrics share one namespace.

# Metrics

  - sessions_total / session_duration_seconds / session_rounds, by terminal
    status (completed, vetoed, cancelled, failed)
  - active_sessions gauge
  - round_duration_seconds / round_perspectives / conflicts_detected_total
  - provider_calls_total / provider_call_duration_seconds, by role and
    outcome (ok, timeout, failed, invalid)
  - vetoes_total by role
*/
package metrics
