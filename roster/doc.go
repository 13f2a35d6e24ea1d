// Copyright (c) CouncilFlow Authors.
// Licensed under the MIT License.

/*
Package roster selects which participant roles join a deliberation session.

# Overview

Selection scores every registered role against the session topic and context
using keyword and decision-type heuristics, honors required/excluded
constraints, and fills the roster deterministically: descending score with a
fixed role-priority tiebreak. The scoring heuristic is pluggable through
ScoreFn, so a rule-based or embedding-based scorer can replace the keyword
table without touching the orchestrator.

# Core types

  - RoleDefinition - a role's category, keywords, decision-type affinities
    and tiebreak priority
  - Registry       - role table, registered in code or loaded from YAML;
    read-only at session time and safe to share across sessions
  - ScoreFn        - pluggable scoring hook; KeywordScore is the default
  - Selector       - applies constraints, scoring and balance strategy

# Balance strategies

"technical" and "business" bias scoring toward the matching category.
"balanced" rebalances after filling: when every selected role comes from one
category and a non-required member exists, the lowest-scoring filled role is
swapped for the best role of an unrepresented category.
*/
package roster
