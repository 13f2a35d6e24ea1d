package roster

import "strings"

// Scoring weights for the default keyword heuristic. Topic hits count double
// because the topic states the decision itself; context is supporting detail.
const (
	topicKeywordWeight   = 2.0
	contextKeywordWeight = 1.0
	decisionTypeBoost    = 2.0
	categoryBiasFactor   = 1.25
)

// ScoreFn scores a role's relevance to a topic. Higher is more relevant.
// Implementations must be pure: identical inputs yield identical scores.
type ScoreFn func(topic, context string, role RoleDefinition) float64

// KeywordScore is the default scoring heuristic: keyword hits in topic and
// context plus a boost when the classified decision type matches one of the
// role's declared affinities. Each keyword counts at most once per field.
func KeywordScore(topic, context string, role RoleDefinition) float64 {
	lowerTopic := strings.ToLower(topic)
	lowerContext := strings.ToLower(context)

	score := 0.0
	for _, kw := range role.Keywords {
		k := strings.ToLower(kw)
		if strings.Contains(lowerTopic, k) {
			score += topicKeywordWeight
		}
		if lowerContext != "" && strings.Contains(lowerContext, k) {
			score += contextKeywordWeight
		}
	}

	decision := ClassifyDecision(topic, context)
	for _, d := range role.DecisionTypes {
		if d == decision {
			score += decisionTypeBoost
			break
		}
	}
	return score
}
