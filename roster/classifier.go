package roster

import "strings"

// DecisionType classifies what kind of decision a topic describes. Roles
// declare affinities to decision types and score higher when the session's
// classified type matches.
type DecisionType string

const (
	DecisionSecurityReview     DecisionType = "security_review"
	DecisionArchitectureReview DecisionType = "architecture_review"
	DecisionProductDecision    DecisionType = "product_decision"
	DecisionCostAnalysis       DecisionType = "cost_analysis"
	DecisionGeneral            DecisionType = "general"
)

// Keyword tables for decision classification. Checked in priority order:
// security concerns outrank architecture, architecture outranks product,
// product outranks cost.
var (
	securityReviewKeywords = []string{
		"security", "authentication", "authorization", "mfa", "credential",
		"vulnerability", "encrypt", "breach", "exploit", "permission",
		"secret", "cve",
	}
	architectureReviewKeywords = []string{
		"architecture", "migrate", "migration", "refactor", "scalab",
		"infrastructure", "database", "latency", "redesign", "platform",
		"monolith", "microservice",
	}
	productDecisionKeywords = []string{
		"product", "feature", "user experience", "customer", "roadmap",
		"launch", "onboarding", "adoption",
	}
	costAnalysisKeywords = []string{
		"cost", "budget", "pricing", "spend", "roi", "invest", "license",
		"vendor", "contract",
	}
)

// ClassifyDecision maps a topic and its context to a decision type using the
// keyword tables. Matching is case-insensitive substring search; the first
// table with a hit wins.
func ClassifyDecision(topic, context string) DecisionType {
	text := strings.ToLower(topic + " " + context)
	switch {
	case containsAny(text, securityReviewKeywords):
		return DecisionSecurityReview
	case containsAny(text, architectureReviewKeywords):
		return DecisionArchitectureReview
	case containsAny(text, productDecisionKeywords):
		return DecisionProductDecision
	case containsAny(text, costAnalysisKeywords):
		return DecisionCostAnalysis
	default:
		return DecisionGeneral
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
