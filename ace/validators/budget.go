package validators

import "github.com/Nuntissura/Handshake-sub002/ace"

// Budget enforces the plan's evidence budgets against the produced trace
// (§8 Testable Property 2, boundary scenario S2).
type Budget struct{}

func (Budget) Name() string { return "budget" }

func (Budget) ValidatePlan(plan *ace.QueryPlan) error {
	return plan.Budgets.Validate()
}

func (Budget) ValidateTrace(plan *ace.QueryPlan, trace *ace.RetrievalTrace) error {
	b := plan.Budgets

	total := 0
	perSource := map[string]int{}
	for _, s := range trace.Spans {
		total += s.TokenEstimate
		perSource[s.SourceID]++
		if s.TokenEstimate > b.MaxReadTokens && !hasTruncationFlag(trace, s.SourceID) {
			return ace.NewTruncationFlagMissing(s.SourceID)
		}
	}
	if total > b.MaxTotalEvidenceTokens {
		return ace.NewBudgetExceeded("max_total_evidence_tokens", total, b.MaxTotalEvidenceTokens)
	}
	if len(trace.Spans) > b.MaxSnippetsTotal {
		return ace.NewBudgetExceeded("max_snippets_total", len(trace.Spans), b.MaxSnippetsTotal)
	}
	for source, count := range perSource {
		if count > b.MaxSnippetsPerSource {
			return ace.NewBudgetExceeded("max_snippets_per_source", count, b.MaxSnippetsPerSource)
		}
		_ = source
	}
	if len(trace.Candidates) > b.MaxCandidatesTotal {
		return ace.NewBudgetExceeded("max_candidates_total", len(trace.Candidates), b.MaxCandidatesTotal)
	}
	return nil
}

func hasTruncationFlag(trace *ace.RetrievalTrace, sourceID string) bool {
	for _, f := range trace.TruncationFlags {
		if f.SourceID == sourceID {
			return true
		}
	}
	return false
}
