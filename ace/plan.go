// Package ace implements the Agent Context Engine retrieval pipeline: a
// plan/trace/validator model that produces auditable, budget-bounded,
// content-policy-compliant evidence bundles for prompts.
package ace

import "fmt"

// QueryKind classifies the intent behind a retrieval so fusion weights and
// validators can specialize.
type QueryKind string

const (
	QueryKindFactLookup    QueryKind = "fact_lookup"
	QueryKindReasoning     QueryKind = "reasoning"
	QueryKindSummarization QueryKind = "summarization"
	QueryKindCodeSearch    QueryKind = "code_search"
	QueryKindChitchat      QueryKind = "chitchat"
)

// DeterminismMode controls how strictly a trace must reproduce byte-for-byte
// across runs.
type DeterminismMode string

const (
	// DeterminismStrict requires a recorded seed and full reproducibility.
	DeterminismStrict DeterminismMode = "strict"
	// DeterminismReplay requires the trace's cache key and ids_hash to match
	// a prior recorded run exactly.
	DeterminismReplay DeterminismMode = "replay"
)

// ViewMode selects the content-policy projection applied to a trace.
type ViewMode string

const (
	// ViewModeSFW triggers the SFW hard-drop projection (§4.2 step 5).
	ViewModeSFW ViewMode = "sfw"
	// ViewModeNSFW is the default: no content-tier projection is applied.
	ViewModeNSFW ViewMode = "nsfw"
)

// Filters narrows a retrieval's candidate universe.
type Filters struct {
	ViewMode ViewMode
}

// DefaultFilters returns the plan default: NSFW (no projection).
func DefaultFilters() Filters {
	return Filters{ViewMode: ViewModeNSFW}
}

// Budgets bounds the evidence a retrieval may return. Every field must be
// positive; Validate enforces this per the BudgetExceeded contract.
type Budgets struct {
	MaxTotalEvidenceTokens  int
	MaxSnippetsTotal        int
	MaxSnippetsPerSource    int
	MaxCandidatesTotal      int
	MaxReadTokens           int
	ToolDeltaInlineCharLimit int
}

// Validate reports the first non-positive budget field found, as a
// BudgetExceeded-shaped error with max=0 signaling "not configured".
func (b Budgets) Validate() error {
	fields := []struct {
		name string
		val  int
	}{
		{"max_total_evidence_tokens", b.MaxTotalEvidenceTokens},
		{"max_snippets_total", b.MaxSnippetsTotal},
		{"max_snippets_per_source", b.MaxSnippetsPerSource},
		{"max_candidates_total", b.MaxCandidatesTotal},
		{"max_read_tokens", b.MaxReadTokens},
		{"tool_delta_inline_char_limit", b.ToolDeltaInlineCharLimit},
	}
	for _, f := range fields {
		if f.val <= 0 {
			return &Error{Code: CodeBudgetExceeded, Field: f.name, Actual: f.val, Max: 0, Message: fmt.Sprintf("budget field %q must be positive, got %d", f.name, f.val)}
		}
	}
	return nil
}

// QueryPlan is a retrieval intent. Once validated it is immutable; a fresh
// QueryPlan value must be constructed for each retrieval.
type QueryPlan struct {
	QueryText       string
	Kind            QueryKind
	PolicyProfileID string
	Determinism     DeterminismMode
	Filters         Filters
	Budgets         Budgets

	// Seed is required in DeterminismStrict mode; the pipeline copies it
	// onto the trace as the recorded seed. Fusion tie-breaks do not consult
	// it: they order by ascending SourceRef.
	Seed string
	// ReplayCacheKey is required in DeterminismReplay mode; RetrievalTrace's
	// CacheKey must match this value exactly.
	ReplayCacheKey string

	// ModelTier and LayerScope, together with PolicyProfileID, form the job
	// boundary the BoundaryRouting guard protects: none of the three may
	// change for the lifetime of a job.
	ModelTier  string
	LayerScope string
	// Boundary carries the values recorded at job start, for comparison
	// against the current plan's PolicyProfileID/ModelTier/LayerScope. The
	// zero value (all fields empty) means "no boundary established yet",
	// under which the BoundaryRouting guard is a no-op.
	Boundary JobBoundary
}

// JobBoundary snapshots the three fields that must not change mid-job.
type JobBoundary struct {
	PolicyProfileID string
	ModelTier       string
	LayerScope      string
}

// Established reports whether a non-empty boundary baseline exists.
func (b JobBoundary) Established() bool {
	return b.PolicyProfileID != "" || b.ModelTier != "" || b.LayerScope != ""
}
