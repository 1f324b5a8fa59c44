package validators

import "github.com/Nuntissura/Handshake-sub002/ace"

// SFWHardDrop asserts SFW closure (§8 Testable Property 4): after the
// projection step, no candidate, span, or selected entry may have a
// non-SFW content tier. This guard runs last in the chain and catches any
// projection bug upstream rather than re-deriving the projection itself.
type SFWHardDrop struct{}

func (SFWHardDrop) Name() string { return "sfw_hard_drop" }

func (SFWHardDrop) ValidatePlan(*ace.QueryPlan) error { return nil }

func (SFWHardDrop) ValidateTrace(plan *ace.QueryPlan, trace *ace.RetrievalTrace) error {
	if plan.Filters.ViewMode != ace.ViewModeSFW {
		return nil
	}
	for _, c := range trace.Candidates {
		if c.ContentTier != ace.TierSFW {
			return ace.NewValidationFailed("non-SFW candidate survived projection: " + c.SourceRef)
		}
	}
	for _, s := range trace.Spans {
		if s.ContentTier != ace.TierSFW {
			return ace.NewValidationFailed("non-SFW span survived projection: " + s.SourceID)
		}
	}
	for _, s := range trace.Selected {
		if s.ContentTier != ace.TierSFW {
			return ace.NewValidationFailed("non-SFW selected entry survived projection: " + s.SourceID)
		}
	}
	if !trace.ProjectionApplied || trace.ProjectionKind != ace.ProjectionKindSFW {
		return ace.NewValidationFailed("SFW view mode requires projection_applied=true and projection_kind=SFW")
	}
	return nil
}
