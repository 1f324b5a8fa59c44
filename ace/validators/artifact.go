package validators

import "github.com/Nuntissura/Handshake-sub002/ace"

// ArtifactInline rejects any inline delta exceeding the plan's
// tool_delta_inline_char_limit that was not offloaded to an ArtifactHandle.
type ArtifactInline struct{}

func (ArtifactInline) Name() string { return "artifact_inline" }

func (ArtifactInline) ValidatePlan(*ace.QueryPlan) error { return nil }

func (ArtifactInline) ValidateTrace(plan *ace.QueryPlan, trace *ace.RetrievalTrace) error {
	limit := plan.Budgets.ToolDeltaInlineCharLimit
	for _, s := range trace.Spans {
		if len(s.Text) <= limit {
			continue
		}
		if s.OffloadedArtifactID == "" {
			return ace.NewInlineDeltaExceeded(len(s.Text), limit)
		}
		trace.AddSignal(ace.SignalArtifactOffloaded, s.SourceID, s.OffloadedArtifactID)
	}
	return nil
}
