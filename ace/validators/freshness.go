package validators

import "github.com/Nuntissura/Handshake-sub002/ace"

// Freshness blocks a selected ContextPack candidate that is stale and whose
// regeneration was skipped, while allowing one that is stale but
// acknowledged. Modeled as the explicit PackFreshness enum rather than by
// warning-string presence (§9 open question).
type Freshness struct{}

func (Freshness) Name() string { return "freshness" }

func (Freshness) ValidatePlan(*ace.QueryPlan) error { return nil }

func (Freshness) ValidateTrace(_ *ace.QueryPlan, trace *ace.RetrievalTrace) error {
	selectedSources := make(map[string]bool, len(trace.Selected))
	for _, s := range trace.Selected {
		selectedSources[s.SourceID] = true
	}
	for _, c := range trace.Candidates {
		if c.Store != ace.StoreContextPacks || !selectedSources[c.SourceRef] {
			continue
		}
		switch c.Freshness {
		case ace.FreshnessStaleAcknowledged:
			trace.AddSignal(ace.SignalStalePackUsed, c.SourceRef, "acknowledged")
		case ace.FreshnessStaleRegenSkipped:
			trace.AddSignal(ace.SignalStalePackUsed, c.SourceRef, "regen_skipped")
			return ace.NewContextPackStale(c.SourceRef)
		}
	}
	return nil
}
