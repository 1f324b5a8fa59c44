package validators

import "github.com/Nuntissura/Handshake-sub002/ace"

// CloudLeakage rejects a trace that routes sensitively classified content to
// a non-local serving tier.
type CloudLeakage struct{}

func (CloudLeakage) Name() string { return "cloud_leakage" }

func (CloudLeakage) ValidatePlan(*ace.QueryPlan) error { return nil }

func (CloudLeakage) ValidateTrace(_ *ace.QueryPlan, trace *ace.RetrievalTrace) error {
	for _, c := range trace.Candidates {
		if !c.ClassificationSensitive {
			continue
		}
		if c.RoutedTier != "" && c.RoutedTier != "local" {
			trace.AddSignal(ace.SignalCloudLeakage, c.SourceRef, c.RoutedTier)
			return ace.NewValidationFailed("sensitive source " + c.SourceRef + " routed to non-local tier " + c.RoutedTier)
		}
	}
	return nil
}
