package validators

import "github.com/Nuntissura/Handshake-sub002/ace"

// IndexDrift rejects a trace whose retrieved content hash no longer matches
// the hash recorded when the source was last indexed.
type IndexDrift struct{}

func (IndexDrift) Name() string { return "index_drift" }

func (IndexDrift) ValidatePlan(*ace.QueryPlan) error { return nil }

func (IndexDrift) ValidateTrace(_ *ace.QueryPlan, trace *ace.RetrievalTrace) error {
	for _, c := range trace.Candidates {
		if c.IndexedHash == "" {
			continue
		}
		if c.SourceHash != c.IndexedHash {
			trace.AddSignal(ace.SignalIndexDrift, c.SourceRef, "")
			return ace.NewValidationFailed("index drift detected for source " + c.SourceRef)
		}
	}
	return nil
}
