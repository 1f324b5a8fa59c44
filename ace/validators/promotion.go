package validators

import "github.com/Nuntissura/Handshake-sub002/ace"

// MemoryPromotion rejects a SessionLog→LongTermMemory promotion that did
// not pass a ValidationResult, or that did not preserve provenance.
type MemoryPromotion struct{}

func (MemoryPromotion) Name() string { return "memory_promotion" }

func (MemoryPromotion) ValidatePlan(*ace.QueryPlan) error { return nil }

func (MemoryPromotion) ValidateTrace(_ *ace.QueryPlan, trace *ace.RetrievalTrace) error {
	for _, c := range trace.Candidates {
		if c.Store != ace.StoreLongTermMemory || !c.Promotion.FromSessionLog {
			continue
		}
		trace.AddSignal(ace.SignalMemoryPromotion, c.SourceRef, "")
		if !c.Promotion.PassedValidation {
			return ace.NewMemoryPromotionBlocked("promotion of " + c.SourceRef + " did not pass validation")
		}
		if !c.Promotion.ProvenancePreserved {
			return ace.NewMemoryPromotionBlocked("promotion of " + c.SourceRef + " did not preserve provenance")
		}
	}
	return nil
}
