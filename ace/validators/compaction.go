package validators

import "github.com/Nuntissura/Handshake-sub002/ace"

// Compaction rejects a Decision block lacking evidence_refs, or a
// Constraint block lacking a LAW/RID anchor.
type Compaction struct{}

func (Compaction) Name() string { return "compaction" }

func (Compaction) ValidatePlan(*ace.QueryPlan) error { return nil }

func (Compaction) ValidateTrace(_ *ace.QueryPlan, trace *ace.RetrievalTrace) error {
	for _, s := range trace.Selected {
		switch s.Block {
		case ace.BlockKindDecision:
			if len(s.EvidenceRefs) == 0 {
				trace.AddSignal(ace.SignalCompactionMissingRef, s.SourceID, "decision")
				return ace.NewCompactionSchemaViolation("decision block " + s.SourceID + " lacks evidence_refs")
			}
		case ace.BlockKindConstraint:
			if s.LawOrRIDAnchor == "" {
				trace.AddSignal(ace.SignalCompactionMissingRef, s.SourceID, "constraint")
				return ace.NewCompactionSchemaViolation("constraint block " + s.SourceID + " lacks a LAW/RID anchor")
			}
		}
	}
	return nil
}
