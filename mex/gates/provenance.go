package gates

import (
	"github.com/google/uuid"

	"github.com/Nuntissura/Handshake-sub002/corecontext"
	"github.com/Nuntissura/Handshake-sub002/mex"
)

// ProvenanceGate enforces that every input artifact a PlannedOperation
// references is a well-formed handle — a non-nil artifact ID and a
// non-empty path — so that the ProvenanceRecord the runtime eventually
// emits can trace every output back to real, addressable inputs. Bulk data
// never crosses this boundary inline; an ArtifactHandle is the only
// admissible shape (§3 "Design Notes").
type ProvenanceGate struct{}

// Name implements Gate.
func (ProvenanceGate) Name() mex.GateName { return mex.GateProvenance }

// Check implements Gate.
func (ProvenanceGate) Check(_ *corecontext.Context, op *mex.PlannedOperation) error {
	for _, in := range op.Inputs {
		if in.ArtifactID == uuid.Nil {
			return mex.NewProvenanceIncomplete("input artifact missing artifact_id")
		}
		if in.Path == "" {
			return mex.NewProvenanceIncomplete("input artifact missing path")
		}
	}
	return nil
}
