package gates

import (
	"github.com/Nuntissura/Handshake-sub002/corecontext"
	"github.com/Nuntissura/Handshake-sub002/mex"
)

// DetGate enforces the determinism lattice (§4.3 gate 6, Testable Property
// 5, boundary scenario S6): a PlannedOperation's declared determinism must
// not exceed the engine's registry-declared determinism_ceiling, and any
// operation at D0 or D1 (fully or mostly reproducible) must carry
// evidence_policy.required so its result is attested rather than trusted
// on the engine's say-so alone.
type DetGate struct {
	Catalog EngineCatalog
}

// Name implements Gate.
func (DetGate) Name() mex.GateName { return mex.GateDet }

// Check implements Gate.
func (g DetGate) Check(_ *corecontext.Context, op *mex.PlannedOperation) error {
	if g.Catalog != nil {
		if decl, ok := g.Catalog.Lookup(op.EngineID); ok {
			if op.Determinism > decl.DeterminismCeiling {
				return mex.NewDetViolation("determinism exceeds engine determinism_ceiling")
			}
		}
	}
	if (op.Determinism == mex.D0 || op.Determinism == mex.D1) && !op.EvidencePolicy.Required {
		return mex.NewDetViolation("determinism D0/D1 requires evidence_policy.required")
	}
	return nil
}
