package validators

import "github.com/Nuntissura/Handshake-sub002/ace"

// BoundaryRouting rejects a plan whose policy_profile_id, model_tier, or
// layer_scope differ from the boundary recorded at job start.
type BoundaryRouting struct{}

func (BoundaryRouting) Name() string { return "boundary_routing" }

func (BoundaryRouting) ValidatePlan(plan *ace.QueryPlan) error {
	if !plan.Boundary.Established() {
		return nil
	}
	if plan.Boundary.PolicyProfileID != plan.PolicyProfileID {
		return ace.NewJobBoundaryViolation("policy_profile_id", plan.Boundary.PolicyProfileID, plan.PolicyProfileID)
	}
	if plan.Boundary.ModelTier != plan.ModelTier {
		return ace.NewJobBoundaryViolation("model_tier", plan.Boundary.ModelTier, plan.ModelTier)
	}
	if plan.Boundary.LayerScope != plan.LayerScope {
		return ace.NewJobBoundaryViolation("layer_scope", plan.Boundary.LayerScope, plan.LayerScope)
	}
	return nil
}

func (BoundaryRouting) ValidateTrace(*ace.QueryPlan, *ace.RetrievalTrace) error { return nil }
