package gates

import (
	"github.com/Nuntissura/Handshake-sub002/capabilities"
	"github.com/Nuntissura/Handshake-sub002/corecontext"
	"github.com/Nuntissura/Handshake-sub002/mex"
)

// CapabilityGate enforces that every capability a PlannedOperation requests
// is known to the registry and granted to the operation's
// CapabilityProfileID. It checks that profile ID as given on the operation;
// it does not resolve a profile from a job kind, so it does not verify that
// the profile is the one the registry would resolve for the job.
type CapabilityGate struct{}

// Name implements Gate.
func (CapabilityGate) Name() mex.GateName { return mex.GateCapability }

// Check implements Gate.
func (CapabilityGate) Check(cc *corecontext.Context, op *mex.PlannedOperation) error {
	if op.CapabilityProfileID == "" {
		return mex.NewMissingCapability("capability_profile_id is required")
	}
	if cc == nil || cc.Registry == nil {
		return mex.NewMissingCapability("no capability registry available")
	}
	for _, reqStr := range op.CapabilitiesRequested {
		req := capabilities.ID(reqStr)
		if err := cc.Registry.Validate(req); err != nil {
			return mex.NewMissingCapability("unknown capability: " + reqStr)
		}
		if err := cc.Registry.ProfileCan(op.CapabilityProfileID, req); err != nil {
			return mex.NewMissingCapability(err.Error())
		}
	}
	return nil
}
