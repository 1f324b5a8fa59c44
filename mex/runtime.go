package mex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/Nuntissura/Handshake-sub002/corecontext"
)

// GateChain is the structural interface the six-gate pipeline in
// mex/gates satisfies. Declared here rather than imported, to keep the
// runtime decoupled from any one gate implementation (same pattern as
// ace.ValidatorChain).
type GateChain interface {
	Run(cc *corecontext.Context, op *PlannedOperation) error
}

// Runtime is the Mechanical Engine Runtime: it runs a PlannedOperation
// through the ordered gate chain, then dispatches to the registered
// adapter, and always returns an EngineResult — denial, adapter failure,
// and success are all represented as typed results, never as a bare error
// returned to the caller except when the envelope itself cannot be
// constructed into a result at all.
type Runtime struct {
	Gates    GateChain
	Adapters *AdapterRegistry
	Clock    corecontext.Clock
	// Throttles bounds how often the runtime starts a new invocation per
	// engine (§5: "adapter invocation is where most wall time lives"),
	// keyed by EngineID. Build with mex/gates.Throttles from the registry
	// catalog. A missing entry means unthrottled.
	Throttles map[string]*rate.Limiter
}

// Execute runs op through the gate chain and, on success, the matching
// adapter. Cancellation via ctx surfaces as EngineResult{Cancelled: true,
// Status: StatusFailed}. The adapter invocation is bounded by
// op.Budget.WallMillis (filled in by BudgetGate from the registry ceiling
// when unspecified): exceeding it cancels the in-flight call and is
// reported as an AdapterErrTimeout failure, per §4.3's timeout contract.
func (r Runtime) Execute(ctx context.Context, cc *corecontext.Context, op *PlannedOperation) *EngineResult {
	clock := r.Clock
	if clock == nil {
		clock = corecontext.RealClock{}
	}
	started := clock.Now()

	if r.Gates != nil {
		if err := r.Gates.Run(cc, op); err != nil {
			var denial *GateDenial
			if errors.As(err, &denial) {
				return &EngineResult{
					OpID:      op.OpID,
					Status:    StatusDenied,
					StartedAt: started,
					EndedAt:   clock.Now(),
					Errors:    []EngineError{{Code: string(denial.Code), Message: denial.Error()}},
				}
			}
			return &EngineResult{
				OpID:      op.OpID,
				Status:    StatusDenied,
				StartedAt: started,
				EndedAt:   clock.Now(),
				Errors:    []EngineError{{Code: "HSK-MCP-500-GATE", Message: err.Error()}},
			}
		}
	}

	adapter, ok := r.Adapters.Lookup(op.EngineID)
	if !ok {
		return &EngineResult{
			OpID:      op.OpID,
			Status:    StatusFailed,
			StartedAt: started,
			EndedAt:   clock.Now(),
			Errors:    []EngineError{{Code: "HSK-MCP-404-ENGINE", Message: "no adapter registered for engine " + op.EngineID}},
		}
	}

	select {
	case <-ctx.Done():
		return &EngineResult{
			OpID:      op.OpID,
			Status:    StatusFailed,
			StartedAt: started,
			EndedAt:   clock.Now(),
			Cancelled: true,
			Errors:    []EngineError{{Code: "HSK-MCP-499-CANCELLED", Message: ctx.Err().Error()}},
		}
	default:
	}

	if lim, ok := r.Throttles[op.EngineID]; ok && lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return &EngineResult{
				OpID:      op.OpID,
				Status:    StatusFailed,
				StartedAt: started,
				EndedAt:   clock.Now(),
				Cancelled: true,
				Errors:    []EngineError{{Code: string(AdapterErrTimeout), Message: "invocation throttle: " + err.Error()}},
			}
		}
	}

	execCtx := ctx
	if op.Budget.WallMillis != nil && *op.Budget.WallMillis > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, time.Duration(*op.Budget.WallMillis)*time.Millisecond)
		defer cancel()
	}

	result, err := func() (res *EngineResult, err error) {
		defer func() {
			if p := recover(); p != nil {
				err = &AdapterError{Kind: AdapterErrInternal, Message: fmt.Sprintf("adapter panic: %v", p)}
			}
		}()
		return adapter.Execute(execCtx, op)
	}()
	ended := clock.Now()
	if err != nil {
		if execCtx.Err() == context.DeadlineExceeded {
			return &EngineResult{
				OpID:      op.OpID,
				Status:    StatusFailed,
				StartedAt: started,
				EndedAt:   ended,
				Cancelled: true,
				Errors:    []EngineError{{Code: string(AdapterErrTimeout), Message: "wall_millis budget exceeded"}},
			}
		}
		if ctx.Err() != nil {
			return &EngineResult{
				OpID:      op.OpID,
				Status:    StatusFailed,
				StartedAt: started,
				EndedAt:   ended,
				Cancelled: true,
				Errors:    []EngineError{{Code: "HSK-MCP-499-CANCELLED", Message: ctx.Err().Error()}},
			}
		}
		var aerr *AdapterError
		if errors.As(err, &aerr) {
			return &EngineResult{
				OpID:      op.OpID,
				Status:    StatusFailed,
				StartedAt: started,
				EndedAt:   ended,
				Cancelled: aerr.Kind == AdapterErrTimeout && ctx.Err() != nil,
				Errors:    []EngineError{{Code: string(aerr.Kind), Message: aerr.Error()}},
			}
		}
		return &EngineResult{
			OpID:      op.OpID,
			Status:    StatusFailed,
			StartedAt: started,
			EndedAt:   ended,
			Errors:    []EngineError{{Code: string(AdapterErrInternal), Message: err.Error()}},
		}
	}
	if result == nil {
		return &EngineResult{
			OpID:      op.OpID,
			Status:    StatusFailed,
			StartedAt: started,
			EndedAt:   ended,
			Errors:    []EngineError{{Code: string(AdapterErrInternal), Message: "adapter returned nil result with nil error"}},
		}
	}

	result.OpID = op.OpID
	if result.StartedAt.IsZero() {
		result.StartedAt = started
	}
	if result.EndedAt.IsZero() {
		result.EndedAt = ended
	}
	result.Provenance.OpID = op.OpID
	result.Provenance.EngineID = op.EngineID
	result.Provenance.Inputs = op.Inputs
	result.Provenance.CapabilitiesGranted = op.CapabilitiesRequested
	result.Provenance.Determinism = op.Determinism
	if result.Provenance.Outputs == nil {
		result.Provenance.Outputs = result.Outputs
	}
	return result
}
