package gates

import (
	"github.com/Nuntissura/Handshake-sub002/corecontext"
	"github.com/Nuntissura/Handshake-sub002/mex"
)

// BudgetGate enforces that a PlannedOperation's resource ceilings, once
// filled in from the engine's registry-declared defaults for any
// unspecified field, do not exceed those defaults. A caller may ask for at
// most the registry default, never more.
type BudgetGate struct {
	Catalog EngineCatalog
}

// Name implements Gate.
func (BudgetGate) Name() mex.GateName { return mex.GateBudget }

// Check implements Gate.
func (g BudgetGate) Check(_ *corecontext.Context, op *mex.PlannedOperation) error {
	if g.Catalog == nil {
		return nil
	}
	decl, ok := g.Catalog.Lookup(op.EngineID)
	if !ok {
		return mex.NewBudgetCeilingExceeded("unknown engine: " + op.EngineID)
	}

	if err := checkCeiling("cpu_millis", op.Budget.CPUMillis, decl.MaxCPUMillis); err != nil {
		return err
	}
	if err := checkCeiling("wall_millis", op.Budget.WallMillis, decl.MaxWallMillis); err != nil {
		return err
	}
	if err := checkCeiling("memory_bytes", op.Budget.MemoryBytes, decl.MaxMemoryBytes); err != nil {
		return err
	}
	if err := checkCeiling("output_bytes", op.Budget.OutputBytes, decl.MaxOutputBytes); err != nil {
		return err
	}

	// Fill in unspecified fields from the registry defaults so downstream
	// adapters observe a fully-resolved budget.
	if op.Budget.CPUMillis == nil {
		v := decl.MaxCPUMillis
		op.Budget.CPUMillis = &v
	}
	if op.Budget.WallMillis == nil {
		v := decl.MaxWallMillis
		op.Budget.WallMillis = &v
	}
	if op.Budget.MemoryBytes == nil {
		v := decl.MaxMemoryBytes
		op.Budget.MemoryBytes = &v
	}
	if op.Budget.OutputBytes == nil {
		v := decl.MaxOutputBytes
		op.Budget.OutputBytes = &v
	}
	return nil
}

func checkCeiling(field string, requested *int64, ceiling int64) error {
	if requested == nil {
		return nil
	}
	if ceiling > 0 && *requested > ceiling {
		return mex.NewBudgetCeilingExceeded(field + " exceeds registry ceiling")
	}
	return nil
}
