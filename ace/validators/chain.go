package validators

import "github.com/Nuntissura/Handshake-sub002/ace"

// Chain runs an ordered, fixed sequence of guards. Reordering it changes
// which violation a given input is reported as, so the order below is the
// contract, not an implementation detail (§4.2 step 6, §9 "Dynamic trait
// dispatch").
type Chain struct {
	guards []Validator
}

// Default builds the Chain in the exact order required by §4.2's guard
// table.
func Default() Chain {
	return Chain{guards: []Validator{
		Determinism{},
		Budget{},
		Freshness{},
		IndexDrift{},
		CacheKey{},
		Compaction{},
		MemoryPromotion{},
		CloudLeakage{},
		NewPromptInjection(),
		ArtifactInline{},
		BoundaryRouting{},
		LocalPayload{},
		SFWHardDrop{},
	}}
}

// Guards returns the ordered guard list, primarily for introspection and
// tests asserting on chain order.
func (c Chain) Guards() []Validator { return c.guards }

// ValidatePlan runs every guard's ValidatePlan in order; the first failure
// aborts the chain.
func (c Chain) ValidatePlan(plan *ace.QueryPlan) error {
	for _, g := range c.guards {
		if err := g.ValidatePlan(plan); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTrace runs every guard's ValidateTrace in order; the first
// failure aborts the chain.
func (c Chain) ValidateTrace(plan *ace.QueryPlan, trace *ace.RetrievalTrace) error {
	for _, g := range c.guards {
		if err := g.ValidateTrace(plan, trace); err != nil {
			return err
		}
	}
	return nil
}
