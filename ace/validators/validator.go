// Package validators implements the ACE validator chain: the twelve-plus
// guards that run, in a fixed order, over a plan/trace pair before a
// RetrievalTrace is considered fit to hand to a prompt. Each guard
// implements Validator; the first failure aborts the chain (§4.2 step 6).
package validators

import "github.com/Nuntissura/Handshake-sub002/ace"

// Validator is the common capability every guard implements. Ordering is an
// explicit, fixed vector (see Default()), never inferred from registration.
type Validator interface {
	// Name identifies the guard for logging and evidence.
	Name() string
	// ValidatePlan checks the plan alone, before any retrieval runs.
	ValidatePlan(plan *ace.QueryPlan) error
	// ValidateTrace checks a trace produced against plan.
	ValidateTrace(plan *ace.QueryPlan, trace *ace.RetrievalTrace) error
}
