package validators

import "github.com/Nuntissura/Handshake-sub002/ace"

// CacheKey rejects a Strict-mode trace whose cache key is absent or
// malformed. A well-formed cache key is non-empty and, when the plan is in
// Replay mode, matches the plan's ReplayCacheKey exactly.
type CacheKey struct{}

func (CacheKey) Name() string { return "cache_key" }

func (CacheKey) ValidatePlan(*ace.QueryPlan) error { return nil }

func (CacheKey) ValidateTrace(plan *ace.QueryPlan, trace *ace.RetrievalTrace) error {
	if plan.Determinism != ace.DeterminismStrict && plan.Determinism != ace.DeterminismReplay {
		return nil
	}
	if trace.CacheKey == "" {
		return ace.NewValidationFailed("strict/replay mode trace is missing a cache key")
	}
	if plan.Determinism == ace.DeterminismReplay && trace.CacheKey != plan.ReplayCacheKey {
		return ace.NewValidationFailed("cache key does not match plan's replay cache key")
	}
	return nil
}
