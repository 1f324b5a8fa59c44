package validators

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/Nuntissura/Handshake-sub002/ace"
)

// Determinism rejects a Strict-mode trace with no recorded seed, and a
// Replay-mode trace whose ids_hash does not match the deterministic
// recomputation from its selected evidence ordering.
type Determinism struct{}

func (Determinism) Name() string { return "determinism" }

func (Determinism) ValidatePlan(plan *ace.QueryPlan) error {
	if plan.Determinism == ace.DeterminismReplay && plan.ReplayCacheKey == "" {
		return ace.NewDeterminismViolation("replay mode requires a plan cache key")
	}
	return nil
}

func (Determinism) ValidateTrace(plan *ace.QueryPlan, trace *ace.RetrievalTrace) error {
	switch plan.Determinism {
	case ace.DeterminismStrict:
		if trace.Seed == "" {
			trace.AddSignal(ace.SignalDeterminismMissingSeed, "", "")
			return ace.NewDeterminismViolation("strict mode trace lacks a seed")
		}
	case ace.DeterminismReplay:
		want := ComputeIDsHash(trace.Selected)
		if trace.IDsHash == "" {
			trace.IDsHash = want
		} else if trace.IDsHash != want {
			return ace.NewDeterminismViolation("replay mode ids_hash mismatch")
		}
	}
	return nil
}

// ComputeIDsHash computes the stable hash over the ordered selected source
// IDs that Replay-mode determinism checks against. Ordering is significant:
// callers must present Selected already in its final, stably tie-broken
// rank order.
func ComputeIDsHash(selected []ace.Selected) string {
	ids := make([]string, len(selected))
	for i, s := range selected {
		ids[i] = s.SourceID
	}
	sum := sha256.Sum256([]byte(strings.Join(ids, "\n")))
	return hex.EncodeToString(sum[:])
}
