package ace

// StoreKind identifies which retrieval backend produced a candidate.
type StoreKind string

const (
	StoreContextPacks   StoreKind = "context_packs"
	StoreVectorIndex    StoreKind = "vector_index"
	StoreKeywordIndex   StoreKind = "keyword_index"
	StoreGraph          StoreKind = "graph"
	StoreSessionLog     StoreKind = "session_log"
	StoreLongTermMemory StoreKind = "long_term_memory"
)

// ContentTier classifies a piece of retrieved content for the SFW
// projection. TierUnknown (the zero value) is treated as non-SFW by
// default-deny in the SFW hard-drop guard.
type ContentTier string

const (
	TierSFW       ContentTier = "sfw"
	TierAdultSoft ContentTier = "adult_soft"
	TierAdultHard ContentTier = "adult_hard"
	TierUnknown   ContentTier = ""
)

// PackFreshness distinguishes "stale pack used, acknowledged" (allowed) from
// "stale pack used, regeneration skipped" (blocked) as an explicit enum
// rather than by warning-string mining (§9 open question).
type PackFreshness string

const (
	FreshnessFresh             PackFreshness = "fresh"
	FreshnessStaleAcknowledged PackFreshness = "stale_acknowledged"
	FreshnessStaleRegenSkipped PackFreshness = "stale_regen_skipped"
)

// Candidate is one retrieval hit against a single store, before fusion.
type Candidate struct {
	SourceRef       string
	Store           StoreKind
	Score           float64
	ScoreComponents map[string]float64
	ContentTier     ContentTier
	Freshness       PackFreshness
	// SourceHash is the content hash observed at retrieval time.
	SourceHash string
	// IndexedHash is the content hash recorded when the source was last
	// indexed. A mismatch against SourceHash means the index is stale
	// relative to the live source; the IndexDrift guard rejects on it.
	// Empty means "no drift check configured for this candidate".
	IndexedHash string

	// Promotion describes a LongTermMemory candidate's promotion history
	// from SessionLog, if any. Zero value means "not a promoted candidate".
	Promotion Promotion

	// ClassificationSensitive marks content classified as sensitive for the
	// CloudLeakage guard.
	ClassificationSensitive bool
	// RoutedTier names the tier the candidate was routed to for serving
	// (e.g. "local", "cloud"). The CloudLeakage guard rejects sensitive
	// content routed to any non-local tier.
	RoutedTier string
}

// Promotion records the provenance of a SessionLog→LongTermMemory
// promotion, checked by the MemoryPromotion guard.
type Promotion struct {
	FromSessionLog     bool
	PassedValidation    bool
	ProvenancePreserved bool
}

// Span is a bounded snippet extracted from a candidate.
type Span struct {
	SourceID      string
	Text          string
	TokenEstimate int
	ByteStart     int
	ByteEnd       int
	ContentTier   ContentTier

	// OffloadedArtifactID is set when the span's content was too large to
	// inline and was instead offloaded to an ArtifactHandle by that ID.
	// When set, Text holds a short reference, not the full content.
	OffloadedArtifactID string
}

// BlockKind classifies a Selected entry for the Compaction guard. Only
// Decision and Constraint blocks carry the additional anchoring
// requirements the guard enforces; BlockKindEvidence (the default) does
// not.
type BlockKind string

const (
	BlockKindEvidence   BlockKind = ""
	BlockKindDecision   BlockKind = "decision"
	BlockKindConstraint BlockKind = "constraint"
)

// Selected is one entry in the final, ranked evidence set.
type Selected struct {
	Rank        int
	SourceID    string
	Score       float64
	Rationale   string
	ContentTier ContentTier

	Block BlockKind
	// EvidenceRefs must be non-empty for a Decision block.
	EvidenceRefs []string
	// LawOrRIDAnchor must be non-empty for a Constraint block (a reference
	// into the governing LAW/RID ruleset).
	LawOrRIDAnchor string

	// LocalOnlyPayloadRef, when set, must reference a path under the
	// "/encrypted/" prefix and must not be exportable; checked by the
	// LocalPayload guard.
	LocalOnlyPayloadRef string
	Exportable          bool
}

// TruncationFlag attests that a span exceeding max_read_tokens was
// deliberately truncated rather than silently dropped.
type TruncationFlag struct {
	SourceID string
}

// SignalKind enumerates the tagged validator/pipeline signals attached to a
// trace. This replaces the source's marker-prefixed warning strings
// (§9 "Guard-as-warning-string coupling") with values callers can switch on;
// Warnings() below still projects these to human-readable strings for logs.
type SignalKind string

const (
	SignalDeterminismMissingSeed SignalKind = "determinism:missing_seed"
	SignalStalePackUsed          SignalKind = "stale_pack_used"
	SignalIndexDrift             SignalKind = "index_drift"
	SignalViewModeSFWHardDrop    SignalKind = "view_mode_sfw_hard_drop"
	SignalCompactionMissingRef   SignalKind = "compaction:missing_evidence_ref"
	SignalMemoryPromotion        SignalKind = "memory_promotion"
	SignalCloudLeakage           SignalKind = "cloud_leakage"
	SignalArtifactOffloaded      SignalKind = "artifact_offloaded"
)

// Signal is one tagged, structured trace event. SourceID and Detail are
// populated when relevant to the signal kind; both may be empty.
type Signal struct {
	Kind     SignalKind
	SourceID string
	Detail   string
}

// ProjectionKind names the content-policy projection that was applied to a
// trace, if any.
type ProjectionKind string

// ProjectionKindSFW is the only projection kind defined by this spec.
const ProjectionKindSFW ProjectionKind = "SFW"

// RetrievalTrace is produced by a retrieval step against a plan. It is
// immutable once it has passed the validator chain.
type RetrievalTrace struct {
	Candidates []Candidate
	Spans      []Span
	Selected   []Selected

	TruncationFlags []TruncationFlag
	Signals         []Signal
	Errors          []string

	BudgetsApplied Budgets
	FiltersApplied Filters

	ProjectionApplied   bool
	ProjectionKind      ProjectionKind
	ProjectionRulesetID string

	// Seed mirrors plan.Seed when present; required for DeterminismStrict.
	Seed string
	// CacheKey identifies this trace for DeterminismReplay comparison.
	CacheKey string
	// IDsHash is a stable hash over the ordered selected source IDs; used by
	// Replay mode to assert reproducibility against a prior recorded hash.
	IDsHash string
}

// Warnings projects Signals to human-readable strings for log consumption,
// keeping the tagged Signal slice as the canonical machine-readable record.
func (t *RetrievalTrace) Warnings() []string {
	out := make([]string, 0, len(t.Signals))
	for _, s := range t.Signals {
		switch {
		case s.SourceID != "" && s.Detail != "":
			out = append(out, string(s.Kind)+":"+s.SourceID+":"+s.Detail)
		case s.SourceID != "":
			out = append(out, string(s.Kind)+":"+s.SourceID)
		default:
			out = append(out, string(s.Kind))
		}
	}
	return out
}

// AddSignal appends a tagged signal to the trace.
func (t *RetrievalTrace) AddSignal(kind SignalKind, sourceID, detail string) {
	t.Signals = append(t.Signals, Signal{Kind: kind, SourceID: sourceID, Detail: detail})
}
