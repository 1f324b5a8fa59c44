package ace

import (
	"context"
	"sort"
	"strconv"
)

// RRFK is the reciprocal-rank-fusion constant fixed by §4.2 step 3.
const RRFK = 60

// CandidateSource produces a scored candidate set from one retrieval
// backend for a plan.
type CandidateSource interface {
	Kind() StoreKind
	Generate(ctx context.Context, plan *QueryPlan) ([]Candidate, error)
}

// SpanExtractor materializes bounded snippets for a fused candidate.
// Implementations are responsible for respecting plan.Budgets.MaxReadTokens
// themselves only insofar as deciding span boundaries; the pipeline (not
// the extractor) is responsible for attaching truncation flags.
type SpanExtractor interface {
	Extract(ctx context.Context, plan *QueryPlan, candidate Candidate) ([]Span, error)
}

// ValidatorChain is the structural interface the 13-guard chain in
// ace/validators satisfies. It is declared here, not imported from that
// package, so the pipeline stays decoupled from any one guard
// implementation (§9 "Dynamic trait dispatch": a fixed-order vector, not a
// registration mechanism).
type ValidatorChain interface {
	ValidatePlan(plan *QueryPlan) error
	ValidateTrace(plan *QueryPlan, trace *RetrievalTrace) error
}

// Pipeline implements the linear ACE retrieval pipeline (§4.2): plan
// validation, candidate generation, fusion, span extraction and budget
// projection, SFW hard-drop filter projection, and the validator chain.
type Pipeline struct {
	Sources       []CandidateSource
	Weights       map[StoreKind]float64
	SpanExtractor SpanExtractor
	Chain         ValidatorChain
}

// Run executes the pipeline end to end, returning a validated
// RetrievalTrace or the first typed AceError encountered.
func (p Pipeline) Run(ctx context.Context, plan *QueryPlan) (*RetrievalTrace, error) {
	if err := plan.Budgets.Validate(); err != nil {
		return nil, err
	}
	if p.Chain != nil {
		if err := p.Chain.ValidatePlan(plan); err != nil {
			return nil, err
		}
	}

	trace := &RetrievalTrace{
		BudgetsApplied: plan.Budgets,
		FiltersApplied: plan.Filters,
		Seed:           plan.Seed,
	}

	var all []Candidate
	for _, src := range p.Sources {
		cands, err := src.Generate(ctx, plan)
		if err != nil {
			trace.Errors = append(trace.Errors, err.Error())
			continue
		}
		all = append(all, cands...)
	}

	fused := p.fuse(all)
	trace.Candidates = fused

	if p.SpanExtractor != nil {
		for _, c := range fused {
			spans, err := p.SpanExtractor.Extract(ctx, plan, c)
			if err != nil {
				trace.Errors = append(trace.Errors, err.Error())
				continue
			}
			for _, s := range spans {
				if s.TokenEstimate > plan.Budgets.MaxReadTokens {
					trace.TruncationFlags = append(trace.TruncationFlags, TruncationFlag{SourceID: s.SourceID})
				}
				trace.Spans = append(trace.Spans, s)
			}
		}
	}

	trace.Selected = selectFromSpans(trace.Spans, fused)

	applySFWProjection(plan, trace)

	if p.Chain != nil {
		if err := p.Chain.ValidateTrace(plan, trace); err != nil {
			return trace, err
		}
	}
	return trace, nil
}

// fuse reciprocal-rank-fuses per-store candidate rankings. Tie-break is
// ascending SourceRef to keep fusion deterministic across runs (§4.2
// "Determinism rationale").
func (p Pipeline) fuse(candidates []Candidate) []Candidate {
	byStore := map[StoreKind][]Candidate{}
	for _, c := range candidates {
		byStore[c.Store] = append(byStore[c.Store], c)
	}
	for store := range byStore {
		list := byStore[store]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Score != list[j].Score {
				return list[i].Score > list[j].Score
			}
			return list[i].SourceRef < list[j].SourceRef
		})
		byStore[store] = list
	}

	type acc struct {
		candidate Candidate
		rrfScore  float64
	}
	fusedBySource := map[string]*acc{}
	var order []string
	for store, list := range byStore {
		weight := 1.0
		if p.Weights != nil {
			if w, ok := p.Weights[store]; ok {
				weight = w
			}
		}
		for rank, c := range list {
			contribution := weight / float64(RRFK+rank+1)
			if a, ok := fusedBySource[c.SourceRef]; ok {
				a.rrfScore += contribution
			} else {
				cc := c
				fusedBySource[c.SourceRef] = &acc{candidate: cc, rrfScore: contribution}
				order = append(order, c.SourceRef)
			}
		}
	}

	sort.Strings(order)
	out := make([]Candidate, 0, len(order))
	for _, ref := range order {
		a := fusedBySource[ref]
		a.candidate.Score = a.rrfScore
		out = append(out, a.candidate)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SourceRef < out[j].SourceRef
	})
	return out
}

// selectFromSpans builds the final ranked Selected list, one entry per span
// in fused-candidate order, carrying the candidate's content tier forward
// so the SFW projection and guard have a single source of truth.
func selectFromSpans(spans []Span, candidates []Candidate) []Selected {
	tierBySource := make(map[string]ContentTier, len(candidates))
	for _, c := range candidates {
		tierBySource[c.SourceRef] = c.ContentTier
	}
	out := make([]Selected, 0, len(spans))
	for i, s := range spans {
		tier := s.ContentTier
		if tier == TierUnknown {
			tier = tierBySource[s.SourceID]
		}
		out = append(out, Selected{
			Rank:        i + 1,
			SourceID:    s.SourceID,
			ContentTier: tier,
		})
	}
	return out
}

// applySFWProjection implements §4.2 step 5: in SFW view mode, drop every
// candidate/span/selected entry whose content tier is not SFW (unknown
// tier drops by default-deny), then mark the trace accordingly with a
// count-only warning (Testable Property 4, boundary scenario S1).
func applySFWProjection(plan *QueryPlan, trace *RetrievalTrace) {
	if plan.Filters.ViewMode != ViewModeSFW {
		return
	}

	dropped := 0

	keptCandidates := trace.Candidates[:0:0]
	for _, c := range trace.Candidates {
		if c.ContentTier == TierSFW {
			keptCandidates = append(keptCandidates, c)
		} else {
			dropped++
		}
	}
	trace.Candidates = keptCandidates

	keptSpans := trace.Spans[:0:0]
	for _, s := range trace.Spans {
		if s.ContentTier == TierSFW {
			keptSpans = append(keptSpans, s)
		} else {
			dropped++
		}
	}
	trace.Spans = keptSpans

	keptSelected := trace.Selected[:0:0]
	for _, s := range trace.Selected {
		if s.ContentTier == TierSFW {
			keptSelected = append(keptSelected, s)
		} else {
			dropped++
		}
	}
	trace.Selected = keptSelected

	trace.ProjectionApplied = true
	trace.ProjectionKind = ProjectionKindSFW
	trace.ProjectionRulesetID = "sfw-hard-drop-v1"
	trace.FiltersApplied.ViewMode = ViewModeSFW
	trace.AddSignal(SignalViewModeSFWHardDrop, "", strconv.Itoa(dropped))
}
