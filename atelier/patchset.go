package atelier

import (
	"sort"
	"unicode/utf8"
)

// PatchsetSchemaVersion is the only value DocPatchset.SchemaVersion may
// carry (§6).
const PatchsetSchemaVersion = "hsk.doc_patchset@v1"

// BoundaryNormalization must be "disabled" for a patchset to be
// admissible (§4.5): the redesign drops any implicit boundary-snapping
// the original performed.
const BoundaryNormalizationDisabled = "disabled"

// ReplaceRange replaces doc[Start:End] (relative to the selection
// preimage, not the whole document) with Replacement.
type ReplaceRange struct {
	Start       int
	End         int
	Replacement string
}

// DocPatchset is a caller's edit intent: one or more ReplaceRange ops
// scoped to exactly the selection they were planned against.
type DocPatchset struct {
	SchemaVersion         string
	Selection             SelectionRange
	BoundaryNormalization string
	Ops                   []ReplaceRange
}

// Validate checks every precondition §4.5 names for a patchset: schema
// version, the referenced selection matching requestSelection byte-for-
// byte, boundary_normalization=="disabled", and a non-empty op list.
func (p DocPatchset) Validate(requestSelection SelectionRange) error {
	if p.SchemaVersion != PatchsetSchemaVersion {
		return NewSchemaViolation("patchset schema_version must be " + PatchsetSchemaVersion)
	}
	if p.Selection != requestSelection {
		return NewInvalidPatchset("patchset selection does not match request selection")
	}
	if p.BoundaryNormalization != BoundaryNormalizationDisabled {
		return NewInvalidPatchset("patchset boundary_normalization must be \"disabled\"")
	}
	if len(p.Ops) == 0 {
		return NewInvalidPatchset("patchset ops must be non-empty")
	}
	return nil
}

// Apply applies p to doc, having already validated p.Selection against
// doc (callers should call SelectionRange.Validate(doc) first). Ops are
// evaluated relative to the selection preimage doc[selection.Start:
// selection.End], sorted by Start descending and applied to a local
// buffer copy so earlier offsets stay valid as later ops are applied.
// The result is unchanged prefix + mutated selection buffer + unchanged
// suffix; if that result does not begin with the original prefix and end
// with the original suffix, Apply returns a ScopeViolation and the caller
// must discard the attempt (§7).
func (p DocPatchset) Apply(doc []byte) ([]byte, error) {
	sel := p.Selection
	prefix := doc[:sel.Start]
	suffix := doc[sel.End:]
	selectionBuf := append([]byte(nil), doc[sel.Start:sel.End]...)

	ops := append([]ReplaceRange(nil), p.Ops...)
	sort.Slice(ops, func(i, j int) bool { return ops[i].Start > ops[j].Start })

	for _, op := range ops {
		if op.Start < 0 || op.End < op.Start || op.End > len(selectionBuf) {
			return nil, NewInvalidPatchset("op range is out of selection bounds")
		}
		if op.Start < len(selectionBuf) && !utf8.RuneStart(selectionBuf[op.Start]) {
			return nil, NewBoundaryViolation("op start does not land on a UTF-8 boundary")
		}
		if op.End < len(selectionBuf) && !utf8.RuneStart(selectionBuf[op.End]) {
			return nil, NewBoundaryViolation("op end does not land on a UTF-8 boundary")
		}
		rebuilt := make([]byte, 0, len(selectionBuf)-(op.End-op.Start)+len(op.Replacement))
		rebuilt = append(rebuilt, selectionBuf[:op.Start]...)
		rebuilt = append(rebuilt, op.Replacement...)
		rebuilt = append(rebuilt, selectionBuf[op.End:]...)
		selectionBuf = rebuilt
	}

	result := make([]byte, 0, len(prefix)+len(selectionBuf)+len(suffix))
	result = append(result, prefix...)
	result = append(result, selectionBuf...)
	result = append(result, suffix...)

	if !hasPrefix(result, prefix) {
		return nil, NewScopeViolation("result does not begin with the original prefix")
	}
	if !hasSuffix(result, suffix) {
		return nil, NewScopeViolation("result does not end with the original suffix")
	}
	return result, nil
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

func hasSuffix(b, suffix []byte) bool {
	if len(b) < len(suffix) {
		return false
	}
	offset := len(b) - len(suffix)
	for i := range suffix {
		if b[offset+i] != suffix[i] {
			return false
		}
	}
	return true
}
