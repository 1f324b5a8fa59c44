// Package atelier implements the selection-bounded patch applier (§4.5):
// a caller's edit intent is applied to a document without ever modifying
// a byte outside the declared selection range.
package atelier

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// SelectionSchemaVersion is the only value SelectionRange.SchemaVersion
// may carry (§6).
const SelectionSchemaVersion = "hsk.selection_range@v1"

// SelectionRange names a byte-offset span of a document, hash-bound to
// both the full document and the span itself so a stale or forged
// selection is caught before any mutation is attempted.
type SelectionRange struct {
	SchemaVersion          string
	Start                  int
	End                    int
	DocPreimageSHA256      string
	SelectionPreimageSHA256 string
}

// Validate checks every precondition §4.5 names for a SelectionRange
// against doc: schema version, start<end, UTF-8 boundary alignment, and
// both preimage hashes.
func (s SelectionRange) Validate(doc []byte) error {
	if s.SchemaVersion != SelectionSchemaVersion {
		return NewSchemaViolation("selection schema_version must be " + SelectionSchemaVersion)
	}
	if s.Start < 0 || s.End < 0 || s.Start >= s.End {
		return NewSchemaViolation("selection start must be < end")
	}
	if s.End > len(doc) {
		return NewSchemaViolation("selection end is beyond document length")
	}
	if !utf8.RuneStart(doc[s.Start]) {
		return NewBoundaryViolation("selection start does not land on a UTF-8 boundary")
	}
	if s.End < len(doc) && !utf8.RuneStart(doc[s.End]) {
		return NewBoundaryViolation("selection end does not land on a UTF-8 boundary")
	}
	if got := sha256Hex(doc); got != s.DocPreimageSHA256 {
		return NewHashMismatch("doc_preimage_sha256", s.DocPreimageSHA256, got)
	}
	if got := sha256Hex(doc[s.Start:s.End]); got != s.SelectionPreimageSHA256 {
		return NewHashMismatch("selection_preimage_sha256", s.SelectionPreimageSHA256, got)
	}
	return nil
}

// sha256Hex returns the lower-case hex sha256 of b (§6: "exactly 64
// chars").
func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// NewSelectionRange builds a SelectionRange with both preimage hashes
// computed from doc, for callers constructing a selection rather than
// validating one received over the wire.
func NewSelectionRange(doc []byte, start, end int) SelectionRange {
	return SelectionRange{
		SchemaVersion:           SelectionSchemaVersion,
		Start:                   start,
		End:                     end,
		DocPreimageSHA256:       sha256Hex(doc),
		SelectionPreimageSHA256: sha256Hex(doc[start:end]),
	}
}
