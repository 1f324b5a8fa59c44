package atelier_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Nuntissura/Handshake-sub002/atelier"
)

func TestSelectionAndPatchApplyWithinScope(t *testing.T) {
	doc := []byte("Hello world\nSecond line")
	selection := atelier.NewSelectionRange(doc, 6, 11) // "world"
	require.NoError(t, selection.Validate(doc))

	patch := atelier.DocPatchset{
		SchemaVersion:         atelier.PatchsetSchemaVersion,
		Selection:             selection,
		BoundaryNormalization: atelier.BoundaryNormalizationDisabled,
		Ops: []atelier.ReplaceRange{
			{Start: 0, End: 5, Replacement: "earth"},
		},
	}
	require.NoError(t, patch.Validate(selection))

	result, err := patch.Apply(doc)
	require.NoError(t, err)
	require.Equal(t, "Hello earth\nSecond line", string(result))
	require.True(t, len(result) >= len("Hello "))
	require.Equal(t, "Hello ", string(result[:len("Hello ")]))
	require.Equal(t, "\nSecond line", string(result[len(result)-len("\nSecond line"):]))
}

// S4 — scope violation attempt: patchset selection drifts from the
// request selection by one offset and must be rejected before any
// mutation is attempted.
func TestPatchsetSelectionMismatchIsRejected(t *testing.T) {
	doc := []byte("Hello world\nSecond line")
	requestSelection := atelier.NewSelectionRange(doc, 6, 11)
	driftedSelection := requestSelection
	driftedSelection.End = 10

	patch := atelier.DocPatchset{
		SchemaVersion:         atelier.PatchsetSchemaVersion,
		Selection:             driftedSelection,
		BoundaryNormalization: atelier.BoundaryNormalizationDisabled,
		Ops:                   []atelier.ReplaceRange{{Start: 0, End: 1, Replacement: "x"}},
	}

	err := patch.Validate(requestSelection)
	require.Error(t, err)
	var aErr *atelier.Error
	require.ErrorAs(t, err, &aErr)
	require.Equal(t, atelier.CodeInvalidPatchset, aErr.Code)
}

// Applying an empty-effect patchset (replacing the entire selection with
// itself) yields a document byte-equal to the original (§8 idempotence
// law).
func TestEmptyEffectPatchsetIsIdempotent(t *testing.T) {
	doc := []byte("Hello world\nSecond line")
	selection := atelier.NewSelectionRange(doc, 6, 11)

	patch := atelier.DocPatchset{
		SchemaVersion:         atelier.PatchsetSchemaVersion,
		Selection:             selection,
		BoundaryNormalization: atelier.BoundaryNormalizationDisabled,
		Ops: []atelier.ReplaceRange{
			{Start: 0, End: 5, Replacement: "world"},
		},
	}
	require.NoError(t, patch.Validate(selection))

	result, err := patch.Apply(doc)
	require.NoError(t, err)
	require.Equal(t, doc, result)
}

func TestSelectionRejectsHashMismatch(t *testing.T) {
	doc := []byte("Hello world")
	selection := atelier.NewSelectionRange(doc, 0, 5)
	selection.DocPreimageSHA256 = "not-a-real-hash"

	err := selection.Validate(doc)
	require.Error(t, err)
	var aErr *atelier.Error
	require.ErrorAs(t, err, &aErr)
	require.Equal(t, atelier.CodeHashMismatch, aErr.Code)
}

func TestSelectionRejectsNonUTF8Boundary(t *testing.T) {
	doc := []byte("héllo") // 'é' is 2 bytes (0xC3 0xA9) at offset 1-2
	// offset 2 lands mid-rune
	sel := atelier.SelectionRange{
		SchemaVersion:           atelier.SelectionSchemaVersion,
		Start:                   2,
		End:                     5,
		DocPreimageSHA256:       "", // irrelevant: boundary check runs first
		SelectionPreimageSHA256: "",
	}
	err := sel.Validate(doc)
	require.Error(t, err)
	var aErr *atelier.Error
	require.ErrorAs(t, err, &aErr)
	require.Equal(t, atelier.CodeBoundaryViolation, aErr.Code)
}
