package memstore_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Nuntissura/Handshake-sub002/flightrecorder"
	"github.com/Nuntissura/Handshake-sub002/flightrecorder/memstore"
)

func TestAppendAssignsMonotonicSeq(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	first, err := s.Append(ctx, flightrecorder.Event{EventKind: flightrecorder.KindGateDecision, TraceID: uuid.New()})
	require.NoError(t, err)
	second, err := s.Append(ctx, flightrecorder.Event{EventKind: flightrecorder.KindGateDecision, TraceID: uuid.New()})
	require.NoError(t, err)

	require.Equal(t, int64(1), first.Seq)
	require.Equal(t, int64(2), second.Seq)
	require.NotEqual(t, uuid.Nil, first.EventID)
	require.Equal(t, flightrecorder.EventSchemaVersion, first.SchemaVersion)
}

func TestQueryOrdersBySeqAndRespectsLimit(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	trace := uuid.New()

	for i := 0; i < 5; i++ {
		_, err := s.Append(ctx, flightrecorder.Event{EventKind: flightrecorder.KindGateDecision, TraceID: trace})
		require.NoError(t, err)
	}

	got, err := s.Query(ctx, flightrecorder.EventFilter{TraceID: trace.String(), Limit: 3})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, int64(1), got[0].Seq)
	require.Equal(t, int64(3), got[2].Seq)
}

func TestRecordViolationIsAtomicWithDiagnostic(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	fp := flightrecorder.Fingerprint("HSK-ACE-RAG-004", "ace", "pipeline", "budget exceeded")
	diag := flightrecorder.Diagnostic{
		Fingerprint: fp,
		Code:        "HSK-ACE-RAG-004",
		Source:      "ace",
		Surface:     "pipeline",
		Message:     "budget exceeded",
		Severity:    flightrecorder.LevelError,
		TraceID:     uuid.New().String(),
		TsUTC:       time.Now().UTC(),
	}
	ev, err := s.RecordViolation(ctx, diag)
	require.NoError(t, err)
	require.Equal(t, flightrecorder.KindDiagnostic, ev.EventKind)

	groups, err := s.ListProblems(ctx, flightrecorder.MinSeverity(flightrecorder.LevelWarn))
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, fp, groups[0].Fingerprint)
	require.Equal(t, 1, groups[0].Count)
}

func TestListProblemsGroupsByFingerprintAndFiltersSeverity(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	fpA := flightrecorder.Fingerprint("CODE-A", "src", "surf", "tmpl")
	for i := 0; i < 3; i++ {
		_, err := s.RecordViolation(ctx, flightrecorder.Diagnostic{
			Fingerprint: fpA, Code: "CODE-A", Source: "src", Surface: "surf",
			Severity: flightrecorder.LevelError, TsUTC: time.Now().UTC(),
		})
		require.NoError(t, err)
	}
	_, err := s.RecordViolation(ctx, flightrecorder.Diagnostic{
		Fingerprint: "fp-debug", Code: "CODE-B", Source: "src", Surface: "surf",
		Severity: flightrecorder.LevelDebug, TsUTC: time.Now().UTC(),
	})
	require.NoError(t, err)

	groups, err := s.ListProblems(ctx, flightrecorder.MinSeverity(flightrecorder.LevelWarn))
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, 3, groups[0].Count)
}

func TestSchemaRegistryRejectsUnknownKeysForSensitiveKind(t *testing.T) {
	schemaDoc := json.RawMessage(`{
		"type": "object",
		"properties": {"to_role": {"type": "string"}, "from_role": {"type": "string"}, "subject": {"type": "string"}},
		"required": ["to_role", "from_role"]
	}`)
	reg, err := flightrecorder.NewSchemaRegistry(map[flightrecorder.EventKind]json.RawMessage{
		flightrecorder.KindGovMailboxPosted: schemaDoc,
	})
	require.NoError(t, err)

	good := json.RawMessage(`{"to_role":"qa","from_role":"dev","subject":"hi"}`)
	require.NoError(t, reg.Validate(flightrecorder.KindGovMailboxPosted, good))

	bad := json.RawMessage(`{"to_role":"qa","from_role":"dev","extra_secret":"leak"}`)
	err = reg.Validate(flightrecorder.KindGovMailboxPosted, bad)
	require.Error(t, err)
	var frErr *flightrecorder.Error
	require.ErrorAs(t, err, &frErr)
	require.Equal(t, flightrecorder.CodeUnknownKeys, frErr.Code)
}

func TestBundleHashDeterministic(t *testing.T) {
	manifest := flightrecorder.BundleManifest{SchemaVersion: "hsk.debug_bundle@1", BundleID: "b1"}
	files := []flightrecorder.BundleFile{
		{Name: "trace.jsonl", Content: []byte("line1\n")},
		{Name: "a.txt", Content: []byte("hello")},
	}

	m1, zip1, err := flightrecorder.BuildBundle(manifest, files)
	require.NoError(t, err)
	m2, zip2, err := flightrecorder.BuildBundle(manifest, files)
	require.NoError(t, err)

	require.Equal(t, m1.BundleHash, m2.BundleHash)
	require.Equal(t, zip1, zip2)

	ok, err := flightrecorder.VerifyBundleHash(m1, []flightrecorder.BundleFile{files[1], files[0]})
	require.NoError(t, err)
	require.True(t, ok, "hash must be order-independent over files")
}
