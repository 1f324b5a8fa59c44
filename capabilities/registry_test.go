package capabilities_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Nuntissura/Handshake-sub002/capabilities"
)

func testRegistry(t *testing.T) *capabilities.Registry {
	t.Helper()
	reg, err := capabilities.NewRegistry(capabilities.Config{
		Axes:    []capabilities.ID{"fs.read", "fs.write", "proc.exec", "net.http", "device", "secrets.use", "term.exec"},
		FullIDs: []capabilities.ID{"doc.read", "doc.summarize", "terminal.attach_human"},
		Profiles: []capabilities.ProfileDef{
			{ID: "default", Capabilities: []capabilities.ID{"doc.read", "doc.summarize"}},
			{ID: "terminal", Capabilities: []capabilities.ID{"term.exec", "terminal.attach_human"}},
		},
		JobProfiles: map[string]string{
			"term_exec":     "terminal",
			"doc_summarize": "default",
		},
	})
	require.NoError(t, err)
	return reg
}

func TestAxisGrantsImpliesScope(t *testing.T) {
	reg := testRegistry(t)
	require.NoError(t, reg.CanPerform("fs.read:logs", []capabilities.ID{"fs.read"}))
}

func TestCanPerformExactMatch(t *testing.T) {
	reg := testRegistry(t)
	require.NoError(t, reg.CanPerform("doc.read", []capabilities.ID{"doc.read"}))
}

func TestCanPerformMissing(t *testing.T) {
	reg := testRegistry(t)
	err := reg.CanPerform("proc.exec", []capabilities.ID{"fs.read"})
	require.Error(t, err)
	var capErr *capabilities.Error
	require.ErrorAs(t, err, &capErr)
	require.Equal(t, capabilities.CodeMissingCapability, capErr.Code)
}

// S5 — capability denial boundary scenario from the spec.
func TestProfileCanDenialCarriesProfileID(t *testing.T) {
	reg := testRegistry(t)
	err := reg.ProfileCan("default", "term.exec")
	require.Error(t, err)
	var capErr *capabilities.Error
	require.ErrorAs(t, err, &capErr)
	require.Equal(t, capabilities.CodeMissingCapability, capErr.Code)
	require.Equal(t, "default", capErr.ProfileID)
	require.Equal(t, "term.exec", capErr.Capability)

	require.NoError(t, reg.ProfileCan("terminal", "term.exec"))
}

func TestProfileForJobKindIsServerResolved(t *testing.T) {
	reg := testRegistry(t)
	profileID, err := reg.ProfileForJobKind("term_exec")
	require.NoError(t, err)
	require.Equal(t, "terminal", profileID)
}

func TestUnknownJobKind(t *testing.T) {
	reg := testRegistry(t)
	_, err := reg.ProfileForJobKind("no_such_kind")
	require.Error(t, err)
	var capErr *capabilities.Error
	require.ErrorAs(t, err, &capErr)
	require.Equal(t, capabilities.CodeUnknownJobKind, capErr.Code)
}

func TestConstructionRejectsUnknownCapabilityInProfile(t *testing.T) {
	_, err := capabilities.NewRegistry(capabilities.Config{
		Axes: []capabilities.ID{"fs.read"},
		Profiles: []capabilities.ProfileDef{
			{ID: "broken", Capabilities: []capabilities.ID{"net.http"}},
		},
	})
	require.Error(t, err)
}

func TestConstructionRejectsUnknownProfileInJobMap(t *testing.T) {
	_, err := capabilities.NewRegistry(capabilities.Config{
		Axes:        []capabilities.ID{"fs.read"},
		Profiles:    []capabilities.ProfileDef{{ID: "default", Capabilities: []capabilities.ID{"fs.read"}}},
		JobProfiles: map[string]string{"k": "ghost"},
	})
	require.Error(t, err)
}

func TestConstructionIsIdempotentForIdenticalInputs(t *testing.T) {
	cfg := capabilities.Config{
		Axes:     []capabilities.ID{"fs.read"},
		Profiles: []capabilities.ProfileDef{{ID: "default", Capabilities: []capabilities.ID{"fs.read"}}},
	}
	reg1, err := capabilities.NewRegistry(cfg)
	require.NoError(t, err)
	reg2, err := capabilities.NewRegistry(cfg)
	require.NoError(t, err)
	caps1, err := reg1.ProfileCapabilities("default")
	require.NoError(t, err)
	caps2, err := reg2.ProfileCapabilities("default")
	require.NoError(t, err)
	require.Equal(t, caps1, caps2)
}
