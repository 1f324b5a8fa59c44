package flightrecorder

import "time"

// GovernanceRootDefault is the default governance root path, relative to
// a workspace root (§6). It must never be renamed to "docs" or ".GOV".
const GovernanceRootDefault = ".handshake/gov/"

// reservedGovernanceNames are governance root names §6 forbids.
var reservedGovernanceNames = map[string]struct{}{
	"docs": {},
	".GOV": {},
}

// ValidateGovernanceRoot rejects a governance root name on §6's deny list.
func ValidateGovernanceRoot(name string) error {
	if _, reserved := reservedGovernanceNames[name]; reserved {
		return NewInvalidFilter("governance root must not be named \"docs\" or \".GOV\"")
	}
	return nil
}

// GovernanceExport is a read-only, deterministic export of the governance
// root (TASK_BOARD.md, SPEC_CURRENT.md, ROLE_MAILBOX/) as a debug-bundle
// component, reusing the bundle manifest/hash machinery (§[EXPANSION]
// Supplemented Features, item 1).
type GovernanceExport struct {
	Manifest BundleManifest
	ZIP      []byte
}

// BuildGovernanceExport packages the given governance files (task board,
// current spec, mailbox entries — callers supply already-read content,
// since this package does no filesystem access itself) into a
// GovernanceExport with the same deterministic hash and fixed-timestamp
// ZIP format as a debug bundle.
func BuildGovernanceExport(bundleID string, createdAt time.Time, files []BundleFile) (GovernanceExport, error) {
	manifest := BundleManifest{
		SchemaVersion: "hsk.governance_export@1",
		BundleID:      bundleID,
		CreatedAtUTC:  createdAt,
	}
	built, zipBytes, err := BuildBundle(manifest, files)
	if err != nil {
		return GovernanceExport{}, err
	}
	return GovernanceExport{Manifest: built, ZIP: zipBytes}, nil
}
