package gates

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Nuntissura/Handshake-sub002/corecontext"
	"github.com/Nuntissura/Handshake-sub002/mex"
)

// IntegrityGate enforces §4.3 gate 3: the named engine is registered at the
// version requested, and every input ArtifactHandle is well-formed and
// resolves inside the canonicalized storage root — no "..", no absolute
// prefix escape, no symlink traversal out of the root.
type IntegrityGate struct {
	Catalog EngineCatalog
	// StorageRoot is the directory every input artifact path must resolve
	// under. Empty means the logical ("..", absolute-prefix) checks still
	// run, but there is no real filesystem root to resolve symlinks
	// against.
	StorageRoot string
}

// Name implements Gate.
func (IntegrityGate) Name() mex.GateName { return mex.GateIntegrity }

// Check implements Gate.
func (g IntegrityGate) Check(_ *corecontext.Context, op *mex.PlannedOperation) error {
	if g.Catalog == nil {
		return mex.NewIntegrityViolation("no engine catalog available")
	}
	decl, ok := g.Catalog.Lookup(op.EngineID)
	if !ok {
		return mex.NewIntegrityViolation("unknown engine: " + op.EngineID)
	}
	if op.EngineVersionReq != "" && op.EngineVersionReq != decl.Version {
		return mex.NewIntegrityViolation(
			"engine " + op.EngineID + " version mismatch: requested " + op.EngineVersionReq + ", installed " + decl.Version)
	}
	for _, in := range op.Inputs {
		if err := g.checkArtifactHandle(in); err != nil {
			return err
		}
	}
	return nil
}

// checkArtifactHandle validates one ArtifactHandle's well-formedness and,
// when StorageRoot is set, that its path cannot escape the canonicalized
// root via "..", an absolute prefix, or a symlink.
func (g IntegrityGate) checkArtifactHandle(h mex.ArtifactHandle) error {
	if h.ArtifactID == uuid.Nil {
		return mex.NewIntegrityViolation("artifact_id must be a non-nil UUID")
	}
	if h.Path == "" {
		return mex.NewIntegrityViolation("artifact path must not be empty")
	}
	if filepath.IsAbs(h.Path) {
		return mex.NewIntegrityViolation("artifact path must not be absolute: " + h.Path)
	}

	clean := filepath.Clean(h.Path)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return mex.NewIntegrityViolation("artifact path escapes storage root: " + h.Path)
	}

	if g.StorageRoot == "" {
		return nil
	}
	root, err := filepath.Abs(g.StorageRoot)
	if err != nil {
		return mex.NewIntegrityViolation("storage root is not resolvable: " + g.StorageRoot)
	}
	joined := filepath.Join(root, clean)

	// Resolve symlinks where the filesystem lets us (the referenced
	// artifact may not yet exist on disk, e.g. a write target); a
	// resolution failure falls back to the logical, unresolved path.
	resolvedRoot := root
	if real, err := filepath.EvalSymlinks(root); err == nil {
		resolvedRoot = real
	}
	resolved := joined
	if real, err := filepath.EvalSymlinks(joined); err == nil {
		resolved = real
	}

	rel, err := filepath.Rel(resolvedRoot, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return mex.NewIntegrityViolation("artifact path resolves outside canonicalized storage root: " + h.Path)
	}
	return nil
}
