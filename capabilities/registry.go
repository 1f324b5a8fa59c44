// Package capabilities implements the authorization substrate for the
// governed execution core: axis/scope capability IDs, named profiles, the
// server-resolved job-kind-to-profile map, and the single enforcement path
// every job or engine invocation flows through. No component outside this
// package consults its own ACL.
package capabilities

import (
	"sort"
	"strings"
)

// ID is a dotted capability identifier, optionally refined by a scope after
// a colon (e.g. "fs.read", "fs.read:logs", or a full canonical ID such as
// "doc.summarize").
type ID string

// Axis returns the axis portion of id, i.e. everything before an optional
// ":scope" suffix. For a bare axis or a full ID without a scope, Axis
// returns id unchanged.
func (id ID) Axis() ID {
	if i := strings.IndexByte(string(id), ':'); i >= 0 {
		return id[:i]
	}
	return id
}

// Registry is the immutable, total-by-construction authorization substrate.
// Once built it never mutates; it is safe to share behind a read-only
// reference across goroutines without additional locking.
type Registry struct {
	axes        map[ID]struct{}
	fullIDs     map[ID]struct{}
	profiles    map[string]map[ID]struct{}
	profileList map[string][]ID // insertion order, for deterministic evidence
	jobProfiles map[string]string
}

// ProfileDef declares a named capability profile at construction time.
type ProfileDef struct {
	ID           string `yaml:"id"`
	Capabilities []ID   `yaml:"capabilities"`
}

// Config is the seed data used to build a Registry, loadable directly from
// YAML (see LoadConfig). Every referenced capability ID is validated
// against Axes+FullIDs; every profile's capabilities must resolve; every
// JobProfiles target must name a declared profile. Construction fails
// closed: any inconsistency is rejected rather than silently dropped.
type Config struct {
	Axes        []ID              `yaml:"axes"`
	FullIDs     []ID              `yaml:"full_ids"`
	Profiles    []ProfileDef      `yaml:"profiles"`
	JobProfiles map[string]string `yaml:"job_profiles"` // job kind -> profile ID
}

// NewRegistry validates Config and builds an immutable Registry. Profiles
// referencing unknown capabilities, or job kinds targeting unknown
// profiles, are rejected so that every constructed Registry is
// total-by-construction: every lookup it will ever be asked either
// succeeds or returns a typed error, never a panic.
func NewRegistry(cfg Config) (*Registry, error) {
	r := &Registry{
		axes:        make(map[ID]struct{}, len(cfg.Axes)),
		fullIDs:     make(map[ID]struct{}, len(cfg.FullIDs)),
		profiles:    make(map[string]map[ID]struct{}, len(cfg.Profiles)),
		profileList: make(map[string][]ID, len(cfg.Profiles)),
		jobProfiles: make(map[string]string, len(cfg.JobProfiles)),
	}
	for _, a := range cfg.Axes {
		r.axes[a] = struct{}{}
	}
	for _, f := range cfg.FullIDs {
		r.fullIDs[f] = struct{}{}
	}
	for _, p := range cfg.Profiles {
		set := make(map[ID]struct{}, len(p.Capabilities))
		for _, c := range p.Capabilities {
			if !r.isValidLocked(c) {
				return nil, errUnknownCapability(string(c))
			}
			set[c] = struct{}{}
		}
		r.profiles[p.ID] = set
		r.profileList[p.ID] = append([]ID(nil), p.Capabilities...)
	}
	for jobKind, profileID := range cfg.JobProfiles {
		if _, ok := r.profiles[profileID]; !ok {
			return nil, errUnknownProfile(profileID)
		}
		r.jobProfiles[jobKind] = profileID
	}
	return r, nil
}

func (r *Registry) isValidLocked(id ID) bool {
	if _, ok := r.fullIDs[id]; ok {
		return true
	}
	axis := id.Axis()
	_, ok := r.axes[axis]
	return ok
}

// IsValid reports whether id is a recognized axis, full ID, or
// "axis:scope" refinement of a recognized axis.
func (r *Registry) IsValid(id ID) bool {
	return r.isValidLocked(id)
}

// Validate returns nil if id is recognized, otherwise CodeUnknownCapability.
func (r *Registry) Validate(id ID) error {
	if !r.IsValid(id) {
		return errUnknownCapability(string(id))
	}
	return nil
}

// CanPerform reports whether granted authorizes requested: either granted
// contains requested exactly, or it contains requested's axis (axis grants
// imply all scopes under that axis). Returns MissingCapability otherwise.
func (r *Registry) CanPerform(requested ID, granted []ID) error {
	axis := requested.Axis()
	for _, g := range granted {
		if g == requested || g == axis {
			return nil
		}
	}
	return errMissingCapability("", string(requested))
}

// ProfileCan is CanPerform resolved against a named profile; on denial the
// error carries the profile ID so the failure is self-describing evidence.
func (r *Registry) ProfileCan(profileID string, requested ID) error {
	set, ok := r.profiles[profileID]
	if !ok {
		return errUnknownProfile(profileID)
	}
	axis := requested.Axis()
	if _, ok := set[requested]; ok {
		return nil
	}
	if _, ok := set[axis]; ok {
		return nil
	}
	return errMissingCapability(profileID, string(requested))
}

// ProfileForJobKind resolves the server-side job-kind-to-profile mapping.
// This is the only legitimate source of a profile ID for enforcement — a
// client-supplied profile ID must never be substituted here, as doing so
// would be the single defense this registry exists to prevent
// (capability escalation via request forgery).
func (r *Registry) ProfileForJobKind(jobKind string) (string, error) {
	profileID, ok := r.jobProfiles[jobKind]
	if !ok {
		return "", errUnknownJobKind(jobKind)
	}
	return profileID, nil
}

// RequiredCapabilitiesForJob returns the full capability set granted to the
// profile resolved for jobKind, sorted by capability ID. This is the set an
// auditor consults to answer "what could this job do".
func (r *Registry) RequiredCapabilitiesForJob(jobKind string) ([]ID, error) {
	profileID, err := r.ProfileForJobKind(jobKind)
	if err != nil {
		return nil, err
	}
	caps := append([]ID(nil), r.profileList[profileID]...)
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps, nil
}

// ProfileCapabilities returns the declared capability set for profileID, in
// declaration order. Used by MEX's CapabilityGate and by governance export.
func (r *Registry) ProfileCapabilities(profileID string) ([]ID, error) {
	if _, ok := r.profiles[profileID]; !ok {
		return nil, errUnknownProfile(profileID)
	}
	return append([]ID(nil), r.profileList[profileID]...), nil
}
