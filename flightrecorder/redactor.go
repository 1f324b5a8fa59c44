package flightrecorder

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
)

// redactedPlaceholderSize is the fixed size (in bytes) of the placeholder
// content a redacted file's body is replaced with; its original hash is
// kept on the BundleFile as OriginalSHA256, not in the manifest
// (§[EXPANSION] "Debug-bundle redaction").
const redactedPlaceholderSize = 64

// Redactor replaces the content of files flagged for redaction with a
// fixed-size placeholder and records their original sha256 in
// BundleFile.OriginalSHA256 (the manifest does not carry it), so a bundle
// can be shared without leaking a payload the LocalPayload guard flagged as
// local-only.
type Redactor struct {
	// Names is the set of file names to redact.
	Names map[string]struct{}
}

// NewRedactor builds a Redactor targeting the given file names.
func NewRedactor(names ...string) Redactor {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return Redactor{Names: set}
}

// Apply returns a copy of files with every targeted file's content
// replaced by a fixed placeholder and Redacted set to true. The manifest
// hash computation in BundleHash operates on whatever content is present
// at call time, so redaction must happen before BuildBundle computes the
// hash if the shared artifact should reflect placeholder bytes — or after,
// if the manifest should still attest the original content hash; callers
// choose by ordering.
func (r Redactor) Apply(files []BundleFile) []BundleFile {
	out := make([]BundleFile, len(files))
	for i, f := range files {
		if _, ok := r.Names[f.Name]; !ok {
			out[i] = f
			continue
		}
		sum := sha256.Sum256(f.Content)
		placeholder := bytes.Repeat([]byte{0}, redactedPlaceholderSize)
		copy(placeholder, []byte("REDACTED:"+hex.EncodeToString(sum[:16])))
		out[i] = BundleFile{
			Name:           f.Name,
			Content:        placeholder,
			Redacted:       true,
			OriginalSHA256: hex.EncodeToString(sum[:]),
		}
	}
	return out
}
