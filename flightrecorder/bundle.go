package flightrecorder

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"sort"
	"time"
)

// fixedBundleTimestamp is the timestamp every file in a debug bundle's ZIP
// carries, so bundle bytes are reproducible across runs (§4.4, Testable
// Property 10).
var fixedBundleTimestamp = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// BundleFile is one named member of a debug bundle, with its content and
// whether it has been redacted (see Redactor).
type BundleFile struct {
	Name     string
	Content  []byte
	Redacted bool
	// OriginalSHA256 carries the pre-redaction content hash when Redacted
	// is true. Neither the manifest nor BundleHash reads it; BundleHash
	// covers Content, which then holds the placeholder.
	OriginalSHA256 string
}

// BundleManifest is the JSON document a bundle carries alongside its
// files, describing what it contains. BundleHash is always computed with
// this field cleared, then set on the manifest actually written out.
type BundleManifest struct {
	SchemaVersion string    `json:"schema_version"`
	BundleID      string    `json:"bundle_id"`
	CreatedAtUTC  time.Time `json:"created_at_utc"`
	TraceID       string    `json:"trace_id,omitempty"`
	JobID         string    `json:"job_id,omitempty"`
	FileNames     []string  `json:"file_names"`
	BundleHash    string    `json:"bundle_hash"`
}

// BundleHash computes the deterministic hash over
// {manifest with bundle_hash=""} followed by the sorted
// (filename, sha256(content)) pairs, newline-joined (§4.4).
func BundleHash(manifest BundleManifest, files []BundleFile) (string, error) {
	m := manifest
	m.BundleHash = ""

	manifestJSON, err := json.Marshal(m)
	if err != nil {
		return "", NewBundleIntegrity("marshal manifest: " + err.Error())
	}

	pairs := make([]string, 0, len(files))
	for _, f := range files {
		sum := sha256.Sum256(f.Content)
		pairs = append(pairs, f.Name+":"+hex.EncodeToString(sum[:]))
	}
	sort.Strings(pairs)

	h := sha256.New()
	h.Write(manifestJSON)
	h.Write([]byte("\n"))
	for i, p := range pairs {
		if i > 0 {
			h.Write([]byte("\n"))
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// BuildBundle assembles a manifest (with its hash filled in) and a
// deterministic ZIP archive over files. File names are written to the ZIP
// in sorted order and every entry carries fixedBundleTimestamp, so
// identical inputs produce byte-identical ZIP output across runs.
func BuildBundle(manifest BundleManifest, files []BundleFile) (BundleManifest, []byte, error) {
	sorted := append([]BundleFile(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	names := make([]string, 0, len(sorted))
	for _, f := range sorted {
		names = append(names, f.Name)
	}
	manifest.FileNames = names

	hash, err := BundleHash(manifest, sorted)
	if err != nil {
		return BundleManifest{}, nil, err
	}
	manifest.BundleHash = hash

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return BundleManifest{}, nil, NewBundleIntegrity("marshal final manifest: " + err.Error())
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	writeEntry := func(name string, content []byte) error {
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
		hdr.Modified = fixedBundleTimestamp
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, bytes.NewReader(content))
		return err
	}

	if err := writeEntry("bundle_manifest.json", manifestJSON); err != nil {
		return BundleManifest{}, nil, NewBundleIntegrity("write manifest entry: " + err.Error())
	}
	for _, f := range sorted {
		if err := writeEntry(f.Name, f.Content); err != nil {
			return BundleManifest{}, nil, NewBundleIntegrity("write file entry " + f.Name + ": " + err.Error())
		}
	}
	if err := zw.Close(); err != nil {
		return BundleManifest{}, nil, NewBundleIntegrity("close zip writer: " + err.Error())
	}

	return manifest, buf.Bytes(), nil
}

// VerifyBundleHash recomputes BundleHash over manifest and files and
// reports whether it matches manifest.BundleHash.
func VerifyBundleHash(manifest BundleManifest, files []BundleFile) (bool, error) {
	want := manifest.BundleHash
	got, err := BundleHash(manifest, files)
	if err != nil {
		return false, err
	}
	return got == want, nil
}
