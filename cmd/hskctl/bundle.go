package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Nuntissura/Handshake-sub002/flightrecorder"
)

// fileFlag collects repeated --file name=path flags.
type fileFlag []string

func (f *fileFlag) String() string { return strings.Join(*f, ",") }
func (f *fileFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}

// runBundle implements "hskctl bundle verify": recompute a debug bundle's
// hash from its manifest and member files and report whether it matches
// the manifest's recorded bundle_hash.
func runBundle(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("bundle", flag.ExitOnError)
	manifestPath := fs.String("manifest", "", "path to bundle_manifest.json")
	var files fileFlag
	fs.Var(&files, "file", "name=path pair, repeatable")
	if len(args) < 1 || args[0] != "verify" {
		return fmt.Errorf("usage: hskctl bundle verify --manifest <path> --file <name>=<path> [--file ...]")
	}
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *manifestPath == "" {
		return fmt.Errorf("--manifest is required")
	}

	manifestBytes, err := os.ReadFile(*manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	var manifest flightrecorder.BundleManifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	bundleFiles := make([]flightrecorder.BundleFile, 0, len(files))
	for _, spec := range files {
		name, path, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("--file must be name=path, got %q", spec)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read file %q: %w", path, err)
		}
		bundleFiles = append(bundleFiles, flightrecorder.BundleFile{Name: name, Content: content})
	}

	ok, err := flightrecorder.VerifyBundleHash(manifest, bundleFiles)
	if err != nil {
		return fmt.Errorf("verify bundle hash: %w", err)
	}
	if !ok {
		fmt.Println("bundle hash MISMATCH")
		os.Exit(1)
	}
	fmt.Println("bundle hash OK")
	return nil
}
