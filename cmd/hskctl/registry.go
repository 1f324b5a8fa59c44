package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/Nuntissura/Handshake-sub002/capabilities"
)

// runRegistry implements "hskctl registry describe": build a Registry
// from seed YAML and print the resolved job→profile→capability closure
// for audit, carrying forward the original's
// bin/capability_registry_workflow.rs workflow in this package's idiom.
func runRegistry(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("registry", flag.ExitOnError)
	configPath := fs.String("config", "", "path to capability registry YAML config")
	if len(args) < 1 || args[0] != "describe" {
		return fmt.Errorf("usage: hskctl registry describe --config <path>")
	}
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *configPath == "" {
		return fmt.Errorf("--config is required")
	}

	data, err := os.ReadFile(*configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg, err := capabilities.LoadConfig(data)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	reg, err := capabilities.NewRegistry(cfg)
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}

	jobKinds := make([]string, 0, len(cfg.JobProfiles))
	for jobKind := range cfg.JobProfiles {
		jobKinds = append(jobKinds, jobKind)
	}
	sort.Strings(jobKinds)

	for _, jobKind := range jobKinds {
		profileID, err := reg.ProfileForJobKind(jobKind)
		if err != nil {
			return fmt.Errorf("resolve job kind %q: %w", jobKind, err)
		}
		caps, err := reg.ProfileCapabilities(profileID)
		if err != nil {
			return fmt.Errorf("resolve profile %q: %w", profileID, err)
		}
		capStrs := make([]string, 0, len(caps))
		for _, c := range caps {
			capStrs = append(capStrs, string(c))
		}
		fmt.Printf("%s -> %s -> %v\n", jobKind, profileID, capStrs)
	}
	return nil
}
