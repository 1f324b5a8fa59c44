// Command hskctl is a small single-binary CLI exposing read-only audit
// operations over the governed execution core, in the teacher's
// cmd/demo style: a flat main wiring concrete components together with
// no generated transport layer.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	var err error
	switch os.Args[1] {
	case "registry":
		err = runRegistry(ctx, os.Args[2:])
	case "bundle":
		err = runBundle(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "hskctl: "+err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  hskctl registry describe --config <path>
  hskctl bundle verify --manifest <path> --file <name>=<path> [--file ...]`)
}
