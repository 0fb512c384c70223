package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btouchard/tova/internal/cache"
	"github.com/btouchard/tova/internal/compiler/diagnostics"
	"github.com/btouchard/tova/internal/config"
)

// cmdBuild compiles one .tova file or app directory into its JS artifacts,
// the Tova analog of the teacher's cmd/gmx/build.go — but where the
// teacher always shells out to `go build` afterward (GMX's target is a Go
// binary), tovac's target is JS source text, so the whole temp-dir/
// os/exec dance has no equivalent: Generate's output *is* the deliverable.
func cmdBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	outDir := fs.String("o", "", "output directory (default: alongside input)")
	strict := fs.Bool("strict", false, "promote semantic warnings to errors")
	noCache := fs.Bool("no-cache", false, "ignore the incremental build cache")
	noMaps := fs.Bool("no-maps", false, "skip source map emission")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: tovac build [-o dir] [-strict] <input.tova|dir>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	input := fs.Arg(0)

	opts := []config.Option{config.WithStrict(*strict)}
	if *outDir != "" {
		opts = append(opts, config.WithOutDir(*outDir))
	}
	if *noMaps {
		opts = append(opts, config.WithSourceMaps(false))
	}
	cfg := config.Resolve(opts...)

	var manifest *cache.Manifest
	if !*noCache {
		m, err := cache.Open(filepath.Join(cfg.CacheDir, "manifest.json"))
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: cache disabled: %v\n", err)
		} else {
			manifest = m
		}
	}

	if manifest != nil {
		lockPath := filepath.Join(cfg.CacheDir, "build.lock")
		lock, err := cache.Acquire(lockPath)
		if err != nil {
			if holder, holderErr := cache.Holder(lockPath); holderErr == nil {
				_, _ = fmt.Fprintf(os.Stderr, "Error: %v (held by pid %d)\n", err, holder)
			} else {
				_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(1)
		}
		defer lock.Release()
	}

	built, err := buildOne(input, cfg, manifest)
	if err != nil {
		if diags, ok := err.(*diagnostics.List); ok {
			printDiagnostics(diags)
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
	if built {
		fmt.Printf("Built %s successfully\n", input)
	} else {
		fmt.Printf("%s is up to date\n", input)
	}
}
