package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/btouchard/tova/internal/cache"
	"github.com/btouchard/tova/internal/compiler/diagnostics"
	"github.com/btouchard/tova/internal/config"
)

// cmdWatch rebuilds input whenever a sibling .tova file changes, the one
// gmx subcommand the teacher never had (GMX's cmd/gmx has no watch.go) —
// grounded instead on fsnotify's own recommended event loop (the pack's
// only repo depending on it), debounced the way every fsnotify consumer
// debounces: editors emit WRITE+CHMOD (sometimes RENAME+CREATE, for
// atomic-save editors) for a single logical save, so a short settle timer
// coalesces a burst into one rebuild.
func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	outDir := fs.String("o", "", "output directory (default: alongside input)")
	strict := fs.Bool("strict", false, "promote semantic warnings to errors")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: tovac watch <input.tova|dir>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	input := fs.Arg(0)

	opts := []config.Option{config.WithStrict(*strict), config.WithWatch(true)}
	if *outDir != "" {
		opts = append(opts, config.WithOutDir(*outDir))
	}
	cfg := config.Resolve(opts...)

	manifest, err := cache.Open(filepath.Join(cfg.CacheDir, "manifest.json"))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: cache disabled: %v\n", err)
		manifest = nil
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

	watchDir := input
	if info, statErr := os.Stat(input); statErr == nil && !info.IsDir() {
		watchDir = filepath.Dir(input)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error creating watcher: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Close()

	if err := watcher.Add(watchDir); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", watchDir, err)
		os.Exit(1)
	}

	rebuild := func() {
		built, err := buildOne(input, cfg, manifest)
		if err != nil {
			if diags, ok := err.(*diagnostics.List); ok {
				printDiagnostics(diags)
			} else {
				_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			return
		}
		if built {
			fmt.Printf("[%s] rebuilt %s\n", time.Now().Format("15:04:05"), input)
		}
	}

	rebuild()
	fmt.Printf("Watching %s for changes (Ctrl-C to stop)\n", watchDir)

	const settle = 150 * time.Millisecond
	var debounce *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".tova") {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(settle, rebuild)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(os.Stderr, "Watch error: %v\n", watchErr)
		}
	}
}
