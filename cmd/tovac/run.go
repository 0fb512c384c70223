package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/btouchard/tova/internal/compiler/generator"
	"github.com/btouchard/tova/internal/config"
)

// cmdRun builds input into a temp directory and execs `node` against its
// server artifact (or the first artifact, for a plain module), forwarding
// stdin/stdout/stderr and signals — the Tova analog of the teacher's
// cmd/gmx/run.go, which does the equivalent dance with a compiled Go
// binary instead of a `node` subprocess.
func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: tovac run <input.tova|dir> [-- args...]\n")
	}
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	input := fs.Arg(0)

	var extraArgs []string
	allArgs := fs.Args()
	for i, a := range allArgs[1:] {
		if a == "--" {
			extraArgs = allArgs[i+2:]
			break
		}
	}

	tmpDir, err := os.MkdirTemp("", "tovac-run-*")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	cfg := config.Resolve(config.WithOutDir(tmpDir), config.WithSourceMaps(false))
	out, _, diags, err := compileGroup(input, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if diags.HasErrors() {
		printDiagnostics(&diags)
		os.Exit(1)
	}
	if out == nil || len(out.Artifacts) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "Error: nothing to run (no artifacts produced)")
		os.Exit(1)
	}
	if err := writeArtifacts(out, cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	entry := entryArtifact(out)
	entryPath := filepath.Join(tmpDir, entry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, "node", append([]string{entryPath}, extraArgs...)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if err := cmd.Start(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error starting node: %v\n", err)
		os.Exit(1)
	}

	go func() {
		sig := <-sigCh
		if cmd.Process != nil {
			_ = cmd.Process.Signal(sig)
		}
	}()

	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// entryArtifact picks the artifact `tovac run` execs: the unlabeled
// server artifact if present (an app directory's default server{}
// block), otherwise the first artifact in emission order (a plain
// module, or a client-only/test-only build where there's no server to
// prefer).
func entryArtifact(out *generator.Output) string {
	for _, a := range out.Artifacts {
		if strings.HasSuffix(a.Name, ".server.js") {
			return a.Name
		}
	}
	return out.Artifacts[0].Name
}
