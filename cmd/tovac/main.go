// Command tovac is the Tova compiler CLI: build/run/fmt/watch subcommands
// over the lexer→parser→semantic→merger→generator pipeline, the direct
// descendant of the teacher's cmd/gmx (same per-subcommand flag.FlagSet
// shape, cmd/gmx/{build,run,fmt}.go kept close to structure) with a new
// watch.go wiring fsnotify, a dependency the teacher's cmd/gmx never
// needed since it had no incremental/watch workflow.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		cmdBuild(os.Args[2:])
	case "run":
		cmdRun(os.Args[2:])
	case "fmt":
		cmdFmt(os.Args[2:])
	case "watch":
		cmdWatch(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		_, _ = fmt.Fprintf(os.Stderr, "tovac: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `Usage: tovac <command> [arguments]

Commands:
  build   compile a .tova file or app directory into JS artifacts
  run     build and execute an app's server artifact under node
  fmt     reformat .tova source files
  watch   rebuild on every .tova source change

Use "tovac <command> -h" for flags on a specific command.
`)
}
