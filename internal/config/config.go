// Package config resolves the build options SPEC_FULL's cache/codegen
// layer consumes: output directory, strict-mode promotion of semantic
// warnings to errors, watch mode, source map emission, and the incremental
// build cache location. Grounded on the teacher's main.go/cmd/gmx "env var
// with a fatal default" idiom (initDatabase, initMailer, initGitHub in the
// teacher's main.go, which is not part of this repository), generalized from fatal-if-missing to
// non-fatal defaults since a compiler's build options are optional knobs,
// not required service credentials.
package config

import (
	"os"
	"strconv"
)

// Build holds one `tovac build`/`tovac run`/`tovac watch` invocation's
// resolved options.
type Build struct {
	OutDir     string
	Strict     bool
	Watch      bool
	SourceMaps bool
	CacheDir   string
}

// Option mutates a Build during FromFlags/FromEnv resolution.
type Option func(*Build)

// WithOutDir overrides the output directory.
func WithOutDir(dir string) Option { return func(b *Build) { b.OutDir = dir } }

// WithStrict toggles promoting semantic warnings to errors.
func WithStrict(strict bool) Option { return func(b *Build) { b.Strict = strict } }

// WithWatch toggles watch mode.
func WithWatch(watch bool) Option { return func(b *Build) { b.Watch = watch } }

// WithSourceMaps toggles source map emission.
func WithSourceMaps(on bool) Option { return func(b *Build) { b.SourceMaps = on } }

// WithCacheDir overrides the incremental build cache directory.
func WithCacheDir(dir string) Option { return func(b *Build) { b.CacheDir = dir } }

// Default returns the built-in option set before any flag or env override
// is applied: output alongside the source, source maps on, strict and
// watch off, cache under ".tova-cache".
func Default() Build {
	return Build{
		OutDir:     ".",
		Strict:     false,
		Watch:      false,
		SourceMaps: true,
		CacheDir:   ".tova-cache",
	}
}

// FromEnv overlays TOVA_OUT_DIR / TOVA_STRICT / TOVA_SOURCE_MAPS /
// TOVA_CACHE_DIR onto base when present, non-fatally ignoring an
// unparseable boolean (falling back to base's current value) rather than
// the teacher's log.Fatal-on-missing-env convention — a compiler shouldn't
// refuse to run over an optional knob.
func FromEnv(base Build) Build {
	b := base
	if v := os.Getenv("TOVA_OUT_DIR"); v != "" {
		b.OutDir = v
	}
	if v := os.Getenv("TOVA_CACHE_DIR"); v != "" {
		b.CacheDir = v
	}
	if v := os.Getenv("TOVA_STRICT"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			b.Strict = parsed
		}
	}
	if v := os.Getenv("TOVA_SOURCE_MAPS"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			b.SourceMaps = parsed
		}
	}
	return b
}

// Apply layers opts onto base in order, the explicit-beats-implicit
// resolution a CLI subcommand uses after computing Default()+FromEnv(): an
// explicit `-strict` flag always wins over TOVA_STRICT.
func Apply(base Build, opts ...Option) Build {
	b := base
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Resolve is the one-call convenience the build, run and watch subcommands use:
// Default, overlaid with env, overlaid with explicit flags.
func Resolve(opts ...Option) Build {
	return Apply(FromEnv(Default()), opts...)
}
