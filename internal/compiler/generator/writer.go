package generator

import (
	"fmt"
	"strings"

	"github.com/btouchard/tova/internal/compiler/generator/sourcemap"
	"github.com/btouchard/tova/internal/compiler/token"
)

// writer accumulates one output artifact's JS text while tracking its
// current line/column, so every emission call can drop a source-map segment
// at its current output position without the caller doing the bookkeeping —
// generalizing the teacher's bare strings.Builder-based gen_*.go writers
// (which only ever tracked text, never position) to carry VLQ source-map
// output per SPEC_FULL §4.5/§9.
type writer struct {
	buf   strings.Builder
	line  int
	col   int
	sm    *sourcemap.Builder
	scope string // current function/component name, for diagnostics only
}

func newWriter(outFile string) *writer {
	return &writer{line: 1, col: 0, sm: sourcemap.NewBuilder(outFile)}
}

func (w *writer) WriteString(s string) {
	for _, r := range s {
		if r == '\n' {
			w.line++
			w.col = 0
		} else {
			w.col++
		}
	}
	w.buf.WriteString(s)
}

func (w *writer) Printf(format string, args ...any) {
	w.WriteString(fmt.Sprintf(format, args...))
}

// mark records a source-map segment associating the writer's current output
// position with pos, the Tova source position the emission originated from.
// Positions with no file (synthetic nodes) are skipped.
func (w *writer) mark(pos token.Position) {
	if pos.File == "" {
		return
	}
	col := pos.Column - 1 // token columns are 1-based, Segment.SourceCol is 0-based
	if col < 0 {
		col = 0
	}
	w.sm.Add(sourcemap.Segment{
		SourceFile: pos.File,
		SourceLine: pos.Line,
		SourceCol:  col,
		OutputLine: w.line,
		OutputCol:  w.col,
	})
}

func (w *writer) String() string { return w.buf.String() }

// buildMap serializes the writer's accumulated segments as a VLQ v3 source
// map, and returns the "//# sourceMappingURL=" footer to append after it.
func (w *writer) buildMap(mapFileName string) ([]byte, string, error) {
	data, err := w.sm.Build()
	if err != nil {
		return nil, "", err
	}
	return data, sourcemap.Footer(mapFileName), nil
}
