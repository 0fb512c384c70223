// Package sourcemap builds Version 3 source maps for generated JavaScript,
// VLQ-encoding segments exactly as the format requires: base64 alphabet
// A-Za-z0-9+/, 5-bit groups with a continuation bit, least-significant-bit
// of each value reserved as the sign bit (SPEC_FULL §4.5/§9).
package sourcemap

import (
	"encoding/json"
	"sort"
)

// Segment is one emitted statement/expression's full position quadruple,
// generalizing the teacher's line-only script.SourceMap{Entries
// []SourceMapEntry{GoLine, GmxLine, GmxFile}} to column precision on both
// sides of the mapping.
type Segment struct {
	SourceFile string
	SourceLine int // 1-based
	SourceCol  int // 0-based
	OutputLine int // 1-based
	OutputCol  int // 0-based
}

// Builder accumulates segments for one output file as they are emitted and
// serializes them to a v3 JSON map on demand.
type Builder struct {
	file     string
	segments []Segment
	sources  []string
	srcIndex map[string]int
}

// NewBuilder starts a map for an output file named outFile.
func NewBuilder(outFile string) *Builder {
	return &Builder{file: outFile, srcIndex: make(map[string]int)}
}

// Add records one segment. Sources are interned in first-seen order, so
// when multiple files contributed (directory merge) `sources` in the final
// map lists them in the order the generator first touched each one.
func (b *Builder) Add(seg Segment) {
	if seg.SourceFile != "" {
		if _, ok := b.srcIndex[seg.SourceFile]; !ok {
			b.srcIndex[seg.SourceFile] = len(b.sources)
			b.sources = append(b.sources, seg.SourceFile)
		}
	}
	b.segments = append(b.segments, seg)
}

// v3Map mirrors the standard JSON source map shape.
type v3Map struct {
	Version  int      `json:"version"`
	File     string   `json:"file"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

// Build serializes the accumulated segments into a v3 JSON source map.
// Segments are grouped by output line and VLQ-encoded relative to the
// previous segment on the same line (or the line start), per spec.
func (b *Builder) Build() ([]byte, error) {
	sorted := make([]Segment, len(b.segments))
	copy(sorted, b.segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].OutputLine != sorted[j].OutputLine {
			return sorted[i].OutputLine < sorted[j].OutputLine
		}
		return sorted[i].OutputCol < sorted[j].OutputCol
	})

	var mappings []byte
	prevOutCol := 0
	prevSrcIdx := 0
	prevSrcLine := 0
	prevSrcCol := 0
	line := 1
	wroteOnLine := false

	for _, seg := range sorted {
		for seg.OutputLine > line {
			mappings = append(mappings, ';')
			line++
			prevOutCol = 0
			wroteOnLine = false
		}
		if wroteOnLine {
			mappings = append(mappings, ',')
		}
		wroteOnLine = true

		srcIdx, hasSource := b.srcIndex[seg.SourceFile]

		mappings = appendVLQ(mappings, seg.OutputCol-prevOutCol)
		prevOutCol = seg.OutputCol

		if hasSource {
			mappings = appendVLQ(mappings, srcIdx-prevSrcIdx)
			prevSrcIdx = srcIdx
			mappings = appendVLQ(mappings, seg.SourceLine-1-prevSrcLine)
			prevSrcLine = seg.SourceLine - 1
			mappings = appendVLQ(mappings, seg.SourceCol-prevSrcCol)
			prevSrcCol = seg.SourceCol
		}
	}

	m := v3Map{
		Version:  3,
		File:     b.file,
		Sources:  b.sources,
		Names:    []string{},
		Mappings: string(mappings),
	}
	return json.Marshal(m)
}

// Footer renders the `//# sourceMappingURL=` comment appended to the
// generated JS file, per SPEC_FULL §6.
func Footer(mapFileName string) string {
	return "//# sourceMappingURL=" + mapFileName + "\n"
}

const b64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// appendVLQ appends the VLQ encoding of value to dst, using the low bit as
// the sign and 5-bit groups per base64 digit with bit 5 as the continuation
// flag, per the source-map v3 spec.
func appendVLQ(dst []byte, value int) []byte {
	var vlq int
	if value < 0 {
		vlq = ((-value) << 1) | 1
	} else {
		vlq = value << 1
	}
	for {
		digit := vlq & 0x1f
		vlq >>= 5
		if vlq > 0 {
			digit |= 0x20
		}
		dst = append(dst, b64Alphabet[digit])
		if vlq == 0 {
			break
		}
	}
	return dst
}
