package sourcemap

import (
	"encoding/json"
	"testing"
)

func TestBuildEmpty(t *testing.T) {
	b := NewBuilder("app.shared.js")
	out, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("not valid JSON: %v", err)
	}
	if m["version"].(float64) != 3 {
		t.Fatalf("expected version 3, got %v", m["version"])
	}
	if m["mappings"] != "" {
		t.Fatalf("expected empty mappings, got %q", m["mappings"])
	}
}

func TestBuildSingleSegment(t *testing.T) {
	b := NewBuilder("app.shared.js")
	b.Add(Segment{SourceFile: "a.tova", SourceLine: 1, SourceCol: 0, OutputLine: 1, OutputCol: 0})
	out, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("not valid JSON: %v", err)
	}
	if len(m["sources"].([]any)) != 1 || m["sources"].([]any)[0] != "a.tova" {
		t.Fatalf("expected sources=[a.tova], got %v", m["sources"])
	}
	if m["mappings"] == "" {
		t.Fatal("expected non-empty mappings for a recorded segment")
	}
}

func TestBuildOrdersMultipleSources(t *testing.T) {
	b := NewBuilder("app.shared.js")
	b.Add(Segment{SourceFile: "b.tova", SourceLine: 2, SourceCol: 4, OutputLine: 3, OutputCol: 2})
	b.Add(Segment{SourceFile: "a.tova", SourceLine: 1, SourceCol: 0, OutputLine: 1, OutputCol: 0})
	out, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m map[string]any
	json.Unmarshal(out, &m)
	sources := m["sources"].([]any)
	if sources[0] != "b.tova" || sources[1] != "a.tova" {
		t.Fatalf("expected sources in first-seen order [b.tova, a.tova], got %v", sources)
	}
	// Three output lines recorded: two ';' line separators expected.
	mappings := m["mappings"].(string)
	semicolons := 0
	for _, c := range mappings {
		if c == ';' {
			semicolons++
		}
	}
	if semicolons != 2 {
		t.Fatalf("expected 2 line separators for lines 1..3, got %d in %q", semicolons, mappings)
	}
}

func TestVLQRoundTripsThroughKnownAlphabet(t *testing.T) {
	for _, v := range []int{0, 1, -1, 15, -15, 16, 1000, -1000} {
		out := appendVLQ(nil, v)
		for _, c := range out {
			found := false
			for _, a := range []byte(b64Alphabet) {
				if a == c {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("VLQ(%d) produced byte %q outside the base64 alphabet", v, c)
			}
		}
	}
}

func TestFooter(t *testing.T) {
	got := Footer("app.shared.js.map")
	want := "//# sourceMappingURL=app.shared.js.map\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
