package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/btouchard/tova/internal/compiler/lexer"
	"github.com/btouchard/tova/internal/compiler/token"
)

// cmdFmt reformats .tova files to canonical indentation, the Tova analog of
// the teacher's cmd/gmx/fmt.go. The teacher's fmt.go is regex-driven: it
// reformats around the three fixed `<script>/<template>/<style>` section
// tags, which Tova has no equivalent of (block directives are ordinary
// grammar, not a distinct top-level text format), so this reformats at the
// token level instead — re-lexing the file and re-emitting it with brace-
// depth-driven indentation, the same "don't touch the parse tree, just
// normalize whitespace" spirit as the teacher's regex passes.
func cmdFmt(args []string) {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	diff := fs.Bool("d", false, "display diff instead of writing")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: tovac fmt [-d] <files...>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	exitCode := 0
	for _, file := range fs.Args() {
		if err := fmtFile(file, *diff); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error formatting %s: %v\n", file, err)
			exitCode = 1
		}
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func fmtFile(path string, showDiff bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	formatted := FormatSource(string(data))

	if showDiff {
		if formatted != string(data) {
			fmt.Printf("--- %s (unformatted)\n+++ %s (formatted)\n", path, path)
			printUnifiedDiff(string(data), formatted)
		}
		return nil
	}

	if formatted == string(data) {
		return nil
	}
	return os.WriteFile(path, []byte(formatted), 0644)
}

// noSpaceBefore is the set of token literals that never get a leading
// space against the previous token, regardless of what precedes them.
var noSpaceBefore = map[token.TokenType]bool{
	token.COMMA:     true,
	token.SEMICOLON: true,
	token.RPAREN:    true,
	token.RBRACKET:  true,
	token.DOT:       true,
	token.COLON:     true,
}

// noSpaceAfter is the set of token literals that never get a trailing
// space before whatever follows.
var noSpaceAfter = map[token.TokenType]bool{
	token.LPAREN:   true,
	token.LBRACKET: true,
	token.DOT:      true,
}

// FormatSource re-lexes src and re-emits it with two-space brace-depth
// indentation and single-space token separation, collapsing whatever
// original whitespace the author used. Unrecognized/ILLEGAL tokens abort
// formatting and return src unchanged — a formatter must never corrupt
// source it cannot fully understand.
func FormatSource(src string) string {
	l := lexer.New(src, "")
	var out strings.Builder
	depth := 0
	atLineStart := true
	var prevType token.TokenType

	writeIndent := func() {
		out.WriteString(strings.Repeat("  ", depth))
	}

	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		if tok.Type == token.ILLEGAL {
			return src
		}
		if tok.Type == token.NEWLINE {
			if !atLineStart {
				out.WriteString("\n")
				atLineStart = true
			}
			continue
		}
		if tok.Type == token.RBRACE && depth > 0 {
			depth--
		}
		if atLineStart {
			writeIndent()
		} else if !noSpaceBefore[tok.Type] && !noSpaceAfter[prevType] {
			out.WriteString(" ")
		}
		out.WriteString(tok.Literal)
		atLineStart = false
		prevType = tok.Type
		if tok.Type == token.LBRACE {
			depth++
			out.WriteString("\n")
			atLineStart = true
		}
	}
	if !atLineStart {
		out.WriteString("\n")
	}
	return out.String()
}

// printUnifiedDiff prints a minimal line-oriented diff; not a general
// Myers diff, just enough for `fmt -d` to show what changed without
// pulling in a diff library the rest of the module has no other use for.
func printUnifiedDiff(before, after string) {
	beforeLines := strings.Split(before, "\n")
	afterLines := strings.Split(after, "\n")
	max := len(beforeLines)
	if len(afterLines) > max {
		max = len(afterLines)
	}
	for i := 0; i < max; i++ {
		var b, a string
		if i < len(beforeLines) {
			b = beforeLines[i]
		}
		if i < len(afterLines) {
			a = afterLines[i]
		}
		if b != a {
			if b != "" {
				fmt.Printf("-%s\n", b)
			}
			if a != "" {
				fmt.Printf("+%s\n", a)
			}
		}
	}
}
