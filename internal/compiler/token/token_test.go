package token

import "testing"

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		// Core keywords
		{"fn", FUNC},
		{"let", LET},
		{"var", VAR},
		{"const", CONST},
		{"true", TRUE},
		{"false", FALSE},
		{"if", IF},
		{"elif", ELIF},
		{"else", ELSE},
		{"return", RETURN},
		{"match", MATCH},
		{"try", TRY},
		{"catch", CATCH},
		{"import", IMPORT},
		{"from", FROM},
		{"as", AS},
		{"pub", PUB},
		{"async", ASYNC},
		{"await", AWAIT},

		// Block directives
		{"shared", SHARED},
		{"server", SERVER},
		{"client", CLIENT},
		{"test", TEST},
		{"bench", BENCH},

		// Server domain
		{"route", ROUTE},
		{"db", DB},
		{"model", MODEL},
		{"middleware", MIDDLEWARE},
		{"websocket", WEBSOCKET},
		{"GET", GET},
		{"POST", POST},
		{"DELETE", DELETE},

		// Client domain
		{"state", STATE},
		{"computed", COMPUTED},
		{"effect", EFFECT},
		{"component", COMPONENT},
		{"store", STORE},

		// Non-keywords
		{"variable", IDENT},
		{"Task", IDENT},
		{"userId", IDENT},
		{"foo_bar", IDENT},
		{"", IDENT},
		{"get", IDENT}, // lowercase "get" is not the route-method keyword
	}

	for _, tt := range tests {
		result := LookupIdent(tt.input)
		if result != tt.expected {
			t.Errorf("LookupIdent(%q) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestPositionString(t *testing.T) {
	tests := []struct {
		name     string
		pos      Position
		expected string
	}{
		{"with file", Position{File: "app.tova", Line: 10, Column: 5}, "app.tova:10:5"},
		{"without file", Position{Line: 10, Column: 5}, "10:5"},
		{"line 1 column 1", Position{Line: 1, Column: 1}, "1:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.String(); got != tt.expected {
				t.Errorf("Position.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
