package syntax

import (
	"errors"
	"testing"
)

func TestQuoteStringEscapes(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/foo", `"/foo"`},
		{`a"b`, `"a\"b"`},
		{`back\slash`, `"back\\slash"`},
		{"line\nbreak", `"line\nbreak"`},
		{"tab\there", `"tab\there"`},
		{"bell\x07", `"bell\u{7}"`},
		{"ünïcode", `"ünïcode"`},
		{"", `""`},
	}
	for _, tc := range cases {
		if got := QuoteString(tc.in); got != tc.want {
			t.Errorf("QuoteString(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestQuoteUnquoteRoundTrip(t *testing.T) {
	for _, s := range []string{"", "/x", `"`, `\`, "\r\n\t", "\x00\x1f\x7f", "mixed \"quote\" and \\ slash"} {
		got, err := UnquoteString(QuoteString(s))
		if err != nil {
			t.Fatalf("UnquoteString(QuoteString(%q)): %v", s, err)
		}
		if got != s {
			t.Fatalf("round trip %q -> %q", s, got)
		}
	}
}

func TestUnquoteStringRejectsMalformed(t *testing.T) {
	for _, lit := range []string{``, `"`, `abc`, `"a"b"`, `"a\"`, `"\q"`, `"\u{zz}"`, `"\u{41"`} {
		if _, err := UnquoteString(lit); !errors.Is(err, ErrInvalidLiteral) {
			t.Errorf("UnquoteString(%s): expected ErrInvalidLiteral, got %v", lit, err)
		}
	}
}

func TestQuotedLiteralLexesAsOneToken(t *testing.T) {
	lit := QuoteString("a\"b\\c\nd")
	toks, diags := Lex(lit)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(toks) != 2 || toks[0].Kind() != TokenStringLiteral || toks[0].Text() != lit {
		t.Fatalf("quoted literal did not lex as a single string token: %v", toks)
	}
}

func TestIsIdentifier(t *testing.T) {
	for s, want := range map[string]bool{
		"servicePath": true,
		"_x1":         true,
		"1x":          false,
		"":            false,
		"a-b":         false,
		"a b":         false,
	} {
		if got := IsIdentifier(s); got != want {
			t.Errorf("IsIdentifier(%q) = %v, want %v", s, got, want)
		}
	}
}
