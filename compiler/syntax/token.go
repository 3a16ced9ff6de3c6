// Package syntax implements the immutable, lossless syntax tree the rewriting
// passes operate on. Every byte of the source is owned by exactly one token,
// either as token text or as leading/trailing minutiae, so printing a parsed
// tree reproduces the input exactly.
package syntax

import "strings"

// TokenKind classifies a token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdentifier
	TokenStringLiteral
	TokenNumericLiteral
	TokenTemplate
	TokenDocLine
	TokenImportKeyword
	TokenServiceKeyword
	TokenOnKeyword
	TokenAt
	TokenColon
	TokenComma
	TokenSemicolon
	TokenOpenBrace
	TokenCloseBrace
	TokenOpenBracePipe
	TokenClosePipeBrace
	TokenOpenParen
	TokenCloseParen
	TokenOpenBracket
	TokenCloseBracket
	TokenSlash
	TokenOther
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:            "EOF",
	TokenIdentifier:     "identifier",
	TokenStringLiteral:  "string literal",
	TokenNumericLiteral: "numeric literal",
	TokenTemplate:       "template",
	TokenDocLine:        "documentation line",
	TokenImportKeyword:  "'import'",
	TokenServiceKeyword: "'service'",
	TokenOnKeyword:      "'on'",
	TokenAt:             "'@'",
	TokenColon:          "':'",
	TokenComma:          "','",
	TokenSemicolon:      "';'",
	TokenOpenBrace:      "'{'",
	TokenCloseBrace:     "'}'",
	TokenOpenBracePipe:  "'{|'",
	TokenClosePipeBrace: "'|}'",
	TokenOpenParen:      "'('",
	TokenCloseParen:     "')'",
	TokenOpenBracket:    "'['",
	TokenCloseBracket:   "']'",
	TokenSlash:          "'/'",
	TokenOther:          "token",
}

func (k TokenKind) String() string {
	if s, ok := tokenKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// opens reports whether the kind increases nesting depth.
func (k TokenKind) opens() bool {
	switch k {
	case TokenOpenBrace, TokenOpenBracePipe, TokenOpenParen, TokenOpenBracket:
		return true
	}
	return false
}

// closes reports whether the kind decreases nesting depth.
func (k TokenKind) closes() bool {
	switch k {
	case TokenCloseBrace, TokenClosePipeBrace, TokenCloseParen, TokenCloseBracket:
		return true
	}
	return false
}

var keywords = map[string]TokenKind{
	"import":  TokenImportKeyword,
	"service": TokenServiceKeyword,
	"on":      TokenOnKeyword,
}

// Position is a location in the original source. Line and Column are 1-based;
// synthesized tokens carry the zero Position.
type Position struct {
	Offset int
	Line   int
	Column int
}

// IsValid reports whether the position refers to parsed source.
func (p Position) IsValid() bool { return p.Line > 0 }

// Token is a leaf of the tree. Tokens are immutable; the With* methods return
// modified copies.
type Token struct {
	kind     TokenKind
	text     string
	leading  MinutiaeList
	trailing MinutiaeList
	pos      Position
}

// NewToken creates a synthesized token.
func NewToken(kind TokenKind, text string, leading, trailing MinutiaeList) *Token {
	return &Token{kind: kind, text: text, leading: leading, trailing: trailing}
}

// NewIdentifier creates a synthesized identifier token without minutiae.
func NewIdentifier(name string) *Token {
	return NewToken(TokenIdentifier, name, nil, nil)
}

// NewStringLiteral creates a string literal token for value, quoting and
// escaping it.
func NewStringLiteral(value string, leading, trailing MinutiaeList) *Token {
	return NewToken(TokenStringLiteral, QuoteString(value), leading, trailing)
}

func (t *Token) Kind() TokenKind        { return t.kind }
func (t *Token) Text() string           { return t.text }
func (t *Token) Leading() MinutiaeList  { return t.leading }
func (t *Token) Trailing() MinutiaeList { return t.trailing }
func (t *Token) Pos() Position          { return t.pos }

// Is reports whether t is non-nil and of the given kind.
func (t *Token) Is(kind TokenKind) bool { return t != nil && t.kind == kind }

// WithLeading returns a copy of t with its leading minutiae replaced.
func (t *Token) WithLeading(l MinutiaeList) *Token {
	c := *t
	c.leading = l
	return &c
}

// WithTrailing returns a copy of t with its trailing minutiae replaced.
func (t *Token) WithTrailing(l MinutiaeList) *Token {
	c := *t
	c.trailing = l
	return &c
}

// FullText is the token text surrounded by its minutiae.
func (t *Token) FullText() string {
	var b strings.Builder
	t.writeTo(&b)
	return b.String()
}

func (t *Token) writeTo(b *strings.Builder) {
	t.leading.writeTo(b)
	b.WriteString(t.text)
	t.trailing.writeTo(b)
}
