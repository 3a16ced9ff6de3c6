package syntax

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// lexer splits source into tokens. Trivia up to and including the first line
// break after a token is that token's trailing minutiae; all other trivia is
// leading minutiae of the next token.
type lexer struct {
	src        string
	off        int
	lineStarts []int
	diags      []Diagnostic
}

func newLexer(src string) *lexer {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			starts = append(starts, i+1)
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				continue
			}
			starts = append(starts, i+1)
		}
	}
	return &lexer{src: src, lineStarts: starts}
}

// Lex returns the tokens of src, always ending with an EOF token, and any
// lexical diagnostics.
func Lex(src string) ([]*Token, []Diagnostic) {
	lx := newLexer(src)
	var toks []*Token
	for {
		t := lx.next()
		toks = append(toks, t)
		if t.kind == TokenEOF {
			return toks, lx.diags
		}
	}
}

func (lx *lexer) position(off int) Position {
	line := sort.Search(len(lx.lineStarts), func(i int) bool { return lx.lineStarts[i] > off }) - 1
	return Position{Offset: off, Line: line + 1, Column: off - lx.lineStarts[line] + 1}
}

func (lx *lexer) errorf(off int, code, msg string) {
	lx.diags = append(lx.diags, Diagnostic{Severity: SeverityError, Code: code, Message: msg, Pos: lx.position(off)})
}

func (lx *lexer) next() *Token {
	leading := lx.minutiae(false)
	start := lx.off
	kind := lx.scan()
	t := &Token{kind: kind, text: lx.src[start:lx.off], leading: leading, pos: lx.position(start)}
	if kind != TokenEOF {
		t.trailing = lx.minutiae(true)
	}
	return t
}

// minutiae consumes trivia. In trailing mode it stops after the first line break.
func (lx *lexer) minutiae(trailing bool) MinutiaeList {
	var out MinutiaeList
	for lx.off < len(lx.src) {
		c := lx.src[lx.off]
		start := lx.off
		switch {
		case c == ' ' || c == '\t' || c == '\f' || c == '\v':
			for lx.off < len(lx.src) && isSpace(lx.src[lx.off]) {
				lx.off++
			}
			out = append(out, Whitespace(lx.src[start:lx.off]))
		case c == '\n' || c == '\r':
			lx.off++
			if c == '\r' && lx.off < len(lx.src) && lx.src[lx.off] == '\n' {
				lx.off++
			}
			out = append(out, EndOfLine(lx.src[start:lx.off]))
			if trailing {
				return out
			}
		case c == '/' && lx.off+1 < len(lx.src) && lx.src[lx.off+1] == '/':
			lx.skipToLineEnd()
			out = append(out, Comment(lx.src[start:lx.off]))
		default:
			return out
		}
	}
	return out
}

func (lx *lexer) skipToLineEnd() {
	for lx.off < len(lx.src) && lx.src[lx.off] != '\n' && lx.src[lx.off] != '\r' {
		lx.off++
	}
}

func (lx *lexer) scan() TokenKind {
	if lx.off >= len(lx.src) {
		return TokenEOF
	}
	start := lx.off
	c := lx.src[lx.off]
	switch c {
	case '"':
		lx.scanString()
		return TokenStringLiteral
	case '`':
		lx.off++
		for lx.off < len(lx.src) && lx.src[lx.off] != '`' {
			lx.off++
		}
		if lx.off >= len(lx.src) {
			lx.errorf(start, CodeUnterminatedTemplate, "unterminated template literal")
			return TokenTemplate
		}
		lx.off++
		return TokenTemplate
	case '#':
		lx.skipToLineEnd()
		return TokenDocLine
	case '{':
		lx.off++
		if lx.off < len(lx.src) && lx.src[lx.off] == '|' {
			lx.off++
			return TokenOpenBracePipe
		}
		return TokenOpenBrace
	case '|':
		lx.off++
		if lx.off < len(lx.src) && lx.src[lx.off] == '}' {
			lx.off++
			return TokenClosePipeBrace
		}
		return TokenOther
	}
	if kind, ok := punctuation[c]; ok {
		lx.off++
		return kind
	}
	if isDigit(c) {
		lx.scanNumber()
		return TokenNumericLiteral
	}
	r, size := utf8.DecodeRuneInString(lx.src[lx.off:])
	if c == '\'' && lx.off+1 < len(lx.src) {
		if r2, _ := utf8.DecodeRuneInString(lx.src[lx.off+1:]); isIdentRune(r2) {
			lx.off++
			lx.scanIdent()
			return TokenIdentifier
		}
	}
	if r == '_' || unicode.IsLetter(r) {
		lx.scanIdent()
		if kind, ok := keywords[lx.src[start:lx.off]]; ok {
			return kind
		}
		return TokenIdentifier
	}
	lx.off += size
	return TokenOther
}

var punctuation = map[byte]TokenKind{
	'@': TokenAt,
	':': TokenColon,
	',': TokenComma,
	';': TokenSemicolon,
	'}': TokenCloseBrace,
	'(': TokenOpenParen,
	')': TokenCloseParen,
	'[': TokenOpenBracket,
	']': TokenCloseBracket,
	'/': TokenSlash,
}

func (lx *lexer) scanString() {
	start := lx.off
	lx.off++
	for lx.off < len(lx.src) {
		switch lx.src[lx.off] {
		case '\\':
			lx.off += 2
			if lx.off > len(lx.src) {
				lx.off = len(lx.src)
			}
			continue
		case '"':
			lx.off++
			return
		case '\n', '\r':
			lx.errorf(start, CodeUnterminatedString, "unterminated string literal")
			return
		}
		lx.off++
	}
	lx.errorf(start, CodeUnterminatedString, "unterminated string literal")
}

func (lx *lexer) scanIdent() {
	for lx.off < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.off:])
		if !isIdentRune(r) {
			return
		}
		lx.off += size
	}
}

func (lx *lexer) scanNumber() {
	for lx.off < len(lx.src) {
		c := lx.src[lx.off]
		switch {
		case isDigit(c) || c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z'):
			lx.off++
		case c == '.' && lx.off+1 < len(lx.src) && isDigit(lx.src[lx.off+1]):
			lx.off++
		default:
			return
		}
	}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\f' || c == '\v' }

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
