package syntax

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrInvalidLiteral is returned by UnquoteString for malformed literals.
var ErrInvalidLiteral = errors.New("syntax: invalid string literal")

// QuoteString renders s as a double-quoted string literal. Quotes, backslashes
// and control characters are escaped, so any value round-trips through
// UnquoteString.
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f || r == utf8.RuneError {
				fmt.Fprintf(&b, `\u{%X}`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// UnquoteString decodes a double-quoted string literal.
func UnquoteString(lit string) (string, error) {
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		return "", fmt.Errorf("%w: %s", ErrInvalidLiteral, lit)
	}
	body := lit[1 : len(lit)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '"' {
			return "", fmt.Errorf("%w: unescaped quote in %s", ErrInvalidLiteral, lit)
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("%w: dangling escape in %s", ErrInvalidLiteral, lit)
		}
		switch body[i] {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			end := strings.IndexByte(body[i:], '}')
			if i+1 >= len(body) || body[i+1] != '{' || end < 0 {
				return "", fmt.Errorf("%w: bad unicode escape in %s", ErrInvalidLiteral, lit)
			}
			code, err := strconv.ParseUint(body[i+2:i+end], 16, 32)
			if err != nil || !utf8.ValidRune(rune(code)) {
				return "", fmt.Errorf("%w: bad unicode escape in %s", ErrInvalidLiteral, lit)
			}
			b.WriteRune(rune(code))
			i += end
		default:
			return "", fmt.Errorf("%w: unknown escape \\%c in %s", ErrInvalidLiteral, body[i], lit)
		}
	}
	return b.String(), nil
}

// IsIdentifier reports whether s is a plain identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isIdentStart(c) || (i > 0 && isDigit(c)) {
			continue
		}
		return false
	}
	return true
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
