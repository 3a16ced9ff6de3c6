// Package semantic resolves syntax nodes to stable symbol identities.
package semantic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/strogmv/websubc/compiler/project"
)

// SymbolKind classifies a symbol.
type SymbolKind int

const (
	SymbolService SymbolKind = iota + 1
)

func (k SymbolKind) String() string {
	if k == SymbolService {
		return "service"
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// ErrInvalidSymbolID is returned when a textual symbol id cannot be parsed.
var ErrInvalidSymbolID = errors.New("semantic: invalid symbol id")

// SymbolID is the stable identity of a declaration: the position of its
// defining keyword inside a document. Two compilations of the same source
// yield equal ids.
type SymbolID struct {
	Module   project.ModuleID
	Document project.DocumentID
	Line     int
	Column   int
}

// IsZero reports whether id is the zero value.
func (id SymbolID) IsZero() bool { return id == SymbolID{} }

// String renders id as "module/document:line:column".
func (id SymbolID) String() string {
	return fmt.Sprintf("%s/%s:%d:%d", id.Module, id.Document, id.Line, id.Column)
}

func (id SymbolID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *SymbolID) UnmarshalText(b []byte) error {
	parsed, err := ParseSymbolID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseSymbolID parses the output of SymbolID.String.
func ParseSymbolID(s string) (SymbolID, error) {
	colCut := strings.LastIndexByte(s, ':')
	if colCut < 0 {
		return SymbolID{}, fmt.Errorf("%w: %q", ErrInvalidSymbolID, s)
	}
	lineCut := strings.LastIndexByte(s[:colCut], ':')
	if lineCut < 0 {
		return SymbolID{}, fmt.Errorf("%w: %q", ErrInvalidSymbolID, s)
	}
	modCut := strings.IndexByte(s[:lineCut], '/')
	if modCut <= 0 || modCut == lineCut-1 {
		return SymbolID{}, fmt.Errorf("%w: %q", ErrInvalidSymbolID, s)
	}
	line, err := strconv.Atoi(s[lineCut+1 : colCut])
	if err != nil || line < 1 {
		return SymbolID{}, fmt.Errorf("%w: bad line in %q", ErrInvalidSymbolID, s)
	}
	col, err := strconv.Atoi(s[colCut+1:])
	if err != nil || col < 1 {
		return SymbolID{}, fmt.Errorf("%w: bad column in %q", ErrInvalidSymbolID, s)
	}
	return SymbolID{
		Module:   project.ModuleID(s[:modCut]),
		Document: project.DocumentID(s[modCut+1 : lineCut]),
		Line:     line,
		Column:   col,
	}, nil
}

// Symbol is what the semantic model knows about a declaration.
type Symbol struct {
	ID   SymbolID
	Kind SymbolKind
	Name string
}
