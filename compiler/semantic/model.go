package semantic

import (
	"github.com/strogmv/websubc/compiler/project"
	"github.com/strogmv/websubc/compiler/syntax"
)

// Model holds the symbols of one module. It is immutable once built and safe
// for concurrent reads.
type Model struct {
	module  project.ModuleID
	byNode  map[syntax.Node]Symbol
	byID    map[SymbolID]Symbol
	symbols []Symbol
}

// NewModel returns an empty model for module.
func NewModel(module project.ModuleID) *Model {
	return &Model{
		module: module,
		byNode: make(map[syntax.Node]Symbol),
		byID:   make(map[SymbolID]Symbol),
	}
}

// Build creates the model of every document in mod.
func Build(mod *project.Module) *Model {
	m := NewModel(mod.ID)
	for _, doc := range mod.Documents {
		m.AddDocument(doc.ID, doc.Tree)
	}
	return m
}

// Module is the module the model describes.
func (m *Model) Module() project.ModuleID { return m.module }

// AddDocument registers the declarations of tree. Malformed service
// declarations have no symbol.
func (m *Model) AddDocument(doc project.DocumentID, tree *syntax.Tree) {
	for _, member := range tree.Root().Members() {
		svc, ok := member.(*syntax.ServiceDecl)
		if !ok || svc.IsMalformed() {
			continue
		}
		pos := svc.ServiceKeyword().Pos()
		if !pos.IsValid() {
			continue
		}
		name, _ := svc.AbsolutePath()
		sym := Symbol{
			ID:   SymbolID{Module: m.module, Document: doc, Line: pos.Line, Column: pos.Column},
			Kind: SymbolService,
			Name: name,
		}
		m.byNode[svc] = sym
		m.byID[sym.ID] = sym
		m.symbols = append(m.symbols, sym)
	}
}

// ResolveSymbol returns the symbol declared by n, if any.
func (m *Model) ResolveSymbol(n syntax.Node) (Symbol, bool) {
	if m == nil || n == nil {
		return Symbol{}, false
	}
	sym, ok := m.byNode[n]
	return sym, ok
}

// Lookup returns the symbol with the given id.
func (m *Model) Lookup(id SymbolID) (Symbol, bool) {
	sym, ok := m.byID[id]
	return sym, ok
}

// Symbols returns all symbols in declaration order.
func (m *Model) Symbols() []Symbol { return m.symbols }
