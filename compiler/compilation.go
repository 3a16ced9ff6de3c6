package compiler

import (
	"fmt"

	"github.com/strogmv/websubc/compiler/project"
	"github.com/strogmv/websubc/compiler/semantic"
	"github.com/strogmv/websubc/compiler/syntax"
	"github.com/strogmv/websubc/compiler/transformers"
)

// CodeDuplicateServicePath flags two services declaring the same absolute
// path on the same listener.
const CodeDuplicateServicePath = "COMPILE_DUPLICATE_SERVICE_PATH"

// Diagnostic is a syntax or semantic diagnostic located in a document.
type Diagnostic struct {
	Module   project.ModuleID
	Document project.DocumentID
	syntax.Diagnostic
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s/%s:%s", d.Module, d.Document, d.Diagnostic.String())
}

// Compilation is the result of compiling a package: its diagnostics and one
// semantic model per module.
type Compilation struct {
	pkg    *project.Package
	diags  []Diagnostic
	models map[project.ModuleID]*semantic.Model
}

var _ transformers.Compilation = (*Compilation)(nil)

// Compile parses diagnostics out of every document and builds the semantic
// models of pkg.
func Compile(pkg *project.Package) *Compilation {
	c := &Compilation{pkg: pkg, models: make(map[project.ModuleID]*semantic.Model)}
	for _, mod := range pkg.Modules {
		for _, doc := range mod.Documents {
			for _, d := range doc.Tree.Diagnostics() {
				c.diags = append(c.diags, Diagnostic{Module: mod.ID, Document: doc.ID, Diagnostic: d})
			}
		}
		c.models[mod.ID] = semantic.Build(mod)
		c.checkServicePaths(mod)
	}
	return c
}

func (c *Compilation) checkServicePaths(mod *project.Module) {
	type key struct{ path, listener string }
	seen := make(map[key]semantic.SymbolID)
	for _, doc := range mod.Documents {
		for _, member := range doc.Tree.Root().Members() {
			svc, ok := member.(*syntax.ServiceDecl)
			if !ok || svc.IsMalformed() {
				continue
			}
			path, ok := svc.AbsolutePath()
			if !ok {
				continue
			}
			k := key{path, svc.Listener()}
			pos := svc.ServiceKeyword().Pos()
			if first, dup := seen[k]; dup {
				c.diags = append(c.diags, Diagnostic{
					Module:   mod.ID,
					Document: doc.ID,
					Diagnostic: syntax.Diagnostic{
						Severity: syntax.SeverityWarning,
						Code:     CodeDuplicateServicePath,
						Message:  fmt.Sprintf("service path %s on %s already declared at %s", path, k.listener, first),
						Pos:      pos,
					},
				})
				continue
			}
			seen[k] = semantic.SymbolID{Module: mod.ID, Document: doc.ID, Line: pos.Line, Column: pos.Column}
		}
	}
}

// Package is the compiled package.
func (c *Compilation) Package() *project.Package { return c.pkg }

// Diagnostics returns all diagnostics in document order.
func (c *Compilation) Diagnostics() []Diagnostic { return c.diags }

// Errors returns only error-severity diagnostics.
func (c *Compilation) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range c.diags {
		if d.Severity == syntax.SeverityError {
			out = append(out, d)
		}
	}
	return out
}

func (c *Compilation) HasErrorSeverity() bool {
	for _, d := range c.diags {
		if d.Severity == syntax.SeverityError {
			return true
		}
	}
	return false
}

func (c *Compilation) ModuleIDs() []project.ModuleID {
	ids := make([]project.ModuleID, 0, len(c.pkg.Modules))
	for _, m := range c.pkg.Modules {
		ids = append(ids, m.ID)
	}
	return ids
}

func (c *Compilation) DocumentIDs(mod project.ModuleID) []project.DocumentID {
	m, ok := c.pkg.Module(mod)
	if !ok {
		return nil
	}
	ids := make([]project.DocumentID, 0, len(m.Documents))
	for _, d := range m.Documents {
		ids = append(ids, d.ID)
	}
	return ids
}

func (c *Compilation) SyntaxTree(mod project.ModuleID, doc project.DocumentID) (*syntax.Tree, bool) {
	m, ok := c.pkg.Module(mod)
	if !ok {
		return nil, false
	}
	d, ok := m.Document(doc)
	if !ok {
		return nil, false
	}
	return d.Tree, true
}

func (c *Compilation) SemanticModel(mod project.ModuleID) (transformers.SemanticModel, bool) {
	m, ok := c.models[mod]
	if !ok {
		return nil, false
	}
	return m, true
}
