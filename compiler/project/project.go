// Package project models a source package on disk: its modules, their
// documents and parsed syntax trees.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/strogmv/websubc/compiler/syntax"
)

// SourceExt is the extension of source documents.
const SourceExt = ".bal"

// ModuleID identifies a module within a package, e.g. "orders" for the
// default module or "orders.events" for a named one.
type ModuleID string

// DocumentID identifies a document within a module by its file name.
type DocumentID string

// Package is a loaded source package.
type Package struct {
	Name    string
	Root    string
	Modules []*Module
}

// Module groups the documents of one module.
type Module struct {
	ID        ModuleID
	Dir       string
	Documents []*Document
}

// Document is one source file and its syntax tree.
type Document struct {
	ID     DocumentID
	Path   string
	Source string
	Tree   *syntax.Tree
}

// DocumentError attributes err to one document of a package.
type DocumentError struct {
	Module   ModuleID
	Document DocumentID
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Module, e.Document, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// Module returns the module with the given id.
func (p *Package) Module(id ModuleID) (*Module, bool) {
	for _, m := range p.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// Document returns the document with the given id.
func (m *Module) Document(id DocumentID) (*Document, bool) {
	for _, d := range m.Documents {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

// DocumentCount is the number of documents across all modules.
func (p *Package) DocumentCount() int {
	n := 0
	for _, m := range p.Modules {
		n += len(m.Documents)
	}
	return n
}

// Load reads the package rooted at dir. Source files directly under dir form
// the default module; files under modules/<name>/ form named modules.
func Load(dir string) (*Package, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve package dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat package dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("package root %s is not a directory", abs)
	}

	pkg := &Package{Name: packageName(abs), Root: abs}
	def, err := loadModule(ModuleID(pkg.Name), abs)
	if err != nil {
		return nil, err
	}
	if len(def.Documents) > 0 {
		pkg.Modules = append(pkg.Modules, def)
	}

	modulesDir := filepath.Join(abs, "modules")
	entries, err := os.ReadDir(modulesDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read modules dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := loadModule(ModuleID(pkg.Name+"."+e.Name()), filepath.Join(modulesDir, e.Name()))
		if err != nil {
			return nil, err
		}
		if len(m.Documents) > 0 {
			pkg.Modules = append(pkg.Modules, m)
		}
	}
	sortModules(pkg.Modules)
	if len(pkg.Modules) == 0 {
		return nil, fmt.Errorf("no %s sources under %s", SourceExt, abs)
	}
	return pkg, nil
}

func loadModule(id ModuleID, dir string) (*Module, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read module %s: %w", id, err)
	}
	m := &Module{ID: id, Dir: dir}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != SourceExt {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", path, err)
		}
		m.Documents = append(m.Documents, newDocument(DocumentID(e.Name()), path, string(data)))
	}
	sort.Slice(m.Documents, func(i, j int) bool { return m.Documents[i].ID < m.Documents[j].ID })
	return m, nil
}

// LoadSources builds an in-memory package. Documents have no path and are
// never written by Modifier.Apply.
func LoadSources(name string, sources map[ModuleID]map[DocumentID]string) *Package {
	pkg := &Package{Name: name}
	for id, docs := range sources {
		m := &Module{ID: id}
		for docID, src := range docs {
			m.Documents = append(m.Documents, newDocument(docID, "", src))
		}
		sort.Slice(m.Documents, func(i, j int) bool { return m.Documents[i].ID < m.Documents[j].ID })
		pkg.Modules = append(pkg.Modules, m)
	}
	sortModules(pkg.Modules)
	return pkg
}

func newDocument(id DocumentID, path, src string) *Document {
	return &Document{ID: id, Path: path, Source: src, Tree: syntax.Parse(string(id), src)}
}

func sortModules(mods []*Module) {
	sort.Slice(mods, func(i, j int) bool { return mods[i].ID < mods[j].ID })
}

func packageName(dir string) string {
	name := strings.ToLower(filepath.Base(dir))
	name = strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '.' {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == string(filepath.Separator) {
		return "main"
	}
	return name
}
