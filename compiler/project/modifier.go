package project

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
)

// Replacement is the new full text submitted for one document.
type Replacement struct {
	Module   ModuleID
	Document DocumentID
	Path     string
	Original string
	Text     string
}

// Changed reports whether the replacement differs from the original text.
func (r Replacement) Changed() bool { return r.Original != r.Text }

type docKey struct {
	mod ModuleID
	doc DocumentID
}

// Modifier collects replacement source text for documents of a package.
// It is safe for concurrent use.
type Modifier struct {
	mu    sync.Mutex
	pkg   *Package
	order []docKey
	repl  map[docKey]Replacement
}

// NewModifier returns a sink for replacements against pkg.
func NewModifier(pkg *Package) *Modifier {
	return &Modifier{pkg: pkg, repl: make(map[docKey]Replacement)}
}

// ModifySourceFile records text as the new content of the document. A later
// submission for the same document replaces the earlier one.
func (m *Modifier) ModifySourceFile(text string, mod ModuleID, doc DocumentID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := docKey{mod, doc}
	r, seen := m.repl[k]
	if !seen {
		r = Replacement{Module: mod, Document: doc}
		if m.pkg != nil {
			if md, ok := m.pkg.Module(mod); ok {
				if d, ok := md.Document(doc); ok {
					r.Path = d.Path
					r.Original = d.Source
				}
			}
		}
		m.order = append(m.order, k)
	}
	r.Text = text
	m.repl[k] = r
}

// Replacements returns submissions in the order they were first made.
func (m *Modifier) Replacements() []Replacement {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Replacement, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.repl[k])
	}
	return out
}

// Apply writes every changed replacement that has a file path and returns
// the number of files written.
func (m *Modifier) Apply() (int, error) {
	written := 0
	for _, r := range m.Replacements() {
		if r.Path == "" || !r.Changed() {
			continue
		}
		info, err := os.Stat(r.Path)
		if err != nil {
			return written, fmt.Errorf("stat %s: %w", r.Path, err)
		}
		if err := os.WriteFile(r.Path, []byte(r.Text), info.Mode().Perm()); err != nil {
			return written, fmt.Errorf("write %s: %w", r.Path, err)
		}
		written++
	}
	return written, nil
}

// Diff renders a unified diff of every changed replacement.
func (m *Modifier) Diff() (string, error) {
	var b strings.Builder
	for _, r := range m.Replacements() {
		if !r.Changed() {
			continue
		}
		name := r.Path
		if name == "" {
			name = string(r.Module) + "/" + string(r.Document)
		}
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(r.Original),
			B:        difflib.SplitLines(r.Text),
			FromFile: "a/" + name,
			ToFile:   "b/" + name,
			Context:  3,
		})
		if err != nil {
			return "", fmt.Errorf("diff %s: %w", name, err)
		}
		b.WriteString(diff)
	}
	return b.String(), nil
}
