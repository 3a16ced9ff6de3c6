// Package transformers runs ordered source-modifier tasks over a compiled
// package. Each task inspects the compilation and submits replacement
// document text to a sink; tasks never mutate syntax trees in place.
package transformers

import (
	"context"
	"fmt"

	"github.com/strogmv/websubc/compiler/project"
	"github.com/strogmv/websubc/compiler/semantic"
	"github.com/strogmv/websubc/compiler/syntax"
)

// SemanticModel resolves syntax nodes of one module to symbols.
type SemanticModel interface {
	ResolveSymbol(n syntax.Node) (semantic.Symbol, bool)
}

// Compilation is the read-only view of a compiled package given to tasks.
type Compilation interface {
	// HasErrorSeverity reports whether any diagnostic is an error.
	HasErrorSeverity() bool

	// ModuleIDs lists modules in a stable order.
	ModuleIDs() []project.ModuleID

	// DocumentIDs lists the documents of a module in a stable order.
	DocumentIDs(mod project.ModuleID) []project.DocumentID

	SyntaxTree(mod project.ModuleID, doc project.DocumentID) (*syntax.Tree, bool)
	SemanticModel(mod project.ModuleID) (SemanticModel, bool)
}

// Sink receives the complete replacement text of a document.
type Sink interface {
	ModifySourceFile(text string, mod project.ModuleID, doc project.DocumentID)
}

// Task is a source modifier.
type Task interface {
	// Name returns the task's identifier.
	Name() string

	// Modify inspects c and submits replacements to sink. It must be
	// idempotent over its own output.
	Modify(ctx context.Context, c Compilation, sink Sink) (Report, error)
}

// Report summarizes one task run.
type Report struct {
	Task               string
	Skipped            bool
	DocumentsVisited   int
	DocumentsRewritten int
	ServicesInjected   int
}

// Registry holds tasks in registration order.
type Registry struct {
	tasks []Task
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make([]Task, 0),
	}
}

// Register adds a task to the registry.
func (r *Registry) Register(t Task) {
	r.tasks = append(r.tasks, t)
}

// Tasks returns the registered tasks in order.
func (r *Registry) Tasks() []Task { return r.tasks }

// Apply runs all tasks in order and stops at the first error.
func (r *Registry) Apply(ctx context.Context, c Compilation, sink Sink) ([]Report, error) {
	reports := make([]Report, 0, len(r.tasks))
	for _, t := range r.tasks {
		rep, err := t.Modify(ctx, c, sink)
		if rep.Task == "" {
			rep.Task = t.Name()
		}
		reports = append(reports, rep)
		if err != nil {
			return reports, fmt.Errorf("task %s: %w", t.Name(), err)
		}
	}
	return reports, nil
}
