package transformers

import (
	"context"
	"errors"
	"testing"

	"github.com/strogmv/websubc/compiler/project"
	"github.com/strogmv/websubc/compiler/syntax"
)

type emptyCompilation struct{}

func (emptyCompilation) HasErrorSeverity() bool                               { return false }
func (emptyCompilation) ModuleIDs() []project.ModuleID                        { return nil }
func (emptyCompilation) DocumentIDs(project.ModuleID) []project.DocumentID    { return nil }
func (emptyCompilation) SemanticModel(project.ModuleID) (SemanticModel, bool) { return nil, false }
func (emptyCompilation) SyntaxTree(project.ModuleID, project.DocumentID) (*syntax.Tree, bool) {
	return nil, false
}

type recordingTask struct {
	name  string
	calls *[]string
	err   error
}

func (t recordingTask) Name() string { return t.name }

func (t recordingTask) Modify(_ context.Context, _ Compilation, sink Sink) (Report, error) {
	*t.calls = append(*t.calls, t.name)
	sink.ModifySourceFile(t.name, "mod", "doc.bal")
	return Report{DocumentsVisited: 1}, t.err
}

type sinkFunc func(text string, mod project.ModuleID, doc project.DocumentID)

func (f sinkFunc) ModifySourceFile(text string, mod project.ModuleID, doc project.DocumentID) {
	f(text, mod, doc)
}

func TestRegistryAppliesInOrder(t *testing.T) {
	var calls, texts []string
	r := NewRegistry()
	r.Register(recordingTask{name: "first", calls: &calls})
	r.Register(recordingTask{name: "second", calls: &calls})

	reports, err := r.Apply(context.Background(), emptyCompilation{}, sinkFunc(func(text string, _ project.ModuleID, _ project.DocumentID) {
		texts = append(texts, text)
	}))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("unexpected call order %v", calls)
	}
	if len(reports) != 2 || reports[0].Task != "first" || reports[1].DocumentsVisited != 1 {
		t.Fatalf("unexpected reports %+v", reports)
	}
	if len(texts) != 2 {
		t.Fatalf("expected two submissions, got %d", len(texts))
	}
}

func TestRegistryStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	var calls []string
	r := NewRegistry()
	r.Register(recordingTask{name: "failing", calls: &calls, err: boom})
	r.Register(recordingTask{name: "never", calls: &calls})

	reports, err := r.Apply(context.Background(), emptyCompilation{}, sinkFunc(func(string, project.ModuleID, project.DocumentID) {}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if len(calls) != 1 || len(reports) != 1 {
		t.Fatalf("registry must stop at the failing task, calls=%v", calls)
	}
	if len(r.Tasks()) != 2 {
		t.Fatalf("expected two registered tasks")
	}
}
