package semantic

import (
	"errors"
	"testing"

	"github.com/strogmv/websubc/compiler/project"
	"github.com/strogmv/websubc/compiler/syntax"
)

const src = `import ballerina/websub;

service /a on l {
}

  service on new websub:Listener(9090) {
  }

service / on {}

function f() {}
`

func TestResolveSymbol(t *testing.T) {
	tree := syntax.Parse("main.bal", src)
	m := NewModel("app")
	m.AddDocument("main.bal", tree)

	members := tree.Root().Members()
	first, ok := m.ResolveSymbol(members[0])
	if !ok {
		t.Fatalf("first service should resolve")
	}
	want := SymbolID{Module: "app", Document: "main.bal", Line: 3, Column: 1}
	if first.ID != want || first.Kind != SymbolService || first.Name != "/a" {
		t.Fatalf("unexpected symbol %+v", first)
	}

	second, ok := m.ResolveSymbol(members[1])
	if !ok || second.ID.Line != 6 || second.ID.Column != 3 {
		t.Fatalf("unexpected second symbol %+v (%v)", second, ok)
	}

	if _, ok := m.ResolveSymbol(members[2]); ok {
		t.Fatalf("malformed service must not resolve")
	}
	if _, ok := m.ResolveSymbol(members[3]); ok {
		t.Fatalf("function must not resolve")
	}
	if len(m.Symbols()) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(m.Symbols()))
	}
	if got, ok := m.Lookup(want); !ok || got != first {
		t.Fatalf("lookup by id failed")
	}
}

func TestResolveSymbolUnknownNode(t *testing.T) {
	m := NewModel("app")
	m.AddDocument("a.bal", syntax.Parse("a.bal", src))
	other := syntax.Parse("a.bal", src)
	if _, ok := m.ResolveSymbol(other.Root().Members()[0]); ok {
		t.Fatalf("node from another tree must not resolve")
	}
	var nilModel *Model
	if _, ok := nilModel.ResolveSymbol(other.Root()); ok {
		t.Fatalf("nil model must not resolve")
	}
}

func TestSymbolIDsAreStableAcrossCompilations(t *testing.T) {
	load := func() *project.Module {
		sources := map[project.ModuleID]map[project.DocumentID]string{"app": {"main.bal": src}}
		return project.LoadSources("app", sources).Modules[0]
	}
	a := Build(load()).Symbols()
	b := Build(load()).Symbols()
	if len(a) != len(b) {
		t.Fatalf("symbol count differs")
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("symbol %d differs: %v vs %v", i, a[i].ID, b[i].ID)
		}
	}
}

func TestParseSymbolID(t *testing.T) {
	id := SymbolID{Module: "app.events", Document: "svc.bal", Line: 12, Column: 5}
	got, err := ParseSymbolID(id.String())
	if err != nil || got != id {
		t.Fatalf("round trip failed: %v %v", got, err)
	}
	for _, s := range []string{"", "app", "app/x.bal:1", "/x.bal:1:1", "app/:1:1", "app/x.bal:0:1", "app/x.bal:1:c"} {
		if _, err := ParseSymbolID(s); !errors.Is(err, ErrInvalidSymbolID) {
			t.Errorf("ParseSymbolID(%q): expected ErrInvalidSymbolID, got %v", s, err)
		}
	}
}
