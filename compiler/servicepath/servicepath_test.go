package servicepath

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strogmv/websubc/compiler/project"
	"github.com/strogmv/websubc/compiler/semantic"
)

const mainSource = `import ballerina/websub;

listener websub:Listener shared = new (9090);
listener http:Listener api = new (8080);

service on shared {
}

service on new websub:Listener(9091) {
}

service /fixed on shared {
}

@websub:SubscriberServiceConfig {}
service on shared {
}

service on api {
}

isolated service websub:SubscriberService on new Other() {
}
`

func sequence() Generator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("/path%02d", n)
	}
}

func sources(docs map[project.DocumentID]string) *project.Package {
	return project.LoadSources("app", map[project.ModuleID]map[project.DocumentID]string{"app": docs})
}

func TestAnalyzeSelectsWebSubServices(t *testing.T) {
	pkg := sources(map[project.DocumentID]string{"main.bal": mainSource, "empty.bal": "function f() {}\n"})
	store := NewStore()
	a := &Analyzer{Generate: sequence()}

	res, err := a.Analyze(context.Background(), pkg, store)
	require.NoError(t, err)
	assert.Equal(t, Result{Documents: 1, Services: 3}, res)

	infos, ok := store.Lookup("app", "main.bal")
	require.True(t, ok)
	require.Len(t, infos, 3)
	assert.Equal(t, semantic.SymbolID{Module: "app", Document: "main.bal", Line: 6, Column: 1}, infos[0].ServiceID)
	assert.Equal(t, "/path01", infos[0].ServicePath)
	assert.Equal(t, 9, infos[1].ServiceID.Line)
	assert.Equal(t, 22, infos[2].ServiceID.Line)
	assert.Equal(t, 10, infos[2].ServiceID.Column)

	_, ok = store.Lookup("app", "empty.bal")
	assert.False(t, ok, "documents without candidates get no entry")
}

func TestAnalyzeIsDeterministicWithInjectedGenerator(t *testing.T) {
	run := func() []Info {
		store := NewStore()
		_, err := (&Analyzer{Generate: sequence()}).Analyze(context.Background(), sources(map[project.DocumentID]string{"main.bal": mainSource}), store)
		require.NoError(t, err)
		infos, _ := store.Lookup("app", "main.bal")
		return infos
	}
	assert.Equal(t, run(), run())
}

func TestAnalyzeRejectsExhaustedGenerator(t *testing.T) {
	a := &Analyzer{Generate: func() string { return "/same" }}
	_, err := a.Analyze(context.Background(), sources(map[project.DocumentID]string{"main.bal": mainSource}), NewStore())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no unique service path")
}

func TestAnalyzeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAnalyzer(nil).Analyze(ctx, sources(map[project.DocumentID]string{"main.bal": mainSource}), NewStore())
	require.ErrorIs(t, err, context.Canceled)
}

func TestRandomPathShape(t *testing.T) {
	re := regexp.MustCompile(`^/[a-z0-9]{10}$`)
	gen := RandomPath(DefaultPathLength)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		p := gen()
		require.Regexp(t, re, p)
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}
	assert.Len(t, RandomPath(40)(), 41)
}

func TestStorePutValidates(t *testing.T) {
	store := NewStore()
	id := semantic.SymbolID{Module: "app", Document: "main.bal", Line: 1, Column: 1}

	require.ErrorIs(t, store.Put("app", "main.bal", []Info{{ServicePath: "/a"}}), ErrInvalidInfo)
	require.ErrorIs(t, store.Put("app", "main.bal", []Info{{ServiceID: id, ServicePath: "a"}}), ErrInvalidInfo)
	require.ErrorIs(t, store.Put("app", "other.bal", []Info{{ServiceID: id, ServicePath: "/a"}}), ErrInvalidInfo)
	require.NoError(t, store.Put("app", "main.bal", []Info{{ServiceID: id, ServicePath: "/a"}}))
	assert.Equal(t, 1, store.Len())
}

func TestStoreLookupReturnsCopy(t *testing.T) {
	store := NewStore()
	id := semantic.SymbolID{Module: "app", Document: "main.bal", Line: 1, Column: 1}
	require.NoError(t, store.Put("app", "main.bal", []Info{{ServiceID: id, ServicePath: "/a"}}))

	infos, _ := store.Lookup("app", "main.bal")
	infos[0].ServicePath = "/mutated"
	again, _ := store.Lookup("app", "main.bal")
	assert.Equal(t, "/a", again[0].ServicePath)

	store.Reset()
	assert.Zero(t, store.Len())
}

func TestStoreConcurrentReads(t *testing.T) {
	store := NewStore()
	id := semantic.SymbolID{Module: "app", Document: "main.bal", Line: 1, Column: 1}
	require.NoError(t, store.Put("app", "main.bal", []Info{{ServiceID: id, ServicePath: "/a"}}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if infos, ok := store.Lookup("app", "main.bal"); !ok || len(infos) != 1 {
					t.Error("lookup failed")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := NewStore()
	_, err := (&Analyzer{Generate: sequence()}).Analyze(context.Background(), sources(map[project.DocumentID]string{"main.bal": mainSource, "b.bal": "service on new websub:Listener(1) {}\n"}), store)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, store.WriteYAML(&buf))
	assert.Contains(t, buf.String(), "app/b.bal:1:1")

	loaded, err := ReadYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, store.Documents(), loaded.Documents())
	for _, k := range store.Documents() {
		want, _ := store.Lookup(k.Module, k.Document)
		got, _ := loaded.Lookup(k.Module, k.Document)
		assert.Equal(t, want, got)
	}
}

func TestReadYAMLRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"version":    "version: 2\ndocuments: []\n",
		"unknown":    "version: 1\nextra: true\n",
		"bad id":     "version: 1\ndocuments:\n  - module: app\n    document: a.bal\n    services:\n      - service_id: nope\n        service_path: /x\n",
		"wrong doc":  "version: 1\ndocuments:\n  - module: app\n    document: a.bal\n    services:\n      - service_id: app/b.bal:1:1\n        service_path: /x\n",
		"empty path": "version: 1\ndocuments:\n  - module: app\n    document: a.bal\n    services:\n      - service_id: app/a.bal:1:1\n        service_path: \"\"\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadYAML(strings.NewReader(in))
			require.Error(t, err)
		})
	}
}
