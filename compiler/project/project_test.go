package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadPackageLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "order-hub")
	writeFile(t, filepath.Join(root, "main.bal"), "service / on l {}\n")
	writeFile(t, filepath.Join(root, "aux.bal"), "function f() {}\n")
	writeFile(t, filepath.Join(root, "README.md"), "# not a source\n")
	writeFile(t, filepath.Join(root, "modules", "events", "events.bal"), "type E record {};\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "modules", "empty"), 0o755))

	pkg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "order_hub", pkg.Name)
	require.Len(t, pkg.Modules, 2)
	assert.Equal(t, ModuleID("order_hub"), pkg.Modules[0].ID)
	assert.Equal(t, ModuleID("order_hub.events"), pkg.Modules[1].ID)

	docs := pkg.Modules[0].Documents
	require.Len(t, docs, 2)
	assert.Equal(t, DocumentID("aux.bal"), docs[0].ID)
	assert.Equal(t, DocumentID("main.bal"), docs[1].ID)
	assert.Equal(t, "service / on l {}\n", docs[1].Tree.String())
	assert.Equal(t, 3, pkg.DocumentCount())
}

func TestLoadRejectsEmptyAndMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestModifierApplyAndDiff(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "main.bal")
	writeFile(t, path, "service on l {\n}\n")
	pkg, err := Load(root)
	require.NoError(t, err)

	mod := pkg.Modules[0]
	sink := NewModifier(pkg)
	sink.ModifySourceFile("@a:B\nservice on l {\n}\n", mod.ID, "main.bal")

	diff, err := sink.Diff()
	require.NoError(t, err)
	assert.Contains(t, diff, "+@a:B")
	assert.Contains(t, diff, "a/"+path)

	n, err := sink.Apply()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "@a:B\nservice on l {\n}\n", string(data))
}

func TestModifierKeepsLastSubmission(t *testing.T) {
	pkg := LoadSources("p", map[ModuleID]map[DocumentID]string{"p": {"a.bal": "x;\n", "b.bal": "y;\n"}})
	sink := NewModifier(pkg)
	sink.ModifySourceFile("first", "p", "b.bal")
	sink.ModifySourceFile("x;\n", "p", "a.bal")
	sink.ModifySourceFile("second", "p", "b.bal")

	repl := sink.Replacements()
	require.Len(t, repl, 2)
	assert.Equal(t, DocumentID("b.bal"), repl[0].Document)
	assert.Equal(t, "second", repl[0].Text)
	assert.False(t, repl[1].Changed())

	n, err := sink.Apply()
	require.NoError(t, err)
	assert.Zero(t, n, "in-memory documents are never written")

	diff, err := sink.Diff()
	require.NoError(t, err)
	assert.True(t, strings.Contains(diff, "p/b.bal"))
	assert.False(t, strings.Contains(diff, "a.bal"))
}
