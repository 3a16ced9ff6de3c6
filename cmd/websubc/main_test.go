package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const subscriberSource = `import ballerina/websub;

service on new websub:Listener(9090) {
    remote function onEventNotification(websub:ContentDistributionMessage event) {
    }
}
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunVersionAndUsage(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "websubc version")

	code, _, errOut := runCLI(t)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "Usage:")

	code, _, errOut = runCLI(t, "frobnicate")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "Unknown command: frobnicate")
}

func TestRewriteDryRunLeavesSources(t *testing.T) {
	root := writeProject(t, map[string]string{"main.bal": subscriberSource})

	code, out, errOut := runCLI(t, "rewrite", root)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "1 service(s) in 1 document(s) would be annotated")

	data, err := os.ReadFile(filepath.Join(root, "main.bal"))
	require.NoError(t, err)
	assert.Equal(t, subscriberSource, string(data))
}

func TestRewriteWriteIsIdempotent(t *testing.T) {
	root := writeProject(t, map[string]string{"main.bal": subscriberSource})

	code, out, errOut := runCLI(t, "rewrite", "-write", root)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "wrote 1 file(s)")

	data, err := os.ReadFile(filepath.Join(root, "main.bal"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "@websub:MetaInfo {\n    servicePath: \"/")

	code, out, errOut = runCLI(t, "rewrite", root, "-write")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "wrote 0 file(s)")
}

func TestAnalyzeThenRewriteFromSnapshot(t *testing.T) {
	root := writeProject(t, map[string]string{"main.bal": subscriberSource})
	snapshot := filepath.Join(t.TempDir(), "paths.yaml")

	code, out, errOut := runCLI(t, "analyze", "-o", snapshot, root)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "wrote 1 service path(s)")

	data, err := os.ReadFile(snapshot)
	require.NoError(t, err)
	var path string
	for _, line := range strings.Split(string(data), "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "service_path: "); ok {
			path = strings.Trim(v, `"'`)
		}
	}
	require.NotEmpty(t, path, "snapshot must record a path:\n%s", data)

	code, out, errOut = runCLI(t, "rewrite", "-paths", snapshot, "-diff", root)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "--- a/")
	assert.Contains(t, out, fmt.Sprintf("+    servicePath: %q", path))
}

func TestAnalyzeToStdout(t *testing.T) {
	root := writeProject(t, map[string]string{"main.bal": subscriberSource})
	code, out, errOut := runCLI(t, "analyze", root)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "version: 1")
	assert.Contains(t, out, "main.bal:3:1")
}

func TestRewriteFailsOnErrorDiagnostics(t *testing.T) {
	root := writeProject(t, map[string]string{
		"main.bal":   subscriberSource,
		"broken.bal": "const s = \"unterminated\n",
	})
	code, _, errOut := runCLI(t, "rewrite", "-write", root)
	assert.Equal(t, exitFail, code)
	assert.Contains(t, errOut, "COMPILE_DIAGNOSTICS_ERROR")

	data, err := os.ReadFile(filepath.Join(root, "main.bal"))
	require.NoError(t, err)
	assert.Equal(t, subscriberSource, string(data))
}

func TestRewriteReportsStageFailures(t *testing.T) {
	code, _, errOut := runCLI(t, "rewrite", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, exitFail, code)
	assert.Contains(t, errOut, "[LOAD:LOAD_PACKAGE_ERROR]")

	root := writeProject(t, map[string]string{"main.bal": subscriberSource})
	code, _, errOut = runCLI(t, "rewrite", "-paths", filepath.Join(root, "none.yaml"), root)
	assert.Equal(t, exitFail, code)
	assert.Contains(t, errOut, "[LOAD:LOAD_SNAPSHOT_ERROR]")

	code, _, _ = runCLI(t, "rewrite", "-nope", root)
	assert.Equal(t, exitUsage, code)
}

func TestConfigFileDrivesAnnotationAndMetrics(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "websubc.prom")
	cfg := fmt.Sprintf("annotationPrefix: \"hub\"\nannotationName: \"Info\"\nindentWidth: 2\nmetricsFile: %q\n", metricsFile)
	root := writeProject(t, map[string]string{
		"main.bal":    subscriberSource,
		"websubc.cue": cfg,
	})

	code, out, errOut := runCLI(t, "rewrite", "-diff", root)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "+@hub:Info {")
	assert.Contains(t, out, "+  servicePath: ")

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "websubc_services_injected_total 1")
}

func TestInvalidConfigFails(t *testing.T) {
	root := writeProject(t, map[string]string{
		"main.bal":    subscriberSource,
		"websubc.cue": "unknownKey: 1\n",
	})
	code, _, errOut := runCLI(t, "analyze", root)
	assert.Equal(t, exitFail, code)
	assert.Contains(t, errOut, "[LOAD:LOAD_CONFIG_ERROR]")
}
