package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCUE(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "websub", cfg.AnnotationPrefix)
	assert.Equal(t, "MetaInfo", cfg.AnnotationName)
	assert.Equal(t, "servicePath", cfg.FieldName)
	assert.Equal(t, "websub", cfg.ListenerPrefix)
	assert.Equal(t, 10, cfg.PathLength)
	assert.Equal(t, "    ", cfg.Indent())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.OTLPEndpoint)
}

func TestLoadMissingDefaultFileIsIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.PathLength)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"custom.cue", "my" + DefaultFile} {
		_, err := Load(filepath.Join(dir, name))
		require.Error(t, err, name)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeCUE(t, `
annotationPrefix: "hub"
annotationName:   "Info"
pathLength:       12
indentWidth:      2
logFormat:        "text"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hub", cfg.AnnotationPrefix)
	assert.Equal(t, "Info", cfg.AnnotationName)
	assert.Equal(t, "servicePath", cfg.FieldName)
	assert.Equal(t, 12, cfg.PathLength)
	assert.Equal(t, "  ", cfg.Indent())
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeCUE(t, `pathLength: 12`)
	t.Setenv("WEBSUBC_PATH_LENGTH", "20")
	t.Setenv("WEBSUBC_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.PathLength)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeCUE(t, `servicePaths: "x"`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

func TestLoadRejectsInvalidFileValues(t *testing.T) {
	for name, content := range map[string]string{
		"short path":   `pathLength: 2`,
		"bad format":   `logFormat: "xml"`,
		"bad prefix":   `annotationPrefix: "web-sub"`,
		"syntax error": `pathLength: `,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeCUE(t, content))
			require.Error(t, err)
		})
	}
}

func TestLoadRejectsInvalidEnvValues(t *testing.T) {
	for name, env := range map[string][2]string{
		"annotation name": {"WEBSUBC_ANNOTATION_NAME", "Meta Info"},
		"otlp endpoint":   {"WEBSUBC_OTLP_ENDPOINT", "not an endpoint"},
		"log level":       {"WEBSUBC_LOG_LEVEL", "loud"},
		"path length":     {"WEBSUBC_PATH_LENGTH", "ten"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env[0], env[1])
			_, err := Load("")
			require.Error(t, err)
		})
	}
}
