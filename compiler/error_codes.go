package compiler

const (
	// Load stage
	ErrCodeLoadPackage  = "LOAD_PACKAGE_ERROR"
	ErrCodeLoadConfig   = "LOAD_CONFIG_ERROR"
	ErrCodeLoadSnapshot = "LOAD_SNAPSHOT_ERROR"

	// Analyze stage
	ErrCodeAnalyzeServicePaths = "ANALYZE_SERVICE_PATHS_ERROR"

	// Compile stage
	ErrCodeCompileDiagnostics = "COMPILE_DIAGNOSTICS_ERROR"

	// Rewrite stage
	ErrCodeRewriteTask = "REWRITE_TASK_ERROR"

	// Emit stage
	ErrCodeEmitWrite    = "EMIT_WRITE_ERROR"
	ErrCodeEmitDiff     = "EMIT_DIFF_ERROR"
	ErrCodeEmitSnapshot = "EMIT_SNAPSHOT_ERROR"
	ErrCodeEmitMetrics  = "EMIT_METRICS_ERROR"
)

// StableErrorCodes is the canonical registry of compiler/CLI stage error codes.
var StableErrorCodes = []string{
	ErrCodeLoadPackage,
	ErrCodeLoadConfig,
	ErrCodeLoadSnapshot,
	ErrCodeAnalyzeServicePaths,
	ErrCodeCompileDiagnostics,
	ErrCodeRewriteTask,
	ErrCodeEmitWrite,
	ErrCodeEmitDiff,
	ErrCodeEmitSnapshot,
	ErrCodeEmitMetrics,
}
