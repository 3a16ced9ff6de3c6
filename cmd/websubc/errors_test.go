package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/strogmv/websubc/compiler"
)

func TestFormatStageFailureSnapshot(t *testing.T) {
	got := formatStageFailure(
		"Rewrite FAILED",
		compiler.StageEmit,
		compiler.ErrCodeEmitWrite,
		"write replacements",
		errors.New("boom"),
	)

	goldenPath := filepath.Join("testdata", "cli_error_snapshot.txt")
	wantBytes, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	want := string(wantBytes)
	if got+"\n" != want {
		t.Fatalf("snapshot mismatch\nwant: %q\ngot:  %q", want, got+"\n")
	}
}

func TestFormatStageFailureKeepsContractError(t *testing.T) {
	inner := compiler.WrapContractError(compiler.StageLoad, compiler.ErrCodeLoadPackage, "load x", errors.New("missing"))
	got := formatStageFailure("Analyze FAILED", compiler.StageAnalyze, compiler.ErrCodeAnalyzeServicePaths, "analyze", inner)
	if got != "Analyze FAILED: [LOAD:LOAD_PACKAGE_ERROR] load x: missing" {
		t.Fatalf("unexpected message %q", got)
	}
}
