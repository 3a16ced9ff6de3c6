package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/strogmv/websubc/compiler"
	"github.com/strogmv/websubc/compiler/project"
)

func runAnalyze(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "", "snapshot output file (default stdout)")
	configPath := fs.String("config", "", "CUE configuration file (default <dir>/websubc.cue)")
	dir, err := parseArgs(fs, args)
	if err != nil {
		return exitUsage
	}

	const prefix = "Analyze FAILED"
	rt, err := setup(ctx, dir, *configPath, stderr)
	if err != nil {
		printStageFailure(stderr, prefix, compiler.StageLoad, compiler.ErrCodeLoadConfig, "load config", err)
		return exitFail
	}
	code := analyze(ctx, rt, dir, *out, stdout, stderr)
	if err := rt.close(ctx); err != nil {
		printStageFailure(stderr, prefix, compiler.StageEmit, compiler.ErrCodeEmitMetrics, "write metrics", err)
		return exitFail
	}
	return code
}

func analyze(ctx context.Context, rt *runtime, dir, out string, stdout, stderr io.Writer) int {
	const prefix = "Analyze FAILED"
	pkg, err := project.Load(dir)
	if err != nil {
		printStageFailure(stderr, prefix, compiler.StageLoad, compiler.ErrCodeLoadPackage, "load "+dir, err)
		return exitFail
	}
	store, _, err := compiler.AnalyzePackage(ctx, pkg, rt.options())
	if err != nil {
		printStageFailure(stderr, prefix, compiler.StageAnalyze, compiler.ErrCodeAnalyzeServicePaths, "analyze "+pkg.Name, err)
		return exitFail
	}

	var buf bytes.Buffer
	if err := store.WriteYAML(&buf); err != nil {
		printStageFailure(stderr, prefix, compiler.StageEmit, compiler.ErrCodeEmitSnapshot, "encode snapshot", err)
		return exitFail
	}
	if out == "" {
		fmt.Fprint(stdout, buf.String())
		return exitOK
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		printStageFailure(stderr, prefix, compiler.StageEmit, compiler.ErrCodeEmitSnapshot, "write "+out, err)
		return exitFail
	}
	fmt.Fprintf(stdout, "wrote %d service path(s) to %s\n", store.Len(), out)
	return exitOK
}
