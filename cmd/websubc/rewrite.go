package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/strogmv/websubc/compiler"
	"github.com/strogmv/websubc/compiler/servicepath"
)

func runRewrite(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rewrite", flag.ContinueOnError)
	fs.SetOutput(stderr)
	pathsFile := fs.String("paths", "", "service path snapshot written by `websubc analyze`")
	write := fs.Bool("write", false, "write rewritten sources in place")
	diff := fs.Bool("diff", false, "print a unified diff of the rewritten sources")
	configPath := fs.String("config", "", "CUE configuration file (default <dir>/websubc.cue)")
	dir, err := parseArgs(fs, args)
	if err != nil {
		return exitUsage
	}

	const prefix = "Rewrite FAILED"
	rt, err := setup(ctx, dir, *configPath, stderr)
	if err != nil {
		printStageFailure(stderr, prefix, compiler.StageLoad, compiler.ErrCodeLoadConfig, "load config", err)
		return exitFail
	}
	code := rewrite(ctx, rt, dir, *pathsFile, *write, *diff, stdout, stderr)
	if err := rt.close(ctx); err != nil {
		printStageFailure(stderr, prefix, compiler.StageEmit, compiler.ErrCodeEmitMetrics, "write metrics", err)
		return exitFail
	}
	return code
}

func rewrite(ctx context.Context, rt *runtime, dir, pathsFile string, write, diff bool, stdout, stderr io.Writer) int {
	const prefix = "Rewrite FAILED"
	opts := rt.options()
	if pathsFile != "" {
		store, err := readSnapshot(pathsFile)
		if err != nil {
			printStageFailure(stderr, prefix, compiler.StageLoad, compiler.ErrCodeLoadSnapshot, "read "+pathsFile, err)
			return exitFail
		}
		opts.Store = store
	}

	res, err := compiler.RunPipeline(ctx, dir, opts)
	if err != nil {
		printStageFailure(stderr, prefix, compiler.StageRewrite, compiler.ErrCodeRewriteTask, "run pipeline", err)
		return exitFail
	}
	if res.Compilation.HasErrorSeverity() {
		for _, d := range res.Compilation.Errors() {
			fmt.Fprintln(stderr, d.String())
		}
		err := fmt.Errorf("%d error diagnostic(s), sources left unchanged", len(res.Compilation.Errors()))
		printStageFailure(stderr, prefix, compiler.StageCompile, compiler.ErrCodeCompileDiagnostics, "compile "+res.Package.Name, err)
		return exitFail
	}

	if diff {
		text, err := res.Modifier.Diff()
		if err != nil {
			printStageFailure(stderr, prefix, compiler.StageEmit, compiler.ErrCodeEmitDiff, "render diff", err)
			return exitFail
		}
		fmt.Fprint(stdout, text)
	}
	if write {
		n, err := res.Modifier.Apply()
		if err != nil {
			printStageFailure(stderr, prefix, compiler.StageEmit, compiler.ErrCodeEmitWrite, "write replacements", err)
			return exitFail
		}
		fmt.Fprintf(stdout, "wrote %d file(s)\n", n)
	}
	if !diff && !write {
		for _, rep := range res.Reports {
			fmt.Fprintf(stdout, "%s: %d service(s) in %d document(s) would be annotated\n",
				rep.Task, rep.ServicesInjected, rep.DocumentsRewritten)
		}
	}
	return exitOK
}

func readSnapshot(path string) (*servicepath.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return servicepath.ReadYAML(f)
}
