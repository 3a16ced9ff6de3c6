package compiler

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/strogmv/websubc/compiler/project"
	"github.com/strogmv/websubc/compiler/rewriter"
	"github.com/strogmv/websubc/compiler/servicepath"
	"github.com/strogmv/websubc/compiler/synth"
	"github.com/strogmv/websubc/compiler/transformers"
	"github.com/strogmv/websubc/internal/metrics"
	"github.com/strogmv/websubc/internal/pkg/tracing"
)

const (
	Version         = "0.3.1"
	SnapshotVersion = servicepath.SnapshotVersion
)

type PipelineOptions struct {
	// Store holds precomputed service paths. When nil the analyzer runs and
	// populates a fresh store.
	Store *servicepath.Store

	Annotation     synth.AnnotationSpec
	Indent         string
	PathLength     int
	ListenerPrefix string
	Generate       servicepath.Generator

	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer
}

func (o PipelineOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o PipelineOptions) tracer() trace.Tracer {
	if o.Tracer == nil {
		return tracing.Tracer()
	}
	return o.Tracer
}

// PipelineResult carries everything a caller needs to report on or emit a run.
type PipelineResult struct {
	Package     *project.Package
	Compilation *Compilation
	Store       *servicepath.Store
	Analysis    servicepath.Result
	Modifier    *project.Modifier
	Reports     []transformers.Report
}

// RunPipeline loads the package at dir and runs analysis, compilation and
// the rewrite tasks. Replacements are collected, not written.
func RunPipeline(ctx context.Context, dir string, opts PipelineOptions) (*PipelineResult, error) {
	pkg, err := project.Load(dir)
	if err != nil {
		return nil, WrapContractError(StageLoad, ErrCodeLoadPackage, "load "+dir, err)
	}
	return RunPipelineOnPackage(ctx, pkg, opts)
}

// RunPipelineOnPackage runs the pipeline on an already loaded package.
func RunPipelineOnPackage(ctx context.Context, pkg *project.Package, opts PipelineOptions) (*PipelineResult, error) {
	ctx, span := opts.tracer().Start(ctx, "RunPipeline")
	defer span.End()

	res := &PipelineResult{Package: pkg, Store: opts.Store}
	if res.Store == nil {
		store, analysis, err := AnalyzePackage(ctx, pkg, opts)
		if err != nil {
			return nil, err
		}
		res.Store = store
		res.Analysis = analysis
	}

	res.Compilation = Compile(pkg)
	for _, d := range res.Compilation.Diagnostics() {
		opts.logger().Debug("diagnostic", slog.String("diagnostic", d.String()))
	}

	updater := NewMetaInfoUpdater(res.Store, opts.Logger)
	updater.Rewriter = newRewriter(opts)
	updater.Metrics = opts.Metrics
	updater.Tracer = opts.Tracer

	reg := transformers.NewRegistry()
	reg.Register(updater)

	res.Modifier = project.NewModifier(pkg)
	reports, err := reg.Apply(ctx, res.Compilation, res.Modifier)
	res.Reports = reports
	if err != nil {
		return res, WrapContractError(StageRewrite, ErrCodeRewriteTask, "apply source modifiers", err)
	}
	return res, nil
}

// AnalyzePackage computes generated service paths for pkg into a new store.
func AnalyzePackage(ctx context.Context, pkg *project.Package, opts PipelineOptions) (*servicepath.Store, servicepath.Result, error) {
	analyzer := servicepath.NewAnalyzer(opts.Logger)
	if opts.Generate != nil {
		analyzer.Generate = opts.Generate
	} else if opts.PathLength > 0 {
		analyzer.Generate = servicepath.RandomPath(opts.PathLength)
	}
	if opts.ListenerPrefix != "" {
		analyzer.ListenerPrefix = opts.ListenerPrefix
	}

	store := servicepath.NewStore()
	res, err := analyzer.Analyze(ctx, pkg, store)
	if err != nil {
		return nil, res, WrapContractError(StageAnalyze, ErrCodeAnalyzeServicePaths, "analyze "+pkg.Name, err)
	}
	opts.Metrics.ObservePathsGenerated(res.Services)
	opts.logger().Info("service paths analyzed",
		slog.String("package", pkg.Name),
		slog.Int("documents", res.Documents),
		slog.Int("services", res.Services),
	)
	return store, res, nil
}

func newRewriter(opts PipelineOptions) *rewriter.Rewriter {
	rw := rewriter.New(opts.Logger)
	if opts.Annotation != (synth.AnnotationSpec{}) {
		rw.Annotation = opts.Annotation
	}
	if opts.Indent != "" {
		rw.Style.Indent = opts.Indent
	}
	return rw
}
