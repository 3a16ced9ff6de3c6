package compiler

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/strogmv/websubc/compiler/project"
	"github.com/strogmv/websubc/compiler/rewriter"
	"github.com/strogmv/websubc/compiler/servicepath"
	"github.com/strogmv/websubc/compiler/transformers"
	"github.com/strogmv/websubc/internal/metrics"
	"github.com/strogmv/websubc/internal/pkg/logger"
	"github.com/strogmv/websubc/internal/pkg/tracing"
)

// MetaInfoTaskName is the registry name of MetaInfoUpdater.
const MetaInfoTaskName = "service-meta-info-updater"

// PathStore is the read side of the generated service-path store.
type PathStore interface {
	Lookup(mod project.ModuleID, doc project.DocumentID) ([]servicepath.Info, bool)
}

// MetaInfoUpdater injects `@websub:MetaInfo { servicePath: ... }` onto
// services that have a generated path and no metadata, and submits the
// rewritten documents to the sink.
type MetaInfoUpdater struct {
	Store    PathStore
	Rewriter *rewriter.Rewriter
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Tracer   trace.Tracer
}

var _ transformers.Task = (*MetaInfoUpdater)(nil)

// NewMetaInfoUpdater returns an updater reading from store.
func NewMetaInfoUpdater(store PathStore, log *slog.Logger) *MetaInfoUpdater {
	return &MetaInfoUpdater{Store: store, Rewriter: rewriter.New(log), Logger: log}
}

func (u *MetaInfoUpdater) Name() string { return MetaInfoTaskName }

// Modify rewrites every document the store has entries for. Nothing is
// submitted when the compilation has error diagnostics. Only a cancelled
// context produces an error.
func (u *MetaInfoUpdater) Modify(ctx context.Context, c transformers.Compilation, sink transformers.Sink) (transformers.Report, error) {
	tracer := u.Tracer
	if tracer == nil {
		tracer = tracing.Tracer()
	}
	ctx, span := tracer.Start(ctx, "MetaInfoUpdater.Modify")
	defer span.End()

	start := time.Now()
	log := logger.With(ctx, u.Logger)
	rep := transformers.Report{Task: u.Name()}

	if c.HasErrorSeverity() {
		rep.Skipped = true
		span.SetAttributes(attribute.Bool("websubc.skipped", true))
		u.Metrics.ObserveRun(metrics.OutcomeSkippedErrors, time.Since(start))
		log.Info("compilation has errors, service meta info not updated")
		return rep, nil
	}

	rw := u.Rewriter
	if rw == nil {
		rw = rewriter.New(u.Logger)
	}
	for _, mod := range c.ModuleIDs() {
		model, ok := c.SemanticModel(mod)
		if !ok {
			continue
		}
		for _, doc := range c.DocumentIDs(mod) {
			if err := ctx.Err(); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "cancelled")
				u.Metrics.ObserveRun(metrics.OutcomeFailed, time.Since(start))
				return rep, &project.DocumentError{Module: mod, Document: doc, Err: err}
			}
			infos, ok := u.Store.Lookup(mod, doc)
			if !ok || len(infos) == 0 {
				continue
			}
			tree, ok := c.SyntaxTree(mod, doc)
			if !ok {
				continue
			}
			rep.DocumentsVisited++

			members, stats := rw.Rewrite(tree.Root().Members(), infos, model)
			updated := tree.ModifyWith(tree.Root().WithMembers(members))
			sink.ModifySourceFile(updated.String(), mod, doc)

			if stats.Injected > 0 {
				rep.DocumentsRewritten++
			}
			rep.ServicesInjected += stats.Injected
			u.Metrics.ObserveDocument(stats.Injected, skipLabels(stats.Skipped))
			log.Debug("document rewritten",
				slog.String("module", string(mod)),
				slog.String("document", string(doc)),
				slog.Int("injected", stats.Injected),
				slog.Int("services", stats.Services),
			)
		}
	}

	span.SetAttributes(
		attribute.Int("websubc.documents_visited", rep.DocumentsVisited),
		attribute.Int("websubc.services_injected", rep.ServicesInjected),
	)
	u.Metrics.ObserveRun(metrics.OutcomeRewritten, time.Since(start))
	log.Info("service meta info updated",
		slog.Int("documents", rep.DocumentsRewritten),
		slog.Int("services", rep.ServicesInjected),
	)
	return rep, nil
}

func skipLabels(skipped map[rewriter.SkipReason]int) map[string]int {
	if len(skipped) == 0 {
		return nil
	}
	out := make(map[string]int, len(skipped))
	for r, n := range skipped {
		out[string(r)] = n
	}
	return out
}
