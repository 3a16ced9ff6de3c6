// Package rewriter injects generated service-path annotations into the
// top-level members of a document.
package rewriter

import (
	"log/slog"

	"github.com/strogmv/websubc/compiler/semantic"
	"github.com/strogmv/websubc/compiler/servicepath"
	"github.com/strogmv/websubc/compiler/synth"
	"github.com/strogmv/websubc/compiler/syntax"
)

// Resolver maps syntax nodes to semantic symbols.
type Resolver interface {
	ResolveSymbol(n syntax.Node) (semantic.Symbol, bool)
}

// SkipReason says why a service declaration was left unchanged.
type SkipReason string

const (
	SkipNoSymbol        SkipReason = "no_symbol"
	SkipNoMatch         SkipReason = "no_match"
	SkipHasMetadata     SkipReason = "has_metadata"
	SkipSynthesisFailed SkipReason = "synthesis_failed"
)

// Stats counts the outcome of one Rewrite call.
type Stats struct {
	Services int
	Injected int
	Skipped  map[SkipReason]int
}

func (s *Stats) skip(r SkipReason) {
	if s.Skipped == nil {
		s.Skipped = make(map[SkipReason]int)
	}
	s.Skipped[r]++
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Services += o.Services
	s.Injected += o.Injected
	for r, n := range o.Skipped {
		if s.Skipped == nil {
			s.Skipped = make(map[SkipReason]int)
		}
		s.Skipped[r] += n
	}
}

// Correlate finds the entry of infos that belongs to decl.
func Correlate(decl *syntax.ServiceDecl, model Resolver, infos []servicepath.Info) (servicepath.Info, bool) {
	info, reason := correlate(decl, model, infos)
	return info, reason == ""
}

func correlate(decl *syntax.ServiceDecl, model Resolver, infos []servicepath.Info) (servicepath.Info, SkipReason) {
	sym, ok := model.ResolveSymbol(decl)
	if !ok {
		return servicepath.Info{}, SkipNoSymbol
	}
	for _, info := range infos {
		if info.ServiceID == sym.ID {
			return info, ""
		}
	}
	return servicepath.Info{}, SkipNoMatch
}

// Rewriter adds the service-path annotation to matching services that carry
// no metadata.
type Rewriter struct {
	Annotation synth.AnnotationSpec
	// Style.Newline left empty means the line break of each declaration is
	// reused.
	Style  synth.Style
	Logger *slog.Logger
}

// New returns a rewriter for `@websub:MetaInfo { servicePath: ... }`.
func New(logger *slog.Logger) *Rewriter {
	return &Rewriter{
		Annotation: synth.DefaultAnnotation,
		Style:      synth.Style{Indent: synth.DefaultStyle.Indent},
		Logger:     logger,
	}
}

// Rewrite returns members with annotations injected. The result has the same
// length and order as members, and every member that is not rewritten is the
// identical value from the input.
func (r *Rewriter) Rewrite(members []syntax.Member, infos []servicepath.Info, model Resolver) ([]syntax.Member, Stats) {
	out := make([]syntax.Member, len(members))
	var stats Stats
	for i, m := range members {
		out[i] = m
		decl, ok := m.(*syntax.ServiceDecl)
		if !ok {
			continue
		}
		stats.Services++
		if decl.HasMetadata() {
			stats.skip(SkipHasMetadata)
			continue
		}
		info, reason := correlate(decl, model, infos)
		if reason != "" {
			stats.skip(reason)
			continue
		}
		updated, err := r.inject(decl, info.ServicePath)
		if err != nil {
			stats.skip(SkipSynthesisFailed)
			r.logger().Warn("service annotation not synthesized",
				slog.String("service_id", info.ServiceID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		out[i] = updated
		stats.Injected++
		r.logger().Debug("service annotation injected",
			slog.String("service_id", info.ServiceID.String()),
			slog.String("service_path", info.ServicePath),
		)
	}
	return out, stats
}

// inject moves the leading trivia of decl in front of the new annotation and
// leaves decl with only its indentation.
func (r *Rewriter) inject(decl *syntax.ServiceDecl, servicePath string) (*syntax.ServiceDecl, error) {
	leading := decl.FirstToken().Leading()
	_, indent := leading.SplitAfterLastNewline()

	style := r.Style
	if style.Newline == "" {
		style.Newline = declNewline(decl)
	}
	style.Base = indent.String()

	a, err := r.Annotation.Build(servicePath, style)
	if err != nil {
		return nil, err
	}
	a = a.WithLeading(leading).WithTrailing(syntax.NewMinutiaeList(syntax.EndOfLine(style.Newline)))

	var annotations []*syntax.Annotation
	var docLines []*syntax.Token
	if md := decl.Metadata(); md != nil {
		docLines = md.DocLines()
		annotations = append(annotations, md.Annotations()...)
	}
	annotations = append(annotations, a)
	return decl.WithMetadata(syntax.NewMetadata(docLines, annotations)).WithFirstTokenLeading(indent), nil
}

func (r *Rewriter) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func declNewline(decl *syntax.ServiceDecl) string {
	for _, t := range syntax.Tokens(decl) {
		for _, l := range []syntax.MinutiaeList{t.Leading(), t.Trailing()} {
			for _, m := range l {
				if m.Kind == syntax.MinutiaeEndOfLine {
					return m.Text
				}
			}
		}
	}
	return synth.DefaultStyle.Newline
}
