package servicepath

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/strogmv/websubc/compiler/project"
	"github.com/strogmv/websubc/compiler/semantic"
	"github.com/strogmv/websubc/compiler/syntax"
)

// DefaultPathLength is the number of generated characters after the leading
// slash.
const DefaultPathLength = 10

const maxGenerateAttempts = 16

// Generator returns a fresh service path, including the leading slash.
type Generator func() string

// RandomPath generates "/" followed by length lowercase alphanumerics taken
// from random UUIDs.
func RandomPath(length int) Generator {
	if length <= 0 {
		length = DefaultPathLength
	}
	return func() string {
		var b strings.Builder
		b.WriteByte('/')
		for b.Len() <= length {
			for _, r := range uuid.NewString() {
				if r == '-' {
					continue
				}
				b.WriteRune(r)
				if b.Len() > length {
					break
				}
			}
		}
		return b.String()
	}
}

// Resolver maps syntax nodes to symbols.
type Resolver interface {
	ResolveSymbol(n syntax.Node) (semantic.Symbol, bool)
}

// Analyzer decides which services need a generated path.
type Analyzer struct {
	Generate       Generator
	ListenerPrefix string
	Logger         *slog.Logger
}

// NewAnalyzer returns an analyzer that generates paths of the default length
// for services bound to listeners from the "websub" module.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	return &Analyzer{Generate: RandomPath(DefaultPathLength), ListenerPrefix: "websub", Logger: logger}
}

// Result summarizes one analysis run.
type Result struct {
	Documents int
	Services  int
}

// Analyze computes paths for every document in pkg and publishes them in
// store. Documents without candidates get no entry.
func (a *Analyzer) Analyze(ctx context.Context, pkg *project.Package, store *Store) (Result, error) {
	var res Result
	used := make(map[string]struct{})
	for _, mod := range pkg.Modules {
		model := semantic.Build(mod)
		listeners := websubListeners(mod, a.prefix())
		for _, doc := range mod.Documents {
			if err := ctx.Err(); err != nil {
				return res, &project.DocumentError{Module: mod.ID, Document: doc.ID, Err: err}
			}
			infos, err := a.analyzeDocument(doc.Tree, model, listeners, used)
			if err != nil {
				return res, &project.DocumentError{Module: mod.ID, Document: doc.ID, Err: fmt.Errorf("analyze: %w", err)}
			}
			if len(infos) == 0 {
				continue
			}
			if err := store.Put(mod.ID, doc.ID, infos); err != nil {
				return res, &project.DocumentError{Module: mod.ID, Document: doc.ID, Err: fmt.Errorf("publish: %w", err)}
			}
			res.Documents++
			res.Services += len(infos)
			a.logger().Debug("service paths generated",
				slog.String("module", string(mod.ID)),
				slog.String("document", string(doc.ID)),
				slog.Int("services", len(infos)),
			)
		}
	}
	return res, nil
}

func (a *Analyzer) analyzeDocument(tree *syntax.Tree, model Resolver, listeners map[string]bool, used map[string]struct{}) ([]Info, error) {
	var infos []Info
	for _, member := range tree.Root().Members() {
		svc, ok := member.(*syntax.ServiceDecl)
		if !ok || svc.HasMetadata() {
			continue
		}
		if _, ok := svc.AbsolutePath(); ok {
			continue
		}
		if !a.isWebSub(svc, listeners) {
			continue
		}
		sym, ok := model.ResolveSymbol(svc)
		if !ok {
			continue
		}
		path, err := a.uniquePath(used)
		if err != nil {
			return nil, err
		}
		infos = append(infos, Info{ServiceID: sym.ID, ServicePath: path})
	}
	return infos, nil
}

func (a *Analyzer) uniquePath(used map[string]struct{}) (string, error) {
	gen := a.Generate
	if gen == nil {
		gen = RandomPath(DefaultPathLength)
	}
	for i := 0; i < maxGenerateAttempts; i++ {
		p := gen()
		if _, dup := used[p]; dup {
			continue
		}
		used[p] = struct{}{}
		return p, nil
	}
	return "", fmt.Errorf("no unique service path after %d attempts", maxGenerateAttempts)
}

func (a *Analyzer) isWebSub(svc *syntax.ServiceDecl, listeners map[string]bool) bool {
	qualified := a.prefix() + ":"
	if strings.HasPrefix(svc.TypeDescriptor(), qualified) {
		return true
	}
	expr := svc.Listener()
	if strings.Contains(expr, qualified) {
		return true
	}
	return listeners[expr]
}

func (a *Analyzer) prefix() string {
	if a.ListenerPrefix == "" {
		return "websub"
	}
	return a.ListenerPrefix
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// websubListeners collects the names of module-level listener declarations
// whose declared type or initializer comes from the prefix module, e.g.
// `listener websub:Listener l = new (9090);`.
func websubListeners(mod *project.Module, prefix string) map[string]bool {
	names := make(map[string]bool)
	for _, doc := range mod.Documents {
		for _, member := range doc.Tree.Root().Members() {
			om, ok := member.(*syntax.OpaqueMember)
			if !ok || om.Keyword() != "listener" {
				continue
			}
			toks := om.Tokens()
			eq := -1
			for i, t := range toks {
				if t.Kind() == syntax.TokenOther && t.Text() == "=" {
					eq = i
					break
				}
			}
			if eq < 1 || !toks[eq-1].Is(syntax.TokenIdentifier) {
				continue
			}
			if strings.Contains(syntax.PlainText(toks), prefix+":") {
				names[toks[eq-1].Text()] = true
			}
		}
	}
	return names
}
