package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/strogmv/websubc/compiler"
	"github.com/strogmv/websubc/compiler/synth"
	"github.com/strogmv/websubc/internal/config"
	"github.com/strogmv/websubc/internal/metrics"
	"github.com/strogmv/websubc/internal/pkg/logger"
	"github.com/strogmv/websubc/internal/pkg/tracing"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitUsage
	}

	switch cmd := args[0]; cmd {
	case "rewrite":
		return runRewrite(ctx, args[1:], stdout, stderr)
	case "analyze":
		return runAnalyze(ctx, args[1:], stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "websubc version %s (snapshot v%d)\n", compiler.Version, compiler.SnapshotVersion)
		return exitOK
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		printUsage(stderr)
		return exitUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "websubc: WebSub service meta info rewriter v%s\n", compiler.Version)
	fmt.Fprintln(w, "\nUsage:")
	fmt.Fprintln(w, "  websubc rewrite [-paths snapshot.yaml] [-write] [-diff] [-config websubc.cue] <dir>")
	fmt.Fprintln(w, "                 Inject service path annotations into WebSub services")
	fmt.Fprintln(w, "  websubc analyze [-o snapshot.yaml] [-config websubc.cue] <dir>")
	fmt.Fprintln(w, "                 Generate service paths and write them as a snapshot")
	fmt.Fprintln(w, "  websubc version")
}

// runtime is the per-invocation ambient stack built from configuration.
type runtime struct {
	cfg      *config.Config
	log      *slog.Logger
	metrics  *metrics.Metrics
	shutdown func(context.Context) error
}

func setup(ctx context.Context, dir, configPath string, stderr io.Writer) (*runtime, error) {
	if configPath == "" {
		configPath = filepath.Join(dir, config.DefaultFile)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, compiler.WrapContractError(compiler.StageLoad, compiler.ErrCodeLoadConfig, "load "+configPath, err)
	}
	log := logger.Init(stderr, cfg.LogLevel, cfg.LogFormat)
	_, shutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		return nil, compiler.WrapContractError(compiler.StageLoad, compiler.ErrCodeLoadConfig, "init tracing", err)
	}
	return &runtime{cfg: cfg, log: log, metrics: metrics.New(), shutdown: shutdown}, nil
}

func (r *runtime) options() compiler.PipelineOptions {
	return compiler.PipelineOptions{
		Annotation: synth.AnnotationSpec{
			Prefix: r.cfg.AnnotationPrefix,
			Name:   r.cfg.AnnotationName,
			Field:  r.cfg.FieldName,
		},
		Indent:         r.cfg.Indent(),
		PathLength:     r.cfg.PathLength,
		ListenerPrefix: r.cfg.ListenerPrefix,
		Logger:         r.log,
		Metrics:        r.metrics,
		Tracer:         tracing.Tracer(),
	}
}

// close flushes spans and writes the metrics textfile when configured.
func (r *runtime) close(ctx context.Context) error {
	if err := r.shutdown(context.WithoutCancel(ctx)); err != nil {
		r.log.Warn("tracer shutdown failed", slog.Any("error", err))
	}
	if r.cfg.MetricsFile == "" {
		return nil
	}
	if err := r.metrics.WriteTextfile(r.cfg.MetricsFile); err != nil {
		return compiler.WrapContractError(compiler.StageEmit, compiler.ErrCodeEmitMetrics, "write "+r.cfg.MetricsFile, err)
	}
	return nil
}

// parseArgs accepts the package directory either before or after the flags.
func parseArgs(fs *flag.FlagSet, args []string) (string, error) {
	dir := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		dir, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if dir == "" && fs.NArg() > 0 {
		dir = fs.Arg(0)
	}
	if dir == "" {
		dir = "."
	}
	return dir, nil
}
