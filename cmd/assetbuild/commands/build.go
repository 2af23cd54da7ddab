package commands

import (
	"context"
	"fmt"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/assetbuild/internal/assets"
	"git.home.luguber.info/inful/assetbuild/internal/config"
	"git.home.luguber.info/inful/assetbuild/internal/logfields"
	"git.home.luguber.info/inful/assetbuild/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Environment string `short:"e" help:"Override build.environment for this run"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if b.Environment != "" {
		cfg.Build.Environment = b.Environment
		slog.Info("Build environment overridden via CLI flag", logfields.Environment(b.Environment))
	}
	ctx, cancel := g.commandContext(root)
	defer cancel()
	return RunBuild(ctx, g, cfg, newTelemetry(cfg))
}

// telemetry owns the metrics registry of one CLI run.
type telemetry struct {
	registry *prom.Registry
	recorder metrics.Recorder
	textfile string
}

func newTelemetry(cfg *config.Config) *telemetry {
	if cfg.Metrics.Textfile == "" {
		return &telemetry{recorder: metrics.NoopRecorder{}}
	}
	reg := prom.NewRegistry()
	return &telemetry{registry: reg, recorder: metrics.NewPrometheusRecorder(reg), textfile: cfg.Metrics.Textfile}
}

// flush writes the textfile, if configured. Failures are logged only.
func (t *telemetry) flush() {
	if t.registry == nil {
		return
	}
	if err := metrics.WriteTextfile(t.textfile, t.registry); err != nil {
		slog.Warn("Failed to write metrics textfile", logfields.Path(t.textfile), logfields.Error(err))
	}
}

// RunBuild runs the asset builder, persists its report and flushes metrics.
func RunBuild(ctx context.Context, g *Global, cfg *config.Config, tel *telemetry) error {
	defer tel.flush()

	builder := assets.NewBuilder(cfg,
		assets.WithRunner(g.runner()),
		assets.WithRecorder(tel.recorder),
		assets.WithLogger(slog.Default()),
	)
	report, err := builder.Build(ctx)
	if path := cfg.Build.ReportPath; path != "" {
		if perr := report.Persist(path); perr != nil {
			slog.Warn("Failed to write build report", logfields.Path(path), logfields.Error(perr))
		}
	}
	if err != nil {
		return err
	}
	out := g.stdout()
	if rec, ok := report.Step(assets.StepEmberBuild); ok && rec.Result == assets.ResultRan {
		_, _ = fmt.Fprintf(out, "Assets written to %s\n", report.OutputDir)
	}
	_, _ = fmt.Fprintln(out, report.Summary())
	return nil
}
