package assets

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/assetbuild/internal/config"
	aerrors "git.home.luguber.info/inful/assetbuild/internal/errors"
	"git.home.luguber.info/inful/assetbuild/internal/logfields"
	"git.home.luguber.info/inful/assetbuild/internal/metrics"
	"git.home.luguber.info/inful/assetbuild/internal/toolchain"
	"git.home.luguber.info/inful/assetbuild/internal/workdir"
)

const defaultEnvironment = "production"

// Builder runs the front-end asset build for one configuration.
type Builder struct {
	cfg      *config.Config
	runner   toolchain.Runner
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option customizes a Builder.
type Option func(*Builder)

// WithRunner replaces the process runner.
func WithRunner(r toolchain.Runner) Option { return func(b *Builder) { b.runner = r } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(b *Builder) { b.recorder = r } }

// WithLogger sets the logger used for step progress.
func WithLogger(l *slog.Logger) Option { return func(b *Builder) { b.logger = l } }

// NewBuilder returns a Builder that execs real tools, streams their output
// to the process stdout/stderr and records no metrics.
func NewBuilder(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		runner:   toolchain.NewExecRunner(os.Stdout, os.Stderr),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build runs every step and returns the report. The report is never nil;
// the error is the first fatal step failure, if any.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	st := &buildState{
		projectDir: b.cfg.ProjectPath(),
		outputDir:  b.cfg.OutputPath(),
	}
	report := newReport(st.projectDir, st.outputDir)
	log := b.logger.With(logfields.BuildID(report.BuildID))
	log.Info("Building Ember.js project", logfields.Path(st.projectDir))

	err := b.runSteps(ctx, log, st, report, b.setupSteps())
	if err == nil {
		err = workdir.Within(st.projectDir, func(scope *workdir.Scope) error {
			st.projectDir = scope.Dir()
			return b.runSteps(ctx, log, st, report, b.projectSteps())
		})
	}
	report.Environment = st.environment
	report.finish(err)

	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(metrics.BuildOutcomeLabel(report.Outcome))
	if err != nil {
		log.Error("Asset build failed", logfields.Status(string(report.Outcome)), logfields.Error(err))
		return report, err
	}
	log.Info("Asset build complete",
		logfields.Status(string(report.Outcome)),
		logfields.Path(st.outputDir),
		logfields.Duration(report.Duration()))
	return report, nil
}

// setupSteps run before the cwd changes. require_npm precedes any
// filesystem mutation.
func (b *Builder) setupSteps() []StepDef {
	return []StepDef{
		{Name: StepResolveEnvironment, Policy: config.PolicyFatal, Run: b.resolveEnvironment},
		{Name: StepRequireNPM, Policy: config.PolicyFatal, Run: b.requireNPM},
		{Name: StepPrepareProject, Policy: config.PolicyFatal, Run: b.prepareProject},
	}
}

// projectSteps run with the project directory as cwd.
func (b *Builder) projectSteps() []StepDef {
	emberPolicy := b.cfg.Build.EmberInstallPolicy
	if emberPolicy == "" {
		emberPolicy = config.PolicyWarn
	}
	return []StepDef{
		{Name: StepNPMInstall, Policy: config.PolicyFatal, Skip: b.present(b.cfg.Tools.NodeModules), Run: b.npmInstall},
		{Name: StepEmberCLI, Policy: emberPolicy, Skip: b.present(b.cfg.Tools.EmberBin), Run: b.emberCLIInstall},
		{Name: StepResolveBower, Policy: config.PolicyWarn, Skip: b.present(b.cfg.Tools.BowerComponents), Run: b.resolveBower},
		{Name: StepBowerInstall, Policy: config.PolicyFatal, Skip: b.present(b.cfg.Tools.BowerComponents), Run: b.bowerInstall},
		{Name: StepEmberBuild, Policy: config.PolicyFatal, Run: b.emberBuild},
	}
}

// runSteps executes steps in order, recording each and stopping on the
// first fatal error or on cancellation.
func (b *Builder) runSteps(ctx context.Context, log *slog.Logger, st *buildState, report *Report, steps []StepDef) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			cerr := aerrors.Canceled(string(step.Name), err)
			b.record(log, report, StepRecord{Name: step.Name, Result: ResultFailed, Note: "canceled", Error: cerr.Error()})
			return cerr
		}
		if step.Skip != nil {
			if skip, note := step.Skip(st); skip {
				b.record(log, report, StepRecord{Name: step.Name, Result: ResultSkipped, Note: note})
				continue
			}
		}

		st.note = ""
		t0 := time.Now()
		out, err := step.Run(ctx, st)
		rec := StepRecord{
			Name:       step.Name,
			Result:     ResultRan,
			Outcome:    out,
			DurationMS: float64(time.Since(t0)) / float64(time.Millisecond),
			Note:       st.note,
		}
		b.recorder.ObserveStepDuration(string(step.Name), time.Since(t0))

		if err != nil && ctx.Err() != nil && !aerrors.IsCategory(err, aerrors.CategoryCanceled) {
			err = aerrors.Canceled(string(step.Name), ctx.Err())
		}
		switch {
		case err == nil:
		case step.Policy == config.PolicyWarn && !aerrors.IsCategory(err, aerrors.CategoryCanceled):
			rec.Result = ResultWarning
			rec.Error = err.Error()
			report.Warnings = append(report.Warnings, string(step.Name)+": "+err.Error())
		default:
			rec.Result = ResultFailed
			rec.Error = err.Error()
			b.record(log, report, rec)
			return err
		}
		b.record(log, report, rec)
	}
	return nil
}

func (b *Builder) record(log *slog.Logger, report *Report, rec StepRecord) {
	report.Steps = append(report.Steps, rec)
	b.recorder.IncStepResult(string(rec.Name), metrics.ResultLabel(rec.Result))

	attrs := []any{logfields.Step(string(rec.Name)), logfields.Status(string(rec.Result))}
	if rec.Note != "" {
		attrs = append(attrs, logfields.Reason(rec.Note))
	}
	switch rec.Result {
	case ResultSkipped:
		log.Debug("Step skipped", attrs...)
	case ResultWarning:
		log.Warn("Step finished with warning", append(attrs, slog.String(logfields.KeyError, rec.Error))...)
	case ResultFailed:
		log.Debug("Step failed", append(attrs, slog.String(logfields.KeyError, rec.Error))...)
	default:
		log.Info("Step complete", append(attrs, logfields.DurationMS(rec.DurationMS))...)
	}
}

// present returns a Skip func that holds when the project-relative path exists.
func (b *Builder) present(rel string) func(*buildState) (bool, string) {
	return func(st *buildState) (bool, string) {
		if toolchain.Exists(projectPath(st, rel)) {
			return true, rel + " present"
		}
		return false, ""
	}
}

func projectPath(st *buildState, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(st.projectDir, rel)
}
