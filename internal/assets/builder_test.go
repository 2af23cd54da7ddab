package assets

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuild/internal/config"
	aerrors "git.home.luguber.info/inful/assetbuild/internal/errors"
	"git.home.luguber.info/inful/assetbuild/internal/metrics"
	"git.home.luguber.info/inful/assetbuild/internal/toolchain"
	"git.home.luguber.info/inful/assetbuild/internal/toolchain/toolchaintest"
)

const npmPath = "/usr/local/bin/npm"

type fixture struct {
	cfg     *config.Config
	project string
	output  string
	fake    *toolchaintest.Fake
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Root = root
	return &fixture{
		cfg:     cfg,
		project: cfg.ProjectPath(),
		output:  cfg.OutputPath(),
		fake:    toolchaintest.New(),
	}
}

func (f *fixture) builder(opts ...Option) *Builder {
	return NewBuilder(f.cfg, append([]Option{WithRunner(f.fake)}, opts...)...)
}

func (f *fixture) path(rel string) string { return filepath.Join(f.project, rel) }

// installed creates every dependency directory and tool binary.
func (f *fixture) installed(t *testing.T) {
	t.Helper()
	for _, dir := range []string{"node_modules", "bower_components"} {
		require.NoError(t, os.MkdirAll(f.path(dir), 0o750))
	}
	for _, bin := range []string{f.cfg.Tools.EmberBin, f.cfg.Tools.BowerLocalBin} {
		require.NoError(t, os.MkdirAll(filepath.Dir(f.path(bin)), 0o750))
		require.NoError(t, os.WriteFile(f.path(bin), []byte("#!/bin/sh\n"), 0o600))
	}
}

// simulateTools programs the fake so every install produces its artifacts.
func (f *fixture) simulateTools() {
	f.fake.WithTool("npm", npmPath).
		On("npm install --silent", toolchaintest.Creates("node_modules/")).
		On("install ember-cli", toolchaintest.Creates(f.cfg.Tools.EmberBin)).
		On("install bower", toolchaintest.Creates(f.cfg.Tools.BowerLocalBin)).
		On("install --allow-root --quiet", toolchaintest.Creates("bower_components/")).
		On(" build --environment", toolchaintest.Creates(f.output+"/"))
}

func getwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	return wd
}

func TestBuild_MissingNPM(t *testing.T) {
	f := newFixture(t)
	before := getwd(t)

	report, err := f.builder().Build(context.Background())

	require.Error(t, err)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryToolchain))
	assert.Contains(t, err.Error(), "npm not found")
	assert.Empty(t, f.fake.Calls())
	assert.NoDirExists(t, f.project)
	assert.Equal(t, before, getwd(t))
	assert.Equal(t, OutcomeFailed, report.Outcome)

	rec, ok := report.Step(StepRequireNPM)
	require.True(t, ok)
	assert.Equal(t, ResultFailed, rec.Result)
	_, reached := report.Step(StepPrepareProject)
	assert.False(t, reached)
}

func TestBuild_DependenciesPresentRunsOnlyEmberBuild(t *testing.T) {
	f := newFixture(t)
	f.installed(t)
	f.fake.WithTool("npm", npmPath)

	report, err := f.builder().Build(context.Background())

	require.NoError(t, err)
	ember := f.path(f.cfg.Tools.EmberBin)
	assert.Equal(t, []string{
		ember + " build --environment production --output-path " + f.output,
	}, f.fake.Commands())
	assert.Equal(t, []StepName{StepResolveEnvironment, StepRequireNPM, StepPrepareProject, StepEmberBuild}, report.Ran())
	for _, name := range []StepName{StepNPMInstall, StepEmberCLI, StepResolveBower, StepBowerInstall} {
		rec, ok := report.Step(name)
		require.True(t, ok, name)
		assert.Equal(t, ResultSkipped, rec.Result, name)
	}
	assert.Equal(t, OutcomeSuccess, report.Outcome)
}

func TestBuild_FreshProject(t *testing.T) {
	f := newFixture(t)
	f.simulateTools()
	before := getwd(t)

	var cwdDuringBuild string
	f.fake.On("npm install --silent", func(inv toolchain.Invocation) toolchain.Outcome {
		cwdDuringBuild = getwd(t)
		return toolchaintest.Creates("node_modules/")(inv)
	})

	report, err := f.builder().Build(context.Background())

	require.NoError(t, err)
	cache := " --silent --cache-min 99999999"
	assert.Equal(t, []string{
		npmPath + " install" + cache,
		npmPath + " install ember-cli" + cache,
		npmPath + " install bower" + cache,
		f.path(f.cfg.Tools.BowerLocalBin) + " install --allow-root --quiet",
		f.path(f.cfg.Tools.EmberBin) + " build --environment production --output-path " + f.output,
	}, f.fake.Commands())
	assert.DirExists(t, f.output)
	assert.Equal(t, before, getwd(t))

	wantDir, err := filepath.EvalSymlinks(f.project)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(cwdDuringBuild)
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)

	rec, _ := report.Step(StepPrepareProject)
	assert.Equal(t, "created", rec.Note)
	for _, call := range f.fake.Calls() {
		assert.Equal(t, f.project, call.Dir)
	}
}

func TestBuild_EnvironmentFromConfig(t *testing.T) {
	f := newFixture(t)
	f.installed(t)
	f.fake.WithTool("npm", npmPath)
	f.cfg.Build.Environment = "development"

	report, err := f.builder().Build(context.Background())

	require.NoError(t, err)
	assert.Contains(t, f.fake.Commands()[0], "--environment development")
	assert.Equal(t, "development", report.Environment)
}

func TestBuild_NPMInstallFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.simulateTools()
	f.fake.On("npm install --silent", toolchaintest.Fail(2))
	before := getwd(t)

	report, err := f.builder().Build(context.Background())

	require.Error(t, err)
	assert.Equal(t, aerrors.CategoryProcess, aerrors.GetCategory(err))
	ae, ok := aerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, 2, ae.Context["exit_code"])
	assert.Equal(t, before, getwd(t))
	assert.Len(t, f.fake.Calls(), 1)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.NoDirExists(t, f.output)
}

func TestBuild_EmberCLIWarningThenMissingBinary(t *testing.T) {
	f := newFixture(t)
	f.simulateTools()
	f.fake.On("install ember-cli", toolchaintest.Fail(1))

	report, err := f.builder().Build(context.Background())

	require.Error(t, err)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryToolchain))
	assert.Contains(t, err.Error(), "ember not found")

	rec, ok := report.Step(StepEmberCLI)
	require.True(t, ok)
	assert.Equal(t, ResultWarning, rec.Result)
	require.NotNil(t, rec.Outcome)
	assert.Equal(t, toolchain.StatusFailed, rec.Outcome.Status)
	assert.Len(t, report.Warnings, 1)

	// bower steps still ran after the warning
	rec, _ = report.Step(StepBowerInstall)
	assert.Equal(t, ResultRan, rec.Result)
	rec, _ = report.Step(StepEmberBuild)
	assert.Equal(t, ResultFailed, rec.Result)
}

func TestBuild_EmberCLIFatalPolicy(t *testing.T) {
	f := newFixture(t)
	f.simulateTools()
	f.fake.On("install ember-cli", toolchaintest.Fail(1))
	f.cfg.Build.EmberInstallPolicy = config.PolicyFatal

	report, err := f.builder().Build(context.Background())

	require.Error(t, err)
	assert.Equal(t, aerrors.CategoryProcess, aerrors.GetCategory(err))
	_, reached := report.Step(StepResolveBower)
	assert.False(t, reached)
}

func TestBuild_BowerResolution(t *testing.T) {
	t.Run("on PATH", func(t *testing.T) {
		f := newFixture(t)
		f.simulateTools()
		f.fake.WithTool("bower", "/usr/bin/bower")

		_, err := f.builder().Build(context.Background())

		require.NoError(t, err)
		assert.Contains(t, f.fake.Commands(), "/usr/bin/bower install --allow-root --quiet")
		assert.NotContains(t, f.fake.Commands(), npmPath+" install bower --silent --cache-min 99999999")
	})

	t.Run("local binary", func(t *testing.T) {
		f := newFixture(t)
		f.simulateTools()
		local := f.path(f.cfg.Tools.BowerLocalBin)
		require.NoError(t, os.MkdirAll(filepath.Dir(local), 0o750))
		require.NoError(t, os.WriteFile(local, nil, 0o600))

		report, err := f.builder().Build(context.Background())

		require.NoError(t, err)
		assert.Contains(t, f.fake.Commands(), local+" install --allow-root --quiet")
		rec, _ := report.Step(StepResolveBower)
		assert.Equal(t, "local: "+local, rec.Note)
		assert.Nil(t, rec.Outcome)
	})

	t.Run("install fails", func(t *testing.T) {
		f := newFixture(t)
		f.simulateTools()
		f.fake.On("install bower", toolchaintest.Fail(1))

		report, err := f.builder().Build(context.Background())

		require.Error(t, err)
		assert.True(t, aerrors.IsCategory(err, aerrors.CategoryToolchain))
		assert.Contains(t, err.Error(), "bower not found")
		rec, _ := report.Step(StepResolveBower)
		assert.Equal(t, ResultWarning, rec.Result)
		rec, _ = report.Step(StepBowerInstall)
		assert.Equal(t, ResultFailed, rec.Result)
	})

	t.Run("install succeeds but binary absent", func(t *testing.T) {
		f := newFixture(t)
		f.simulateTools()
		f.fake.On("install bower", func(inv toolchain.Invocation) toolchain.Outcome { return toolchain.Success(inv) })

		report, err := f.builder().Build(context.Background())

		require.Error(t, err)
		assert.True(t, aerrors.IsCategory(err, aerrors.CategoryToolchain))
		rec, _ := report.Step(StepResolveBower)
		assert.Equal(t, ResultWarning, rec.Result)
	})
}

func TestBuild_BowerInstallFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.simulateTools()
	f.fake.On("install --allow-root --quiet", toolchaintest.Fail(1))

	_, err := f.builder().Build(context.Background())

	require.Error(t, err)
	ae, ok := aerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, string(StepBowerInstall), ae.Context["step"])
}

func TestBuild_EmberBuildFailure(t *testing.T) {
	f := newFixture(t)
	f.installed(t)
	f.fake.WithTool("npm", npmPath).On(" build --environment", toolchaintest.Fail(3))
	before := getwd(t)

	report, err := f.builder().Build(context.Background())

	require.Error(t, err)
	assert.Equal(t, aerrors.CategoryProcess, aerrors.GetCategory(err))
	assert.Equal(t, before, getwd(t))
	rec, _ := report.Step(StepEmberBuild)
	assert.Equal(t, 3, rec.Outcome.ExitCode)
}

func TestBuild_CanceledBeforeStart(t *testing.T) {
	f := newFixture(t)
	f.simulateTools()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.builder().Build(ctx)

	require.Error(t, err)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryCanceled))
	assert.Equal(t, OutcomeCanceled, report.Outcome)
	assert.Empty(t, f.fake.Calls())
	assert.Len(t, report.Steps, 1)
}

func TestBuild_CanceledDuringStep(t *testing.T) {
	f := newFixture(t)
	f.simulateTools()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// a cancel during a warn-policy step still aborts
	f.fake.On("install ember-cli", func(inv toolchain.Invocation) toolchain.Outcome {
		cancel()
		return toolchaintest.Fail(-1)(inv)
	})
	before := getwd(t)

	report, err := f.builder().Build(ctx)

	require.Error(t, err)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryCanceled))
	assert.Equal(t, OutcomeCanceled, report.Outcome)
	assert.Equal(t, before, getwd(t))
	assert.Len(t, f.fake.Calls(), 2)
}

type countingRecorder struct {
	mu       sync.Mutex
	results  map[string]metrics.ResultLabel
	outcomes []metrics.BuildOutcomeLabel
	steps    int
}

func (c *countingRecorder) ObserveStepDuration(string, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps++
}

func (c *countingRecorder) IncStepResult(step string, result metrics.ResultLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[step] = result
}

func (c *countingRecorder) ObserveBuildDuration(time.Duration) {}

func (c *countingRecorder) IncBuildOutcome(o metrics.BuildOutcomeLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
}

func (c *countingRecorder) IncGateDecision(string) {}

func TestBuild_RecordsMetrics(t *testing.T) {
	f := newFixture(t)
	f.installed(t)
	f.fake.WithTool("npm", npmPath)
	rec := &countingRecorder{results: map[string]metrics.ResultLabel{}}

	_, err := f.builder(WithRecorder(rec)).Build(context.Background())

	require.NoError(t, err)
	assert.Equal(t, metrics.ResultSkipped, rec.results[string(StepNPMInstall)])
	assert.Equal(t, metrics.ResultRan, rec.results[string(StepEmberBuild)])
	assert.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeSuccess}, rec.outcomes)
	assert.Equal(t, 4, rec.steps)
}

func TestReport_Persist(t *testing.T) {
	f := newFixture(t)
	f.installed(t)
	f.fake.WithTool("npm", npmPath)

	report, err := f.builder().Build(context.Background())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reports", "assets.json")
	require.NoError(t, report.Persist(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded struct {
		BuildID string `json:"build_id"`
		Outcome string `json:"outcome"`
		Steps   []struct {
			Name   string `json:"name"`
			Result string `json:"result"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.BuildID, decoded.BuildID)
	assert.Equal(t, "success", decoded.Outcome)
	assert.Len(t, decoded.Steps, 8)
	assert.Equal(t, "ember_build", decoded.Steps[7].Name)
	assert.Contains(t, report.Summary(), "outcome=success")
	assert.Contains(t, report.Summary(), "ran=resolve_environment,require_npm,prepare_project,ember_build")
}
