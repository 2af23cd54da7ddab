package assets

import (
	"context"
	"os"

	aerrors "git.home.luguber.info/inful/assetbuild/internal/errors"
	"git.home.luguber.info/inful/assetbuild/internal/logfields"
	"git.home.luguber.info/inful/assetbuild/internal/toolchain"
)

func (b *Builder) resolveEnvironment(_ context.Context, st *buildState) (*toolchain.Outcome, error) {
	st.environment = b.cfg.Build.Environment
	if st.environment == "" {
		st.environment = defaultEnvironment
	}
	st.setNote("environment=" + st.environment)
	return nil, nil
}

func (b *Builder) requireNPM(_ context.Context, st *buildState) (*toolchain.Outcome, error) {
	path, err := b.runner.LookPath(b.cfg.Tools.NPM)
	if err != nil {
		return nil, aerrors.ToolNotFound(b.cfg.Tools.NPM).WithContext("cause", err.Error())
	}
	st.npm = path
	st.setNote(path)
	return nil, nil
}

func (b *Builder) prepareProject(_ context.Context, st *buildState) (*toolchain.Outcome, error) {
	if toolchain.Exists(st.projectDir) {
		st.setNote("exists")
		return nil, nil
	}
	if err := os.MkdirAll(st.projectDir, 0o750); err != nil {
		return nil, aerrors.FilesystemError("create project directory", st.projectDir, err)
	}
	st.setNote("created")
	return nil, nil
}

func (b *Builder) npmInstall(ctx context.Context, st *buildState) (*toolchain.Outcome, error) {
	return b.exec(ctx, StepNPMInstall, st, st.npm, b.npmArgs("install")...)
}

func (b *Builder) emberCLIInstall(ctx context.Context, st *buildState) (*toolchain.Outcome, error) {
	return b.exec(ctx, StepEmberCLI, st, st.npm, b.npmArgs("install", "ember-cli")...)
}

// resolveBower prefers bower on PATH, then the project-local binary, and
// finally installs bower locally and looks again.
func (b *Builder) resolveBower(ctx context.Context, st *buildState) (*toolchain.Outcome, error) {
	if path, err := b.runner.LookPath(b.cfg.Tools.Bower); err == nil {
		st.bower = path
		st.setNote("path: " + path)
		return nil, nil
	}
	local := projectPath(st, b.cfg.Tools.BowerLocalBin)
	if toolchain.Exists(local) {
		st.bower = local
		st.setNote("local: " + local)
		return nil, nil
	}

	b.logger.Info("Bower not found, installing it locally", logfields.Path(local))
	out, err := b.exec(ctx, StepResolveBower, st, st.npm, b.npmArgs("install", "bower")...)
	if err != nil {
		return out, err
	}
	if !toolchain.Exists(local) {
		return out, aerrors.ToolNotFound(b.cfg.Tools.Bower).WithContext("path", local)
	}
	st.bower = local
	st.setNote("installed: " + local)
	return out, nil
}

func (b *Builder) bowerInstall(ctx context.Context, st *buildState) (*toolchain.Outcome, error) {
	if st.bower == "" {
		// resolve_bower warned; the local install may still have landed.
		local := projectPath(st, b.cfg.Tools.BowerLocalBin)
		if !toolchain.Exists(local) {
			return nil, aerrors.ToolNotFound(b.cfg.Tools.Bower).WithContext("path", local)
		}
		st.bower = local
	}
	return b.exec(ctx, StepBowerInstall, st, st.bower, "install", "--allow-root", "--quiet")
}

func (b *Builder) emberBuild(ctx context.Context, st *buildState) (*toolchain.Outcome, error) {
	ember := projectPath(st, b.cfg.Tools.EmberBin)
	if !toolchain.Exists(ember) {
		return nil, aerrors.ToolNotFound("ember").WithContext("path", ember)
	}
	st.setNote("output=" + st.outputDir)
	return b.exec(ctx, StepEmberBuild, st, ember,
		"build", "--environment", st.environment, "--output-path", st.outputDir)
}

// npmArgs appends the quiet flag and the cache arguments to an npm subcommand.
func (b *Builder) npmArgs(args ...string) []string {
	out := append([]string{}, args...)
	out = append(out, "--silent")
	return append(out, b.cfg.Build.CacheArgs...)
}

// exec runs one external command in the project directory and maps a
// non-success outcome to a typed error.
func (b *Builder) exec(ctx context.Context, step StepName, st *buildState, name string, args ...string) (*toolchain.Outcome, error) {
	inv := toolchain.Invocation{Name: name, Args: args, Dir: st.projectDir}
	b.logger.Info("Running "+string(step), logfields.Command(inv.String()))
	out := b.runner.Run(ctx, inv)
	switch {
	case out.OK():
		return &out, nil
	case ctx.Err() != nil:
		return &out, aerrors.Canceled(string(step), ctx.Err())
	case out.Status == toolchain.StatusNotFound:
		return &out, aerrors.ToolNotFound(name).WithContext("step", string(step))
	default:
		return &out, aerrors.StepFailed(string(step), out.ExitCode, out.Error())
	}
}
