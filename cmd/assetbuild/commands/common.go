package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"git.home.luguber.info/inful/assetbuild/internal/config"
	"git.home.luguber.info/inful/assetbuild/internal/toolchain"
)

// Global carries process-level state shared by every command.
type Global struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	// Runner executes external tools; nil uses os/exec.
	Runner toolchain.Runner
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"assetbuild.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Timeout time.Duration    `help:"Abort the build after this long (0 disables)" default:"0s"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Auto     AutoCmd     `cmd:"" help:"Packaging hook: build assets when the invocation requires them"`
	Build    BuildCmd    `cmd:"" help:"Build the front-end assets unconditionally"`
	Plan     PlanCmd     `cmd:"" help:"Show what auto would do without changing anything"`
	Metadata MetadataCmd `cmd:"" help:"Print the package metadata"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; sets a default logger until the
// configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	defaults := config.Default().Logging
	slog.SetDefault(newLogger(os.Stderr, defaults, c.Verbose))
	return nil
}

// loadConfig reads the configuration and reconfigures logging from it.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(g.stderr(), cfg.Logging, root.Verbose))
	return cfg, nil
}

func newLogger(w io.Writer, lc config.LoggingConfig, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slogLevel(lc.Level)}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return slog.New(tint.NewHandler(colorable.NewColorable(f), &tint.Options{
			Level:      opts.Level,
			TimeFormat: "15:04:05.000",
		}))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func slogLevel(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// commandContext returns the command context, bounded by --timeout when set.
func (g *Global) commandContext(root *CLI) (context.Context, context.CancelFunc) {
	ctx := g.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if root.Timeout > 0 {
		return context.WithTimeout(ctx, root.Timeout)
	}
	return context.WithCancel(ctx)
}

func (g *Global) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) stderr() io.Writer {
	if g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}

func (g *Global) runner() toolchain.Runner {
	if g.Runner == nil {
		return toolchain.NewExecRunner(g.stdout(), g.stderr())
	}
	return g.Runner
}
