package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/assetbuild/internal/gate"
)

// AutoCmd implements the 'auto' command, the packaging hook.
type AutoCmd struct {
	DryRun bool     `name:"dry-run" help:"Report the decision without building"`
	Args   []string `arg:"" optional:"" passthrough:"" help:"Packaging command line (e.g. setup.py sdist)"`
}

func (a *AutoCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	tel := newTelemetry(cfg)

	d := gate.Decide(a.Args, cfg.Build, cfg.OutputPath())
	tel.recorder.IncGateDecision(string(d.Reason))
	d.Log(slog.Default())
	_, _ = fmt.Fprintln(g.stdout(), d.Message())

	if !d.Run || a.DryRun {
		tel.flush()
		return nil
	}
	ctx, cancel := g.commandContext(root)
	defer cancel()
	return RunBuild(ctx, g, cfg, tel)
}
