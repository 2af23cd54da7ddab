package commands

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"git.home.luguber.info/inful/assetbuild/internal/config"
	"git.home.luguber.info/inful/assetbuild/internal/gate"
	"git.home.luguber.info/inful/assetbuild/internal/toolchain"
)

// PlanCmd implements the 'plan' command. It never mutates anything.
type PlanCmd struct {
	Args []string `arg:"" optional:"" passthrough:"" help:"Packaging command line to evaluate"`
}

// pathCheck is one inspected location.
type pathCheck struct {
	label string
	path  string
}

func (p *PlanCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	out := g.stdout()
	if len(p.Args) > 0 {
		d := gate.Decide(p.Args, cfg.Build, cfg.OutputPath())
		_, _ = fmt.Fprintf(out, "decision: %s (run=%t)\n", d.Reason, d.Run)
	}
	_, _ = fmt.Fprintf(out, "environment: %s\n", cfg.Build.Environment)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, c := range planChecks(cfg) {
		state := "missing"
		if toolchain.Exists(c.path) {
			state = "present"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", c.label, state, c.path)
	}
	return tw.Flush()
}

func planChecks(cfg *config.Config) []pathCheck {
	project := cfg.ProjectPath()
	rel := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(project, p)
	}
	return []pathCheck{
		{"project", project},
		{"output", cfg.OutputPath()},
		{"node_modules", rel(cfg.Tools.NodeModules)},
		{"ember", rel(cfg.Tools.EmberBin)},
		{"bower_components", rel(cfg.Tools.BowerComponents)},
		{"bower (local)", rel(cfg.Tools.BowerLocalBin)},
	}
}
