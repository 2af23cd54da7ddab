package commands

import (
	"fmt"

	"git.home.luguber.info/inful/assetbuild/internal/pkginfo"
)

// MetadataCmd implements the 'metadata' command.
type MetadataCmd struct {
	Format      string `short:"f" help:"Output format" enum:"yaml,json" default:"yaml"`
	EntryPoints string `name:"entry-points" help:"Print only this entry point group, one 'name = target' per line"`
}

func (m *MetadataCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	md, err := pkginfo.Load(cfg)
	if err != nil {
		return err
	}
	if m.EntryPoints != "" {
		for _, line := range md.EntryPointLines(m.EntryPoints) {
			_, _ = fmt.Fprintln(g.stdout(), line)
		}
		return nil
	}
	return md.Write(g.stdout(), pkginfo.Format(m.Format))
}
