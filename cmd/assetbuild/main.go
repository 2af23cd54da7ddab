package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/assetbuild/cmd/assetbuild/commands"
	aerrors "git.home.luguber.info/inful/assetbuild/internal/errors"
	"git.home.luguber.info/inful/assetbuild/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("assetbuild"),
		kong.Description("Builds the snf-ui Ember.js assets for Python packaging."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Ctx: ctx}
	err := parser.Run(global, cli)
	stop()
	aerrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
