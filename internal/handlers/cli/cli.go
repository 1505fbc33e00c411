package cli

import (
	"context"
	"os"

	"github.com/gabapcia/txsentinel/internal/pipeline"
	"github.com/gabapcia/txsentinel/internal/watchlist"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the txsentinel CLI application.
//
// It registers all available commands, including:
//
//   - `start`: Starts the full detection pipeline.
//   - `watch`: Registers an address on the persisted watchlist.
//   - `unwatch`: Removes an address from the persisted watchlist.
//   - `watchlist`: Prints every address currently on the watchlist.
//
// Parameters:
//   - ctx: Context used to control the lifecycle of the CLI application.
//   - wl: The watchlist service implementation used by address commands.
//   - pl: The pipeline service implementation used by the start command.
//
// This function sets up shell completion and invokes the CLI framework to parse and run commands.
func Run(ctx context.Context, wl watchlist.Service, pl pipeline.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "txsentinel",
		Description:           "Command-line interface for managing and running the txsentinel detection pipeline.",
		Usage:                 "txsentinel [command] [flags]",
		Commands: []*cli.Command{
			startPipelineCommand(pl),
			watchAddressCommand(wl),
			unwatchAddressCommand(wl),
			listWatchlistCommand(wl),
		},
	}

	return app.Run(ctx, os.Args)
}
