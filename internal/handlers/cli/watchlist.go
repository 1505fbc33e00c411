package cli

import (
	"context"
	"fmt"

	"github.com/gabapcia/txsentinel/internal/watchlist"

	"github.com/urfave/cli/v3"
)

// watchAddressCommand returns a CLI command that registers an address on the
// persisted watchlist. The address takes effect on the next pipeline run.
//
// Usage example:
//
//	txsentinel watch --address 0xABC123...
func watchAddressCommand(wl watchlist.Service) *cli.Command {
	return &cli.Command{
		Name:        "watch",
		Description: "Register an address for heightened monitoring. Takes effect on the next pipeline run.",
		Usage:       "Adds an address to the persisted watchlist.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Address to start watching",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return wl.Watch(ctx, c.String("address"))
		},
	}
}

// unwatchAddressCommand returns a CLI command that removes an address from
// the persisted watchlist.
//
// Usage example:
//
//	txsentinel unwatch --address 0xABC123...
func unwatchAddressCommand(wl watchlist.Service) *cli.Command {
	return &cli.Command{
		Name:        "unwatch",
		Description: "Remove an address from the persisted watchlist. Takes effect on the next pipeline run.",
		Usage:       "Removes an address from the persisted watchlist.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Address to stop watching",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return wl.Unwatch(ctx, c.String("address"))
		},
	}
}

// listWatchlistCommand returns a CLI command that prints every address
// currently on the persisted watchlist, one per line.
//
// Usage example:
//
//	txsentinel watchlist
func listWatchlistCommand(wl watchlist.Service) *cli.Command {
	return &cli.Command{
		Name:        "watchlist",
		Description: "List every address currently registered on the persisted watchlist.",
		Usage:       "Prints the persisted watchlist, one address per line.",
		Action: func(ctx context.Context, c *cli.Command) error {
			addresses, err := wl.Addresses(ctx)
			if err != nil {
				return err
			}

			for _, address := range addresses {
				fmt.Fprintln(c.Root().Writer, address)
			}
			return nil
		},
	}
}
