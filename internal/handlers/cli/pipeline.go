package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabapcia/txsentinel/internal/pipeline"

	"github.com/urfave/cli/v3"
)

// startPipelineCommand returns a CLI command that starts the full detection
// pipeline: event ingestion, rule evaluation and alert dispatching.
//
// Usage example:
//
//	txsentinel start
//
// The process runs indefinitely until it receives an interrupt (SIGINT or SIGTERM).
func startPipelineCommand(pl pipeline.Service) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the detection pipeline including event ingestion, rule evaluation and alert dispatching.",
		Usage:       "Initializes and runs the full pipeline. Terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			defer close(quit)

			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			if err := pl.Start(ctx); err != nil {
				return err
			}
			defer pl.Close()

			<-quit
			return nil
		},
	}
}
