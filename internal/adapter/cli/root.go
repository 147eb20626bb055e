// Package cli wires the bot's two run modes behind a Cobra command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Server runs the webhook listener until the context is canceled.
type Server interface {
	Serve(ctx context.Context) error
}

// Syncer executes one reconciliation pass against the tracking table.
type Syncer interface {
	Run(ctx context.Context) error
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Server  Server
	Syncer  Syncer
	Args    Arguments
	Version string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "thearesia",
		Short: "GitHub repository maintenance bot",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(serveCommand(deps.Server))
	root.AddCommand(syncCommand(deps.Syncer))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func serveCommand(server Server) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Listen for webhook deliveries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.Serve(cmd.Context())
		},
	}
}

func syncCommand(syncer Syncer) *cobra.Command {
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile assigned issues into the tracking table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := syncer.Run(ctx); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			if every <= 0 {
				return nil
			}

			ticker := time.NewTicker(every)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					if err := syncer.Run(ctx); err != nil {
						return fmt.Errorf("sync failed: %w", err)
					}
				case <-ctx.Done():
					return nil
				}
			}
		},
	}

	cmd.Flags().DurationVar(&every, "every", 0, "Repeat the sync pass on this interval (0 runs once)")

	return cmd
}
