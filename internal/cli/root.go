// Package cli is the family-planner command line: the server and the
// operator commands that share its configuration.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"family-planner/internal/app"
	"family-planner/internal/config"
	"family-planner/internal/identity"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "family-planner",
		Short:         "Weekly meal plans and the shopping list they produce",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: ./config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewAssignCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewCleanupCommand(opts))

	return cmd
}

// load reads the config and builds the process logger.
func (o *RootOptions) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFrom(o.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Logging.Level
	if o.Verbose {
		level = "debug"
	}
	logger := app.NewLogger(os.Stderr, level, cfg.Logging.Format)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// withApp runs fn against a fully wired App.
func (o *RootOptions) withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, logger, err := o.load()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Warn("failed to close stores", "error", err)
		}
	}()
	return fn(a)
}

// actorFlags are the --user/--family pair of commands acting for someone.
type actorFlags struct {
	UserID   string
	FamilyID string
}

func (f *actorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.UserID, "user", "", "acting user id (required)")
	cmd.Flags().StringVar(&f.FamilyID, "family", "", "family id (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("family")
}

func (f *actorFlags) actor() identity.Actor {
	return identity.Actor{UserID: f.UserID, FamilyID: f.FamilyID}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
