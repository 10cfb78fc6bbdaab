package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vampirenirmal/lumina/internal/config"
	"github.com/vampirenirmal/lumina/internal/session"
)

// app carries what every subcommand needs once the root command has
// loaded the configuration.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "lumina",
		Short:         "Write, lay out and export a book manuscript",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init" {
				return nil
			}
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(cmd.ErrOrStderr(), cfg.Log)
			slog.SetDefault(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/lumina/config.yaml)")

	root.AddCommand(
		newInitCmd(a),
		newServeCmd(a),
		newStatsCmd(a),
		newPreviewCmd(a),
		newExportCmd(a),
	)
	return root
}

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				path = config.Path()
			}
			if !force && fileExists(path) {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}
			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// openSession wires storage and the AI assistant from the loaded config.
// The returned func closes the session and then the storage backend.
func (a *app) openSession(ctx context.Context) (*session.Session, func(), error) {
	store, closer, err := openStorage(a.cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	assistant, err := newAssistant(ctx, a.cfg.AI, store)
	if err != nil {
		closeQuietly(a.logger, closer)
		return nil, nil, err
	}

	sess, err := session.Open(ctx, session.Deps{
		Storage:   store,
		Assistant: assistant,
		Autosave:  a.cfg.Autosave.Scheduler(),
	})
	if err != nil {
		closeQuietly(a.logger, closer)
		return nil, nil, err
	}

	return sess, func() {
		sess.Close()
		closeQuietly(a.logger, closer)
	}, nil
}

func closeQuietly(logger *slog.Logger, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("Failed to close storage", "error", err)
	}
}
