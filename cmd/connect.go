package routecmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gfx.cafe/gfx/pgroute/lib/conninfo"
	"gfx.cafe/gfx/pgroute/lib/pgpass"
	"gfx.cafe/gfx/pgroute/lib/router"
	"gfx.cafe/gfx/pgroute/lib/session"
)

func init() {
	rootCmd.AddCommand(connectCmd())
}

func connectCmd() *cobra.Command {
	var config Config
	var command string

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Resolve the topology and open a session",
		Long: `Resolve the connection intent into an ordered candidate list, build a
multi-host descriptor, and open a session. With -c the statement runs once
and the session closes; without it the session is interactive.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConnect(cmd.Context(), newLogger(cmd), &config, command)
		},
	}
	addTopologyFlags(cmd.Flags(), &config)
	addSessionFlags(cmd.Flags(), &config)
	cmd.Flags().StringVarP(&command, "command", "c", "", "run this single statement and exit")
	cmd.Flags().BoolVar(&config.SavePassfile, "save-passfile", false, "append the credential to the password file after a successful session")

	return cmd
}

func runConnect(ctx context.Context, log *zap.Logger, config *Config, command string) error {
	defer func() {
		_ = log.Sync()
	}()

	intent, err := config.intent()
	if err != nil {
		return err
	}
	source, err := config.source(log)
	if err != nil {
		return err
	}

	candidates, err := router.Resolve(ctx, intent, source)
	if err != nil {
		return err
	}
	log.Info("resolved candidates",
		zap.String("intent", intent.String()),
		zap.Int("count", len(candidates)),
	)

	password, err := config.password(candidates)
	if err != nil {
		return err
	}

	descriptor := conninfo.Build(candidates, intent, config.database(), config.user(), password)
	descriptor.SSLMode = conninfo.SSLMode(config.SSLMode)
	descriptor.ConnectTimeout = config.ConnectTimeout

	fallback, err := fallbackDescriptor(config, intent, password)
	if err != nil {
		return err
	}

	runner := session.Runner{Log: log}
	if err = runner.Run(ctx, descriptor, command, fallback); err != nil {
		return err
	}

	if config.SavePassfile && password != "" {
		for _, candidate := range descriptor.Candidates {
			err = pgpass.Append(config.Passfile, pgpass.Entry{
				Host:     candidate.Host,
				Port:     candidate.Port,
				Database: descriptor.Database,
				User:     descriptor.User,
				Password: password,
			})
			if err != nil {
				return fmt.Errorf("saving passfile entry: %w", err)
			}
		}
	}
	return nil
}

// fallbackDescriptor builds the single-retry alternate for best-effort
// static topologies. Discovered topologies never get one: the membership
// service already told us everything it knows.
func fallbackDescriptor(config *Config, intent router.Intent, password string) (*conninfo.Descriptor, error) {
	if intent != router.BestEffort || config.Discover || config.FallbackHost == "" {
		return nil, nil
	}
	candidate, err := router.ParseHostPort(config.FallbackHost, config.Port)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	descriptor := conninfo.Build([]router.Candidate{candidate}, intent, config.database(), config.user(), password)
	descriptor.SSLMode = conninfo.SSLMode(config.SSLMode)
	descriptor.ConnectTimeout = config.ConnectTimeout
	return &descriptor, nil
}
