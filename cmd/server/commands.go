package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fluentpath/fluent-api/internal/config"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/platform/postgres"
	"github.com/fluentpath/fluent-api/internal/service/auth"
)

// newRootCmd builds the command tree. Every command loads configuration
// from the --config and --env-file flags plus FLUENT_ environment variables.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "fluent-api",
		Short:        "Language learning progress and mastery API",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "path to a YAML config file (default ./config.yaml when present)")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newTokenCmd())
	return root
}

// loadConfig reads configuration and sets up the process logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	configFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.LoadWithOptions(config.Options{EnvFile: envFile, ConfigFile: configFile})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log.Info("server configuration loaded",
				slog.Int("port", cfg.Server.Port),
				slog.String("log_level", cfg.Server.LogLevel),
				slog.String("timezone", cfg.Engine.Timezone),
				slog.Bool("redis_enabled", cfg.Redis.URL != ""))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := postgres.Open(ctx, cfg.Database, log)
			if err != nil {
				return err
			}

			app, err := newApplication(ctx, cfg, log, db)
			if err != nil {
				_ = db.Close()
				return err
			}
			return app.Run(ctx)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <" + strings.Join(postgres.MigrationCommands, "|") + ">",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: postgres.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := postgres.Open(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := db.Close(); cerr != nil {
					log.Error("failed to close database connection", slog.String("error", cerr.Error()))
				}
			}()

			return postgres.Migrate(cmd.Context(), db, args[0], log)
		},
	}
}

// newTokenCmd mints an access token for a learner. Production tokens are
// issued by the identity service; this command exists for local use.
func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <learner-id>",
		Short: "Print a signed access token for a learner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			learnerID, err := uuid.Parse(args[0])
			if err != nil || learnerID == uuid.Nil {
				return fmt.Errorf("learner id must be a non-nil UUID: %q", args[0])
			}

			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			jwtService, err := auth.NewJWTService(cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to initialize JWT service: %w", err)
			}

			token, err := jwtService.GenerateToken(cmd.Context(), learnerID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}
