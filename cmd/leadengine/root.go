package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"leadengine_backend/internal/events"
	"leadengine_backend/internal/leads"
	"leadengine_backend/platform/config"
	"leadengine_backend/platform/db"
	"leadengine_backend/platform/logger"
	"leadengine_backend/platform/validator"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
)

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:           "leadengine",
	Short:         "Score leads and forecast the sales pipeline.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return applyFlags()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("database-url", "", "Postgres connection string (overrides DATABASE_URL)")
	flags.String("priors", "", "YAML file with industry prior overrides")
	flags.StringP("output", "o", outputText, "output format: text or json")
	flags.Bool("color", true, "colorize text output")
	flags.String("env", "", "log environment (development prints debug logs)")

	for _, name := range []string{"database-url", "priors", "output", "color", "env"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(scoreCmd, forecastCmd, migrateCmd)
}

// initConfig reads ENV variables prefixed with LEADENGINE_.
func initConfig() {
	viper.SetEnvPrefix("LEADENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("output", outputText)
	viper.SetDefault("color", true)
}

// applyFlags pushes CLI overrides into the environment read by config.Load.
func applyFlags() error {
	switch viper.GetString("output") {
	case outputText, outputJSON:
	default:
		return fmt.Errorf("invalid --output %q (want text or json)", viper.GetString("output"))
	}

	if !viper.GetBool("color") {
		color.NoColor = true
	}

	overrides := map[string]string{
		"DATABASE_URL":         viper.GetString("database-url"),
		"INDUSTRY_PRIORS_FILE": viper.GetString("priors"),
		"APP_ENV":              viper.GetString("env"),
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// engine is the wired lead module plus the resources it holds.
type engine struct {
	cfg    *config.Config
	log    *logger.Logger
	pool   *pgxpool.Pool
	bus    *events.InMemoryBus
	module *leads.Module
}

func openEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Env)

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	bus := events.NewInMemoryBus(log)
	module, err := leads.NewModule(pool, bus, validator.New(), cfg, log)
	if err != nil {
		pool.Close()
		return nil, err
	}
	module.RegisterHandlers(bus)

	return &engine{cfg: cfg, log: log, pool: pool, bus: bus, module: module}, nil
}

func (e *engine) Close() {
	e.bus.Wait()
	e.pool.Close()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
