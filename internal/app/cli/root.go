// Package cli holds the governancectl command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lexicon/internal/app/bootstrap"
	"lexicon/internal/platform/config"
)

// App carries state shared by every subcommand. The runtime is built lazily
// after flags are parsed.
type App struct {
	viper   *viper.Viper
	logger  *slog.Logger
	build   func(config.Config, *slog.Logger) (*bootstrap.Runtime, error)
	runtime *bootstrap.Runtime
}

type Option func(*App)

// WithRuntime replaces runtime construction, for tests.
func WithRuntime(runtime *bootstrap.Runtime) Option {
	return func(a *App) {
		a.build = func(config.Config, *slog.Logger) (*bootstrap.Runtime, error) {
			return runtime, nil
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// RootCommand creates the governancectl root command.
func RootCommand(opts ...Option) *cobra.Command {
	app := &App{
		viper: viper.New(),
		build: bootstrap.BuildRuntime,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	rootCmd := &cobra.Command{
		Use:           "governancectl",
		Short:         "Operate the lexicon editorial governance store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	setupFlags(rootCmd, app.viper)

	rootCmd.AddCommand(
		migrateCommand(app),
		maintenanceCommand(app),
		outboxCommand(app),
		contributionsCommand(app),
		directoryCommand(app),
	)

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.close()
	}
	return rootCmd
}

func setupFlags(rootCmd *cobra.Command, v *viper.Viper) {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a configuration file")
	flags.String("database-driver", "", "Store driver: postgres, sqlite or memory")
	flags.String("database-dsn", "", "Database connection string")

	bindings := map[string]string{
		"config_file":     "config",
		"database.driver": "database-driver",
		"database.dsn":    "database-dsn",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "error binding flag %s: %v\n", flag, err)
		}
	}
}

// Runtime returns the wired runtime, building it on first use.
func (a *App) Runtime() (*bootstrap.Runtime, error) {
	if a.runtime != nil {
		return a.runtime, nil
	}
	cfg, err := config.LoadFrom(a.viper)
	if err != nil {
		return nil, err
	}
	runtime, err := a.build(cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.runtime = runtime
	return runtime, nil
}

func (a *App) close() error {
	if a.runtime == nil {
		return nil
	}
	err := a.runtime.Close()
	a.runtime = nil
	return err
}

func requireArg(args []string, name string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return strings.TrimSpace(args[0]), nil
}
