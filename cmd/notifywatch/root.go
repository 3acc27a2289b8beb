package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tracepanic/compyle/pkg/config"
	"github.com/tracepanic/compyle/pkg/logger"
	"github.com/tracepanic/compyle/pkg/notifyclient"
)

type clientConfig struct {
	URL     string        `env:"NOTIFY_URL" envDefault:"http://localhost:8080/notifications"`
	Token   string        `env:"NOTIFY_TOKEN"`
	Timeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
	Verbose bool          `env:"NOTIFY_VERBOSE"`
}

var cfg clientConfig

var rootCmd = &cobra.Command{
	Use:   "notifywatch",
	Short: "Follow and manage your notifications from the terminal",
	Long: `notifywatch talks to the notifications API.

Run "notifywatch watch" to follow the live feed, or use one of the
mutation commands to change a single notification. The API URL and token
default to NOTIFY_URL and NOTIFY_TOKEN.`,
	SilenceUsage: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if cfg.Token == "" {
			return fmt.Errorf("a token is required: pass --token or set NOTIFY_TOKEN")
		}
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd.PersistentFlags().StringVar(&cfg.URL, "url", cfg.URL, "notifications API base URL")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "bearer token")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "log client activity to stderr")

	rootCmd.AddCommand(watchCmd, listCmd, readCmd, unreadCmd, readAllCmd, deleteCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	if !cfg.Verbose {
		return logger.Noop()
	}
	return logger.New(
		logger.WithFormat(logger.FormatText),
		logger.WithLevel(slog.LevelDebug),
		logger.WithOutput(os.Stderr),
	)
}

func newAPI(log *slog.Logger) *notifyclient.API {
	return notifyclient.NewAPI(cfg.URL, cfg.Token,
		notifyclient.WithTimeout(cfg.Timeout),
		notifyclient.WithLogger(log),
	)
}
