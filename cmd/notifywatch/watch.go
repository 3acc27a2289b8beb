package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tracepanic/compyle/pkg/notifyclient"
)

var pollInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow notifications live",
	Long: `Polls the notification list and listens on the live stream, redrawing
the compact view whenever something changes. Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := newLogger()
		state := notifyclient.NewState()
		syncer := notifyclient.NewSyncer(newAPI(log), state,
			notifyclient.WithPollInterval(pollInterval),
			notifyclient.WithSyncerLogger(log),
		)

		var mu sync.Mutex
		state.OnChange(func() {
			mu.Lock()
			defer mu.Unlock()
			renderCompact(cmd.OutOrStdout(), state.Compact())
		})

		return syncer.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&pollInterval, "poll", 30*time.Second, "poll interval")
}

// runCommand primes a State from the server and runs fn against Commands.
func runCommand(ctx context.Context, fn func(context.Context, *notifyclient.Commands) error) error {
	log := newLogger()
	api := newAPI(log)
	state := notifyclient.NewState()
	syncer := notifyclient.NewSyncer(api, state, notifyclient.WithSyncerLogger(log))

	if err := syncer.Resync(ctx); err != nil {
		return err
	}
	return fn(ctx, notifyclient.NewCommands(api, state, syncer.Resync, notifyclient.WithCommandsLogger(log)))
}
