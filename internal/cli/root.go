// Package cli wires the pingme command surface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pingme/internal/config"
	"pingme/internal/engine"
	"pingme/internal/logging"
	"pingme/internal/notify"
	"pingme/internal/registry"
	"pingme/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "pingme",
	Short: "Schedule desktop notifications from the command line",
	Long: `pingme schedules desktop notifications that survive sleep and reboot:
every reminder is armed as a systemd user timer, so no pingme process
needs to stay running.

  pingme now "message"           send immediately
  pingme in 30m "message"        in 30 minutes
  pingme at 17:30 "message"      at a time (tomorrow if past)
  pingme every 90m "message"     recurring every 90 minutes
  pingme list                    show pending reminders
  pingme cancel <id>             cancel by id or message substring
  pingme clear                   clear all reminders`,
}

// Execute runs the root command. Usage errors keep cobra's usage text;
// runtime errors print once and exit non-zero.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(nowCmd)
	rootCmd.AddCommand(inCmd)
	rootCmd.AddCommand(atCmd)
	rootCmd.AddCommand(everyCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(fireCmd)
	rootCmd.AddCommand(cleanupCmd)
}

// newEngine assembles the full stack behind a command: config, logger,
// store, systemd registry and desktop notifier.
func newEngine() (*engine.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel)

	reg, err := registry.NewSystemd(registry.Options{
		Prefix:  cfg.Prefix,
		JobsDir: cfg.JobsDir(),
		LogPath: cfg.LogPath(),
	}, log)
	if err != nil {
		return nil, err
	}
	n := &notify.Desktop{
		AppName: cfg.Notify.AppName,
		Icon:    cfg.Notify.Icon,
		Timeout: cfg.NotifyTimeout(),
	}
	return engine.New(store.New(cfg.Dir()), reg, n, log), nil
}
