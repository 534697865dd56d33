package cli

import (
	"github.com/spf13/cobra"
)

// fireCmd is invoked by the scheduler, never by the user.
var fireCmd = &cobra.Command{
	Use:    "fire <job-id>",
	Short:  "Internal: fire a scheduled reminder",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		eng, err := newEngine()
		if err != nil {
			return err
		}
		return eng.Fire(cmd.Context(), args[0])
	},
}

// cleanupCmd is the detached second half of a one-shot fire: the fire
// handler runs as the scheduled unit, so the unit's own teardown happens
// from this separate process after a short grace delay.
var cleanupCmd = &cobra.Command{
	Use:    "cleanup <job-id>",
	Short:  "Internal: tear down a fired one-shot unit",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		eng, err := newEngine()
		if err != nil {
			return err
		}
		return eng.Cleanup(cmd.Context(), args[0])
	},
}
