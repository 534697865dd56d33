package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <id-or-substring>",
	Short: "Cancel reminders by id prefix or message substring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		eng, err := newEngine()
		if err != nil {
			return err
		}
		cancelled, err := eng.Cancel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, r := range cancelled {
			kind := ""
			if r.Recurring {
				kind = "recurring "
			}
			fmt.Printf("✅ Cancelled %s[%s]: %s\n", kind, r.ID, preview(r.Message))
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all reminders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		eng, err := newEngine()
		if err != nil {
			return err
		}
		n, err := eng.ClearAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("✅ Cleared %d reminder(s)\n", n)
		return nil
	},
}

func preview(s string) string {
	const max = 30
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
