package cli

import (
	"fmt"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show pending reminders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		eng, err := newEngine()
		if err != nil {
			return err
		}
		lst, err := eng.List(cmd.Context())
		if err != nil {
			return err
		}
		if lst.Empty() {
			fmt.Println("No pending reminders")
			return nil
		}

		now := time.Now()
		if len(lst.OneShot) > 0 {
			fmt.Println("One-time reminders:")
			for _, en := range lst.OneShot {
				ts := en.Time.Format("15:04")
				if !sameDay(en.Time, now) {
					ts += " tmrw"
				}
				fmt.Printf("  [%s]  %s  (%s)  %s\n", en.ID, ts, humanize.Time(en.Time), en.Message)
			}
		}
		if len(lst.Recurring) > 0 {
			if len(lst.OneShot) > 0 {
				fmt.Println()
			}
			fmt.Println("Recurring:")
			for _, en := range lst.Recurring {
				fmt.Printf("  [%s]  every %dm  (next ~%s)  %s\n", en.ID, en.Interval/60, en.Next.Format("15:04"), en.Message)
			}
		}
		fmt.Println("\nCancel: pingme cancel <id>")
		return nil
	},
}
