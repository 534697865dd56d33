package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pingme/internal/engine"
	"pingme/internal/timeparse"
)

var nowCmd = &cobra.Command{
	Use:   "now <message>",
	Short: "Send a notification immediately",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		eng, err := newEngine()
		if err != nil {
			return err
		}
		if err := eng.Notify(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("✅ Notification sent")
		return nil
	},
}

var inCmd = &cobra.Command{
	Use:   "in <duration> <message>",
	Short: "Send a notification after a delay (30m, 1h30m, 90)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := timeparse.Duration(args[0])
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		eng, err := newEngine()
		if err != nil {
			return err
		}
		res, err := eng.ScheduleOnce(cmd.Context(), time.Now().Add(d), args[1])
		if err != nil {
			return err
		}
		reportScheduled(res)
		return nil
	},
}

var atCmd = &cobra.Command{
	Use:   "at <time> <message>",
	Short: "Send a notification at a time (17:30, 5:30pm, 5pm)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := timeparse.Clock(args[0], time.Now())
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		eng, err := newEngine()
		if err != nil {
			return err
		}
		res, err := eng.ScheduleOnce(cmd.Context(), at, args[1])
		if err != nil {
			return err
		}
		reportScheduled(res)
		return nil
	},
}

var everyCmd = &cobra.Command{
	Use:   "every <duration> <message>",
	Short: "Send a recurring notification (minimum every 1m)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := timeparse.Duration(args[0])
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		eng, err := newEngine()
		if err != nil {
			return err
		}
		res, err := eng.ScheduleRecurring(cmd.Context(), d, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("✅ [%s] Recurring every %dm: %q\n", res.ID, int(d.Minutes()), args[1])
		return nil
	},
}

func reportScheduled(res engine.Scheduled) {
	if res.Immediate {
		fmt.Println("✅ Notification sent (time was now/past)")
		return
	}
	ts := res.At.Format("15:04")
	if !sameDay(res.At, time.Now()) {
		ts += " tomorrow"
	}
	fmt.Printf("✅ [%s] Scheduled for %s (%dm from now)\n", res.ID, ts, int(res.Delay.Minutes()))
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
