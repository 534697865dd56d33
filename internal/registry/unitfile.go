package registry

import (
	"fmt"
	"strings"
)

// serviceUnit renders the .service definition that runs `exe fire <id>`
// when the paired timer elapses.
func serviceUnit(exe, jobID, logPath string) string {
	var b strings.Builder
	b.WriteString("[Unit]\n")
	fmt.Fprintf(&b, "Description=pingme reminder %s\n", jobID)
	b.WriteString("\n[Service]\n")
	b.WriteString("Type=oneshot\n")
	fmt.Fprintf(&b, "ExecStart=%q fire %s\n", exe, jobID)
	if logPath != "" {
		fmt.Fprintf(&b, "StandardOutput=append:%s\n", logPath)
		fmt.Fprintf(&b, "StandardError=append:%s\n", logPath)
	}
	return b.String()
}

// timerUnit renders the .timer definition for plan.
//
// One-shot timers use OnCalendar with explicit month/day so the job
// survives reboot and still fires at the right wall-clock moment.
// Recurring timers carry OnActiveSec=0: one fire immediately on
// activation, then every interval.
func timerUnit(jobID string, plan Plan) string {
	var b strings.Builder
	b.WriteString("[Unit]\n")
	fmt.Fprintf(&b, "Description=pingme timer %s\n", jobID)
	b.WriteString("\n[Timer]\n")
	switch {
	case plan.OneShot != nil:
		p := plan.OneShot
		fmt.Fprintf(&b, "OnCalendar=*-%02d-%02d %02d:%02d:00\n", int(p.Month), p.Day, p.Hour, p.Minute)
	case plan.Recurring != nil:
		secs := int(plan.Recurring.Interval.Seconds())
		b.WriteString("OnActiveSec=0\n")
		fmt.Fprintf(&b, "OnUnitActiveSec=%ds\n", secs)
	}
	b.WriteString("AccuracySec=1s\n")
	return b.String()
}
