package registry

import (
	"strings"
	"testing"
	"time"
)

func TestServiceUnitInvokesFire(t *testing.T) {
	t.Parallel()
	got := serviceUnit("/usr/local/bin/pingme", "a1b2c3d4", "/home/u/.pingme/pingme.log")

	for _, want := range []string{
		"Type=oneshot",
		`ExecStart="/usr/local/bin/pingme" fire a1b2c3d4`,
		"StandardOutput=append:/home/u/.pingme/pingme.log",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("service unit missing %q:\n%s", want, got)
		}
	}
}

func TestServiceUnitWithoutLogPath(t *testing.T) {
	t.Parallel()
	got := serviceUnit("/bin/pingme", "a1b2c3d4", "")
	if strings.Contains(got, "StandardOutput") {
		t.Fatalf("unexpected log redirection:\n%s", got)
	}
}

func TestTimerUnitOneShot(t *testing.T) {
	t.Parallel()
	got := timerUnit("a1b2c3d4", Plan{OneShot: &CalendarPlan{
		Month:  time.March,
		Day:    7,
		Hour:   9,
		Minute: 5,
	}})
	if !strings.Contains(got, "OnCalendar=*-03-07 09:05:00") {
		t.Fatalf("timer unit missing calendar line:\n%s", got)
	}
	if strings.Contains(got, "OnActiveSec") {
		t.Fatalf("one-shot timer should not carry interval lines:\n%s", got)
	}
}

func TestTimerUnitRecurring(t *testing.T) {
	t.Parallel()
	got := timerUnit("a1b2c3d4", Plan{Recurring: &IntervalPlan{Interval: 90 * time.Minute}})

	for _, want := range []string{"OnActiveSec=0", "OnUnitActiveSec=5400s"} {
		if !strings.Contains(got, want) {
			t.Fatalf("timer unit missing %q:\n%s", want, got)
		}
	}
}

func TestUnitBase(t *testing.T) {
	t.Parallel()
	if got := UnitBase("pingme", "ab12cd34"); got != "pingme-ab12cd34" {
		t.Fatalf("UnitBase = %q", got)
	}
}
