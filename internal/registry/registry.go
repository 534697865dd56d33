// Package registry arms jobs with the OS's persistent scheduler.
//
// The scheduler is modeled as a small capability interface so the engine
// never assumes a specific mechanism; the shipped implementation uses
// systemd user timers over D-Bus. A unit, once activated, invokes
// `pingme fire <job-id>` at the scheduled time(s) with no pingme process
// resident.
package registry

import (
	"context"
	"fmt"
	"time"
)

// CalendarPlan fires once when the wall clock matches the given fields.
type CalendarPlan struct {
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

// IntervalPlan fires every Interval, and once immediately upon
// registration. The immediate fire is intentional; the fire handler must
// tolerate it.
type IntervalPlan struct {
	Interval time.Duration
}

// Plan describes when a job's unit should fire. Exactly one field is set.
type Plan struct {
	OneShot   *CalendarPlan
	Recurring *IntervalPlan
}

// Registry is the capability surface of the external persistent
// scheduler.
type Registry interface {
	// Register creates and activates a scheduler unit for jobID. On
	// failure no partial registration remains observable.
	Register(ctx context.Context, jobID string, plan Plan) error

	// Deregister deactivates and removes the unit and its definition
	// artifacts. A unit that is not currently active is not an error.
	Deregister(ctx context.Context, jobID string) error

	// IsActive reports whether a unit for jobID is currently loaded and
	// active.
	IsActive(ctx context.Context, jobID string) (bool, error)
}

// UnitBase returns the unit base name for a job: <prefix>-<id>.
func UnitBase(prefix, jobID string) string {
	return fmt.Sprintf("%s-%s", prefix, jobID)
}
