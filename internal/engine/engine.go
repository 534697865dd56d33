// Package engine implements scheduling, firing, reconciliation and
// cancellation of notification jobs.
//
// The engine has no internal concurrency: every CLI invocation is one
// short-lived, single-threaded pass over durable state. The store file
// and the external scheduler are the only shared state, and listing
// repairs any divergence between them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pingme/internal/job"
	"pingme/internal/notify"
	"pingme/internal/registry"
	"pingme/internal/store"
)

// MinInterval is the shortest accepted recurring interval.
const MinInterval = time.Minute

var (
	// ErrIntervalTooShort rejects recurring intervals under MinInterval.
	ErrIntervalTooShort = errors.New("minimum interval is 1 minute")

	// ErrNoMatch means a cancel target matched no stored job.
	ErrNoMatch = errors.New("no reminder found matching")
)

const (
	titleOneShot   = "⏰ Ping"
	titleRecurring = "🔁 Ping"
)

// Engine drives the job store and the persistent registry together.
type Engine struct {
	store    *store.Store
	reg      registry.Registry
	notifier notify.Notifier
	log      zerolog.Logger
	now      func() time.Time
	spawn    func(jobID string) error // detached cleanup launcher
}

func New(st *store.Store, reg registry.Registry, n notify.Notifier, log zerolog.Logger) *Engine {
	e := &Engine{store: st, reg: reg, notifier: n, log: log, now: time.Now}
	e.spawn = e.spawnCleanup
	return e
}

// Scheduled reports the outcome of a schedule call.
type Scheduled struct {
	ID        string
	At        time.Time
	Delay     time.Duration
	Immediate bool // fire time was now/past; displayed, nothing persisted
}

// Notify displays a notification immediately, outside any schedule.
func (e *Engine) Notify(ctx context.Context, message string) error {
	return e.notifier.Send(ctx, titleOneShot, message)
}

// ScheduleOnce arms a one-shot job for at. A fire time at or before now
// short-circuits: the notification is displayed immediately and neither
// a record nor a registration is created.
func (e *Engine) ScheduleOnce(ctx context.Context, at time.Time, message string) (Scheduled, error) {
	now := e.now()
	delay := at.Sub(now)
	if delay <= 0 {
		if err := e.notifier.Send(ctx, titleOneShot, message); err != nil {
			return Scheduled{}, err
		}
		return Scheduled{Immediate: true}, nil
	}

	records, err := e.store.Load()
	if err != nil {
		return Scheduled{}, err
	}
	id := newID(records)

	plan := registry.Plan{OneShot: &registry.CalendarPlan{
		Month:  at.Month(),
		Day:    at.Day(),
		Hour:   at.Hour(),
		Minute: at.Minute(),
	}}
	if err := e.reg.Register(ctx, id, plan); err != nil {
		return Scheduled{}, fmt.Errorf("schedule reminder: %w", err)
	}

	records = append(records, job.Record{
		ID:      id,
		Message: message,
		Time:    at,
		Created: now,
	})
	if err := e.persistAfterRegister(ctx, id, records); err != nil {
		return Scheduled{}, err
	}
	e.log.Debug().Str("id", id).Time("at", at).Msg("one-shot scheduled")
	return Scheduled{ID: id, At: at, Delay: delay}, nil
}

// ScheduleRecurring arms a job firing every interval. The registration
// also fires once immediately; that first fire is documented behavior,
// not a bug. The stored fire time is informational only.
func (e *Engine) ScheduleRecurring(ctx context.Context, interval time.Duration, message string) (Scheduled, error) {
	if interval < MinInterval {
		return Scheduled{}, ErrIntervalTooShort
	}

	records, err := e.store.Load()
	if err != nil {
		return Scheduled{}, err
	}
	id := newID(records)

	plan := registry.Plan{Recurring: &registry.IntervalPlan{Interval: interval}}
	if err := e.reg.Register(ctx, id, plan); err != nil {
		return Scheduled{}, fmt.Errorf("schedule recurring reminder: %w", err)
	}

	now := e.now()
	records = append(records, job.Record{
		ID:        id,
		Message:   message,
		Time:      now,
		Created:   now,
		Recurring: true,
		Interval:  int(interval / time.Second),
	})
	if err := e.persistAfterRegister(ctx, id, records); err != nil {
		return Scheduled{}, err
	}
	e.log.Debug().Str("id", id).Dur("interval", interval).Msg("recurring scheduled")
	return Scheduled{ID: id, At: now, Delay: interval}, nil
}

// persistAfterRegister writes the store after a successful registration.
// If the write fails the fresh unit is torn down again so the "store
// entry implies registration" invariant cannot invert into an orphan.
func (e *Engine) persistAfterRegister(ctx context.Context, id string, records []job.Record) error {
	if err := e.store.Save(records); err != nil {
		if derr := e.reg.Deregister(ctx, id); derr != nil {
			e.log.Warn().Err(derr).Str("id", id).Msg("deregister after failed save")
		}
		return err
	}
	return nil
}

// newID returns a short opaque id not colliding with any stored record.
func newID(records []job.Record) string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		taken := false
		for _, r := range records {
			if r.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}
