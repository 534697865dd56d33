package engine

import (
	"context"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"pingme/internal/job"
)

// Entry is one pending job plus presentation metadata.
type Entry struct {
	job.Record
	Next time.Time // next expected fire; recurring only
}

// Listing groups pending jobs: one-shot by ascending fire time, then
// recurring.
type Listing struct {
	OneShot   []Entry
	Recurring []Entry
}

func (l Listing) Empty() bool { return len(l.OneShot) == 0 && len(l.Recurring) == 0 }

// List reconciles the store against live scheduler state and returns the
// surviving jobs. Pruning is persisted: a record whose registration has
// vanished is dropped from the store, not just hidden.
func (e *Engine) List(ctx context.Context) (Listing, error) {
	records, err := e.store.Load()
	if err != nil {
		return Listing{}, err
	}
	now := e.now()

	kept := records[:0]
	for _, r := range records {
		if e.live(ctx, r, now) {
			kept = append(kept, r)
		} else {
			e.log.Debug().Str("id", r.ID).Msg("pruning stale job")
		}
	}
	if err := e.store.Save(kept); err != nil {
		return Listing{}, err
	}

	var out Listing
	for _, r := range kept {
		if r.Recurring {
			next := cron.Every(r.IntervalDuration()).Next(now)
			out.Recurring = append(out.Recurring, Entry{Record: r, Next: next})
		} else {
			out.OneShot = append(out.OneShot, Entry{Record: r})
		}
	}
	sort.Slice(out.OneShot, func(i, j int) bool {
		return out.OneShot[i].Time.Before(out.OneShot[j].Time)
	})
	return out, nil
}

// live applies the reconciliation policy: a recurring job must still be
// registered; a one-shot job survives on a future fire time or a still
// active unit (the latter covers in-flight firing).
func (e *Engine) live(ctx context.Context, r job.Record, now time.Time) bool {
	if !r.Recurring && r.Time.After(now) {
		return true
	}
	active, err := e.reg.IsActive(ctx, r.ID)
	if err != nil {
		// Treated as inactive: an unreachable scheduler cannot vouch for
		// the unit, same as the reference behavior.
		e.log.Debug().Err(err).Str("id", r.ID).Msg("liveness query failed")
		return false
	}
	return active
}
