package engine

import (
	"context"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// cleanupGrace lets the firing unit's process exit before its own timer
// and service units are torn down.
const cleanupGrace = 2 * time.Second

// Fire handles a scheduler-triggered invocation for jobID. An unknown id
// is a silent no-op: the job may have been cancelled between trigger and
// fire, or this may be a duplicate invocation.
func (e *Engine) Fire(ctx context.Context, jobID string) error {
	records, err := e.store.Load()
	if err != nil {
		return err
	}
	idx := -1
	for i, r := range records {
		if r.ID == jobID {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.log.Debug().Str("id", jobID).Msg("fire for unknown job, ignoring")
		return nil
	}
	rec := records[idx]

	title := titleOneShot
	if rec.Recurring {
		title = titleRecurring
	}
	if err := e.notifier.Send(ctx, title, rec.Message); err != nil {
		e.log.Warn().Err(err).Str("id", jobID).Msg("notification display failed")
	}

	// Recurring jobs stay as they are; the scheduler keeps re-invoking.
	if rec.Recurring {
		return nil
	}

	// One-shot: retire the record, then tear down the unit this process
	// is currently running under from a detached process.
	remaining := append(records[:idx:idx], records[idx+1:]...)
	if err := e.store.Save(remaining); err != nil {
		return err
	}
	if err := e.spawn(jobID); err != nil {
		e.log.Warn().Err(err).Str("id", jobID).Msg("detached cleanup spawn failed")
	}
	return nil
}

// spawnCleanup starts `<self> cleanup <id>` in its own session with no
// parent-child lifetime coupling, so teardown survives this process
// exiting.
func (e *Engine) spawnCleanup(jobID string) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	cmd := exec.Command(exe, "cleanup", jobID)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd.Start()
}

// Cleanup is the detached half of a one-shot fire: wait out the grace
// period, then deregister the unit and delete its artifacts. Failures
// are logged, not fatal.
func (e *Engine) Cleanup(ctx context.Context, jobID string) error {
	select {
	case <-time.After(cleanupGrace):
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := e.reg.Deregister(ctx, jobID); err != nil {
		e.log.Warn().Err(err).Str("id", jobID).Msg("deregister failed")
	}
	return nil
}
