package engine

import (
	"context"
	"fmt"
	"strings"

	"pingme/internal/job"
)

// Cancel removes every job whose id starts with identifier
// (case-sensitive) or whose message contains it (case-insensitive).
// Matches are deregistered and dropped from the store in one rewrite;
// zero matches yields ErrNoMatch.
func (e *Engine) Cancel(ctx context.Context, identifier string) ([]job.Record, error) {
	records, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(identifier)
	var cancelled, remaining []job.Record
	for _, r := range records {
		if strings.HasPrefix(r.ID, identifier) || strings.Contains(strings.ToLower(r.Message), needle) {
			cancelled = append(cancelled, r)
		} else {
			remaining = append(remaining, r)
		}
	}
	if len(cancelled) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, identifier)
	}

	for _, r := range cancelled {
		if err := e.reg.Deregister(ctx, r.ID); err != nil {
			e.log.Warn().Err(err).Str("id", r.ID).Msg("deregister failed")
		}
	}
	if err := e.store.Save(remaining); err != nil {
		return nil, err
	}
	return cancelled, nil
}

// ClearAll removes every stored job and its registration, and reports
// how many were cleared.
func (e *Engine) ClearAll(ctx context.Context) (int, error) {
	records, err := e.store.Load()
	if err != nil {
		return 0, err
	}
	for _, r := range records {
		if err := e.reg.Deregister(ctx, r.ID); err != nil {
			e.log.Warn().Err(err).Str("id", r.ID).Msg("deregister failed")
		}
	}
	if err := e.store.Save(nil); err != nil {
		return 0, err
	}
	return len(records), nil
}
