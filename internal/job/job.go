// Package job defines the persisted reminder record.
package job

import (
	"strings"
	"time"
)

// Record is the sole persisted entity: one scheduled notification,
// one-shot or recurring.
//
// Time is the first (recurring) or only (one-shot) fire time and is never
// updated after creation. Records are removed, never mutated in place.
type Record struct {
	ID        string    `yaml:"id"`
	Message   string    `yaml:"message"`
	Time      time.Time `yaml:"time"`
	Created   time.Time `yaml:"created"`
	Recurring bool      `yaml:"recurring"`
	Interval  int       `yaml:"interval,omitempty"` // seconds, recurring only
}

// Valid reports whether the record is well-formed enough to keep.
// The store drops invalid records on load instead of failing the whole
// snapshot.
func (r Record) Valid() bool {
	if strings.TrimSpace(r.ID) == "" || r.Time.IsZero() {
		return false
	}
	if r.Recurring && r.Interval <= 0 {
		return false
	}
	return true
}

func (r Record) IntervalDuration() time.Duration {
	return time.Duration(r.Interval) * time.Second
}
