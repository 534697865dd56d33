// Package timeparse turns user-supplied duration and wall-clock strings
// into absolute fire times.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseError reports unparseable duration or time input.
type ParseError struct {
	Kind  string // "duration" or "time"
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s: %q", e.Kind, e.Input)
}

var durationToken = regexp.MustCompile(`(\d+)\s*([hms])`)

// Duration parses strings like "30m", "1h30m" or "90m": one or more
// <int><unit> tokens (h/m/s, case-insensitive, whitespace tolerated),
// summed. A string with no unit tokens falls back to a bare integer
// second count.
func Duration(s string) (time.Duration, error) {
	matches := durationToken.FindAllStringSubmatch(strings.ToLower(s), -1)
	if len(matches) > 0 {
		var total time.Duration
		for _, m := range matches {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, &ParseError{Kind: "duration", Input: s}
			}
			switch m[2] {
			case "h":
				total += time.Duration(n) * time.Hour
			case "m":
				total += time.Duration(n) * time.Minute
			case "s":
				total += time.Duration(n) * time.Second
			}
		}
		return total, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &ParseError{Kind: "duration", Input: s}
	}
	return time.Duration(n) * time.Second, nil
}

// clockLayouts are tried in order: 24-hour, 12-hour with minutes,
// 12-hour bare hour.
var clockLayouts = []string{"15:04", "3:04pm", "3pm"}

// Clock parses a wall-clock time ("17:30", "5:30pm", "5pm") against the
// date of now, seconds zeroed. A result at or before now is advanced by
// one day: always schedule the next future occurrence, never
// today-in-the-past.
func Clock(s string, now time.Time) (time.Time, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, in)
		if err != nil {
			continue
		}
		at := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return at, nil
	}
	return time.Time{}, &ParseError{Kind: "time", Input: s}
}
