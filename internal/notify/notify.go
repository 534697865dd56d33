// Package notify renders system-level desktop notifications.
package notify

import (
	"context"
	"strings"
)

// Notifier displays one notification. Implementations receive
// already-escaped text via Send; escaping user input is this package's
// responsibility, not the caller's.
type Notifier interface {
	Send(ctx context.Context, title, message string) error
}

// Notification servers interpret the body as limited XML markup, and
// some forward it through shell-ish render paths, so markup characters
// are entity-escaped and backslashes doubled before hand-off.
var bodyEscaper = strings.NewReplacer(
	`\`, `\\`,
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeBody(s string) string { return bodyEscaper.Replace(s) }
