package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	notifyBus    = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
)

// Desktop sends notifications over the session bus via
// org.freedesktop.Notifications.
type Desktop struct {
	AppName string
	Icon    string
	Timeout time.Duration // 0 leaves expiry to the server
}

func (d *Desktop) Send(ctx context.Context, title, message string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}

	expiry := int32(-1)
	if d.Timeout > 0 {
		expiry = int32(d.Timeout.Milliseconds())
	}
	obj := conn.Object(notifyBus, notifyPath)
	call := obj.CallWithContext(ctx, notifyMethod, 0,
		d.AppName,
		uint32(0), // no notification replaced
		d.Icon,
		escapeBody(title),
		escapeBody(message),
		[]string{},
		map[string]dbus.Variant{},
		expiry,
	)
	if call.Err != nil {
		return fmt.Errorf("display notification: %w", call.Err)
	}
	return nil
}
