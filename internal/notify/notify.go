// Package notify posts desktop notifications when the switcher loses or
// regains its global shortcuts.
package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/1broseidon/paneswitch/internal/permission"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = "/org/freedesktop/Notifications"
	notifyCall = busName + ".Notify"

	appName         = "paneswitch"
	defaultIcon     = "input-keyboard"
	expireTimeoutMs = 6000
)

// Sender delivers one notification. replaces is the id of a previous
// notification to update in place, or zero.
type Sender interface {
	Send(summary, body string, replaces uint32) (uint32, error)
}

// DBusSender talks to the freedesktop notification service on the session
// bus.
type DBusSender struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewDBusSender opens a private session bus connection.
func NewDBusSender() (*DBusSender, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &DBusSender{
		conn: conn,
		obj:  conn.Object(busName, dbus.ObjectPath(objectPath)),
	}, nil
}

func (s *DBusSender) Send(summary, body string, replaces uint32) (uint32, error) {
	call := s.obj.Call(notifyCall, 0,
		appName,
		replaces,
		defaultIcon,
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(1))},
		int32(expireTimeoutMs),
	)
	if call.Err != nil {
		return 0, fmt.Errorf("notify: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify reply: %w", err)
	}
	return id, nil
}

func (s *DBusSender) Close() error {
	return s.conn.Close()
}

// PermissionNotifier turns guard events into notifications. Revocation and
// restoration replace each other so the user sees at most one bubble.
type PermissionNotifier struct {
	sender Sender
	logger *slog.Logger
	async  bool

	mu   sync.Mutex
	last uint32
}

// NewPermissionNotifier returns a notifier sending through sender. A nil
// sender only logs.
func NewPermissionNotifier(sender Sender, logger *slog.Logger) *PermissionNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionNotifier{sender: sender, logger: logger, async: true}
}

// Observe is a permission.Guard subscriber. Sending happens off the
// calling goroutine.
func (n *PermissionNotifier) Observe(ev permission.Event) {
	summary, body, ok := message(ev)
	if !ok {
		return
	}
	n.logger.Info("permission state changed", "event", ev.String())
	if n.sender == nil {
		return
	}
	if n.async {
		go n.send(summary, body)
		return
	}
	n.send(summary, body)
}

func (n *PermissionNotifier) send(summary, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id, err := n.sender.Send(summary, body, n.last)
	if err != nil {
		n.logger.Warn("desktop notification failed", "error", err)
		return
	}
	n.last = id
}

func message(ev permission.Event) (summary, body string, ok bool) {
	switch ev {
	case permission.PermissionRevoked:
		return "Window switcher shortcuts disabled",
			"Another client holds the keyboard shortcuts or the X server stopped responding. Shortcuts come back automatically once they can be grabbed again.",
			true
	case permission.PermissionGranted:
		return "Window switcher shortcuts restored", "Global shortcuts are active again.", true
	default:
		return "", "", false
	}
}
