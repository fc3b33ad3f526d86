//go:build linux

package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/paneswitch/internal/x11"
)

// ErrNoLaunchCommand is returned by Launch when no command is configured
// for the application.
var ErrNoLaunchCommand = errors.New("no launch command configured")

// LinuxOptions tunes the Linux backend.
type LinuxOptions struct {
	// TrackApps are process names listed even when they have no window.
	TrackApps []string
	// LaunchCommands maps an application name to a shell command that
	// brings it to the front when it has no window.
	LaunchCommands map[string]string
}

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection

	mu      sync.Mutex
	opts    LinuxOptions
	clients map[int][]xproto.Window
	byClass map[string][]xproto.Window
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, opts LinuxOptions) *LinuxBackend {
	b := &LinuxBackend{conn: conn}
	b.Configure(opts)
	return b
}

// Configure replaces the backend options.
func (b *LinuxBackend) Configure(opts LinuxOptions) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts = opts
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Apps groups the EWMH client list by owning process, in client-list order,
// then appends tracked processes that have no window.
func (b *LinuxBackend) Apps() ([]App, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	clients, err := conn.ClientList()
	if err != nil {
		return nil, err
	}

	byPID := make(map[int][]xproto.Window)
	byClass := make(map[string][]xproto.Window)
	var apps []App
	seen := make(map[string]int)

	for _, win := range clients {
		pid := conn.PID(win)
		instance, class := conn.Class(win)
		name := class
		if name == "" {
			name = processName(pid)
		}

		// Clients without _NET_WM_PID are grouped by class.
		key := fmt.Sprintf("pid:%d", pid)
		if pid == 0 {
			key = "class:" + name
			byClass[name] = append(byClass[name], win)
		} else {
			byPID[pid] = append(byPID[pid], win)
		}

		regular := conn.Kind(win) == x11.KindNormal && !conn.State(win).SkipTaskbar
		if idx, ok := seen[key]; ok {
			apps[idx].Regular = apps[idx].Regular || regular
			continue
		}
		seen[key] = len(apps)
		apps = append(apps, App{
			PID:     pid,
			Name:    name,
			Class:   class,
			Regular: regular,
			Icon:    strings.ToLower(instance),
		})
	}

	b.mu.Lock()
	b.clients = byPID
	b.byClass = byClass
	track := append([]string(nil), b.opts.TrackApps...)
	b.mu.Unlock()

	if len(track) > 0 {
		for _, p := range scanProcesses(track) {
			if _, ok := byPID[p.PID]; ok {
				continue
			}
			apps = append(apps, App{PID: p.PID, Name: p.Name, Class: p.Name, Regular: true, Icon: strings.ToLower(p.Name)})
		}
	}
	return apps, nil
}

// WindowsForApp returns the windows recorded for app by the last Apps call.
func (b *LinuxBackend) WindowsForApp(app App) ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	var wins []xproto.Window
	if app.PID == 0 {
		wins = b.byClass[app.Name]
	} else {
		wins = b.clients[app.PID]
	}
	wins = append([]xproto.Window(nil), wins...)
	b.mu.Unlock()

	if app.PID > 0 && !processAlive(app.PID) {
		return nil, fmt.Errorf("pid %d: %w", app.PID, ErrAppGone)
	}

	windows := make([]Window, 0, len(wins))
	for _, win := range wins {
		x, y, w, h, ok := conn.Geometry(win)
		if !ok {
			// Destroyed since the client list was read.
			continue
		}
		state := conn.State(win)
		desktop, err := conn.WindowDesktop(win)
		if err != nil || state.Sticky {
			desktop = StickyDesktop
		}
		_, class := conn.Class(win)
		windows = append(windows, Window{
			ID:         WindowID(win),
			PID:        app.PID,
			AppID:      class,
			Title:      conn.Title(win),
			Bounds:     Rect{X: x, Y: y, Width: w, Height: h},
			Layer:      layerFor(conn.Kind(win), state),
			Desktop:    desktop,
			Fullscreen: state.Fullscreen,
			Hidden:     state.Hidden,
		})
	}
	return windows, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	wid, err := conn.ActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// ActivePID returns the pid owning the active window, or 0.
func (b *LinuxBackend) ActivePID() (int, error) {
	wid, err := b.ActiveWindow()
	if err != nil || wid == 0 {
		return 0, err
	}
	return b.conn.PID(xproto.Window(wid)), nil
}

// CurrentDesktop returns the current virtual desktop.
func (b *LinuxBackend) CurrentDesktop() (int, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	return conn.CurrentDesktop()
}

// Activate raises and focuses a window.
func (b *LinuxBackend) Activate(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.ActivateWindow(xproto.Window(windowID))
}

// Launch runs the configured launch command for app. The command runs
// detached through sh and is reaped in the background.
func (b *LinuxBackend) Launch(app App) error {
	b.mu.Lock()
	command := lookupFold(b.opts.LaunchCommands, app.Name)
	b.mu.Unlock()
	if command == "" {
		return fmt.Errorf("%s: %w", app.Name, ErrNoLaunchCommand)
	}

	cmd := exec.Command("sh", "-c", command)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %s: %w", app.Name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Screens returns the monitor geometry.
func (b *LinuxBackend) Screens() ([]Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	monitors, err := conn.Monitors()
	if err != nil {
		return nil, err
	}
	screens := make([]Rect, 0, len(monitors))
	for _, m := range monitors {
		screens = append(screens, Rect{X: m.Bounds.X, Y: m.Bounds.Y, Width: m.Bounds.Width, Height: m.Bounds.Height})
	}
	return screens, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func layerFor(kind x11.WindowKind, state x11.WindowState) int {
	switch {
	case kind == x11.KindDesktop:
		return LayerDesktop
	case kind != x11.KindNormal, state.SkipTaskbar:
		return LayerPanel
	default:
		return LayerNormal
	}
}

func lookupFold(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
