package platform

import "errors"

// WindowID is a platform-neutral window identifier. Zero means the platform
// did not assign one.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Layer values reported for windows. Only LayerNormal windows are switchable.
const (
	LayerNormal  = 0
	LayerPanel   = 20
	LayerDesktop = -1
)

// StickyDesktop is reported for windows shown on every desktop or when the
// window manager does not expose desktops.
const StickyDesktop = -1

// App is a running application that may own windows.
type App struct {
	PID  int
	Name string
	// Class is the WM_CLASS class (or the executable name for apps found
	// without windows).
	Class string
	// Regular apps are user-facing; background and shell components are not.
	Regular bool
	// Icon is an icon theme name, when known.
	Icon string
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID         WindowID
	PID        int
	AppID      string
	Title      string
	Bounds     Rect
	Layer      int
	Desktop    int
	Fullscreen bool
	Hidden     bool
}

// ErrAppGone is returned when an application exited during enumeration.
var ErrAppGone = errors.New("application no longer running")

// Backend abstracts window-system operations across platforms.
type Backend interface {
	// Apps returns the running applications in stacking/client-list order.
	Apps() ([]App, error)
	// WindowsForApp returns the top-level windows owned by app.
	WindowsForApp(app App) ([]Window, error)
	ActiveWindow() (WindowID, error)
	// ActivePID returns the pid owning the active window.
	ActivePID() (int, error)
	CurrentDesktop() (int, error)
	// Activate raises and focuses a window.
	Activate(windowID WindowID) error
	// Launch starts or reopens an application that has no window.
	Launch(app App) error
}
