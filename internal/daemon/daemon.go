// Package daemon wires the switcher components together and runs them on
// a single main flow.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/paneswitch/internal/catalog"
	"github.com/1broseidon/paneswitch/internal/config"
	"github.com/1broseidon/paneswitch/internal/gesture"
	"github.com/1broseidon/paneswitch/internal/hotkeys"
	"github.com/1broseidon/paneswitch/internal/input"
	"github.com/1broseidon/paneswitch/internal/ipc"
	"github.com/1broseidon/paneswitch/internal/mainflow"
	"github.com/1broseidon/paneswitch/internal/mru"
	"github.com/1broseidon/paneswitch/internal/notify"
	"github.com/1broseidon/paneswitch/internal/permission"
	"github.com/1broseidon/paneswitch/internal/platform"
	"github.com/1broseidon/paneswitch/internal/quickswitch"
	"github.com/1broseidon/paneswitch/internal/runtimepath"
	"github.com/1broseidon/paneswitch/internal/search"
	"github.com/1broseidon/paneswitch/internal/switcher"
	"github.com/1broseidon/paneswitch/internal/x11"
)

const queueSize = 256

// inputTap is the part of the X11 tap the daemon drives directly.
type inputTap interface {
	Configure(hotkeys.Config) error
	Enabled() bool
	Trusted() bool
	SetCapture(on bool)
}

// Options configures a daemon.
type Options struct {
	// Config is the initial configuration, usually from config.LoadWithSources.
	Config *config.LoadResult
	Logger *slog.Logger
	// Notifications enables desktop notifications on permission changes.
	Notifications bool
}

// Daemon owns every long-lived component. Fields marked main-flow are only
// touched from functions running on the queue.
type Daemon struct {
	runID   string
	started time.Time
	logger  *slog.Logger

	cfgPath  string
	cfgFiles []string
	cfg      *config.Config // main-flow

	queue       *mainflow.Queue
	conn        *x11.Connection
	backend     *platform.LinuxBackend
	builder     *catalog.Builder
	refresher   *catalog.Refresher
	tracker     *mru.Tracker // main-flow
	engine      *search.Engine
	controller  *switcher.Controller // main-flow
	machine     *quickswitch.Machine // main-flow
	guard       *permission.Guard
	monitor     *permission.Monitor
	interceptor *input.Interceptor
	tap         inputTap
	panel       *x11.Panel
	notifier    *notify.PermissionNotifier
	sender      *notify.DBusSender
}

// New connects to the X server and builds every component. Nothing runs
// until Run is called.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil || opts.Config.Config == nil {
		return nil, fmt.Errorf("daemon: no configuration")
	}
	cfg := opts.Config.Config
	runID := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run", runID)

	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
	conn, err := x11.NewConnection(cfg.Display)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		runID:    runID,
		started:  time.Now(),
		logger:   logger,
		cfgPath:  opts.Config.Path,
		cfgFiles: opts.Config.Files,
		cfg:      cfg,
		queue:    mainflow.NewQueue(queueSize, logger),
		conn:     conn,
		panel:    x11.NewPanel(conn),
		engine:   search.New(),
		tracker:  mru.New(os.Getpid()),
	}
	d.engine.AcronymBonus = cfg.AcronymBonus
	d.backend = platform.NewLinuxBackend(conn, linuxOptions(cfg))
	d.builder = catalog.NewBuilder(d.backend, builderOptions(cfg, logger))

	presenter := newPanelPresenter(d.panel, pointerWorkArea(conn), logger)
	activator := &windowActivator{backend: d.backend, tracker: d.tracker, logger: logger}
	d.controller = switcher.NewController(d.builder, d.tracker, d.engine, activator, presenter, switcher.Options{
		SidebarEdge:    cfg.SidebarEdge,
		CurrentDesktop: d.currentDesktop,
		Logger:         logger,
	})
	d.machine = quickswitch.New(d.controller, mainflow.RealClock(), d.queue, cfg.QuickSwitchDelay(), logger)

	d.guard = permission.NewGuard(permission.CheckerFunc(d.tapTrusted), cfg.PermissionCacheTTL(), nil, logger)
	d.interceptor = input.NewInterceptor(interceptorConfig(cfg), d.guard, nil, d.queue, d.handleCommand, logger)
	tap, err := hotkeys.NewTap(conn, d.interceptor, tapConfig(cfg), d.onKey)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("input tap: %w", err)
	}
	d.tap = tap
	d.interceptor.SetTap(tap)
	d.guard.OnRevoke(d.interceptor.Disable)
	d.guard.OnGrant(d.interceptor.Enable)

	var sender notify.Sender
	if opts.Notifications {
		s, err := notify.NewDBusSender()
		if err != nil {
			logger.Warn("desktop notifications unavailable", "error", err)
		} else {
			d.sender, sender = s, s
		}
	}
	d.notifier = notify.NewPermissionNotifier(sender, logger)
	d.guard.Subscribe(d.notifier.Observe)

	d.refresher = catalog.NewRefresher(catalog.RefresherConfig{
		Interval: cfg.RefreshInterval(),
		Logger:   logger,
	}, d.builder, d.queue, d.publish)
	d.monitor = permission.NewMonitor(permission.MonitorConfig{Logger: logger}, d.guard, d.queue)

	return d, nil
}

// Run starts every loop and blocks until ctx is cancelled or a termination
// signal arrives.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return fmt.Errorf("resolve IPC socket path: %w", err)
	}
	server := ipc.NewServer(socketPath, &ipcHandler{d: d}, d.logger)
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	d.seedMRU()
	d.updateScreens()
	if err := d.conn.WatchRootProperties(d.onRootProperty,
		"_NET_ACTIVE_WINDOW", "_NET_CLIENT_LIST", "_NET_WORKAREA"); err != nil {
		d.logger.Warn("cannot watch root window properties", "error", err)
	}
	d.interceptor.Start()

	go d.queue.Run(ctx)
	d.queue.Post(d.refresher.RefreshNow)
	go d.refresher.Run(ctx)
	go d.monitor.Run(ctx)

	if d.cfgPath != "" {
		watcher, err := config.NewWatcher(config.WatcherConfig{
			Path:   d.cfgPath,
			Logger: d.logger,
			OnReload: func(res *config.LoadResult) {
				d.queue.Post(func() { d.apply(res.Config) })
			},
		}, d.cfgFiles)
		if err != nil {
			d.logger.Warn("config watcher unavailable", "error", err)
		} else {
			go watcher.Run(ctx)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					d.logger.Info("received SIGHUP, reloading config")
					d.queue.Post(func() {
						if err := d.reload(); err != nil {
							d.logger.Warn("config reload failed", "error", err)
						}
					})
					continue
				}
				d.logger.Info("shutting down", "signal", sig.String())
				cancel()
				return
			}
		}
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		d.conn.EventLoop()
	}()

	d.logger.Info("paneswitch daemon started", "socket", socketPath)
	select {
	case <-ctx.Done():
	case <-loopDone:
		d.logger.Error("X event loop exited")
		cancel()
	}

	d.shutdown()
	return nil
}

func (d *Daemon) shutdown() {
	d.interceptor.Disable()
	d.panel.Destroy()
	d.conn.Quit()
	d.conn.Close()
	if d.sender != nil {
		d.sender.Close()
	}
	d.logger.Info("paneswitch daemon stopped", "uptime", time.Since(d.started).Round(time.Second))
}

func (d *Daemon) tapTrusted() bool {
	return d.tap != nil && d.tap.Trusted()
}

// handleCommand runs on the main flow for every intercepted command.
func (d *Daemon) handleCommand(cmd input.Command) {
	d.logger.Debug("input command", "kind", cmd.Kind)
	switch cmd.Kind {
	case input.TabPressed:
		d.machine.TabPressed(cmd.Shift)
	case input.CommandReleased:
		d.machine.CommandReleased()
	case input.EscapePressed:
		d.machine.EscapePressed()
	case input.ShowSearchSwitcher:
		d.machine.ToggleSearch()
	case input.EdgeScrollDetected:
		d.edgeScroll(cmd.Gesture)
	}
	d.syncCapture()
}

// edgeScroll opens the sidebar on the scrolled edge, or moves the
// selection when the sidebar is already open.
func (d *Daemon) edgeScroll(g gesture.Event) {
	if d.controller.IsVisible() && d.controller.Mode() == switcher.ModeSidebar {
		switch g.Direction {
		case gesture.DirectionUp, gesture.DirectionLeft:
			d.controller.SelectPrevious()
		default:
			d.controller.SelectNext()
		}
		return
	}
	edge := ""
	switch g.Edge {
	case gesture.EdgeLeft, gesture.EdgeRight:
		edge = g.Edge.String()
	}
	d.controller.ShowAt(switcher.ModeSidebar, edge)
}

// onKey receives captured keys on the X event loop.
func (d *Daemon) onKey(ev hotkeys.KeyEvent) {
	d.queue.Post(func() {
		handleKey(d.controller, ev)
		d.syncCapture()
	})
}

// syncCapture holds the keyboard while a switch is in progress or the
// switcher is visible.
func (d *Daemon) syncCapture() {
	if d.tap == nil {
		return
	}
	d.tap.SetCapture(d.machine.State() != quickswitch.Idle || d.controller.IsVisible())
}

// publish installs a refreshed catalog snapshot.
func (d *Daemon) publish(records []catalog.Record) {
	live := make(map[int64]struct{}, len(records))
	pids := make(map[int]struct{}, len(records))
	for _, r := range records {
		live[r.ID] = struct{}{}
		pids[r.PID] = struct{}{}
	}
	for _, pid := range d.tracker.Order() {
		if _, ok := pids[pid]; !ok {
			d.tracker.Terminated(pid)
		}
	}
	d.tracker.Forget(live)
	d.controller.UpdateSnapshot(records)

	if faults := d.builder.Faults(); len(faults) > 0 {
		for _, f := range faults {
			d.logger.Debug("catalog enumeration fault", "app", f.App, "pid", f.PID, "error", f.Cause())
		}
	}
}

// onRootProperty runs on the X event loop.
func (d *Daemon) onRootProperty(name string) {
	switch name {
	case "_NET_ACTIVE_WINDOW":
		d.queue.Post(d.recordActiveWindow)
	case "_NET_CLIENT_LIST":
		d.queue.Post(d.refresher.RefreshNow)
	case "_NET_WORKAREA":
		d.updateScreens()
	}
}

func (d *Daemon) recordActiveWindow() {
	wid, err := d.backend.ActiveWindow()
	if err != nil || wid == 0 {
		return
	}
	pid, err := d.backend.ActivePID()
	if err != nil || pid == 0 {
		return
	}
	d.tracker.WindowActivated(pid, int64(wid))
}

func (d *Daemon) seedMRU() {
	apps, err := d.backend.Apps()
	if err != nil {
		d.logger.Warn("cannot seed recently used order", "error", err)
		return
	}
	others := make([]int, 0, len(apps))
	for _, app := range apps {
		others = append(others, app.PID)
	}
	front, _ := d.backend.ActivePID()
	d.tracker.Seed(front, others)
}

func (d *Daemon) updateScreens() {
	screens, err := d.backend.Screens()
	if err != nil {
		d.logger.Warn("cannot read monitor geometry", "error", err)
		return
	}
	d.interceptor.SetScreens(screens)
}

func (d *Daemon) currentDesktop() int {
	if d.backend == nil {
		return -1
	}
	desktop, err := d.backend.CurrentDesktop()
	if err != nil {
		return -1
	}
	return desktop
}

// reload re-reads the configuration file and applies it.
func (d *Daemon) reload() error {
	path := d.cfgPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return err
	}
	d.apply(res.Config)
	return nil
}

// apply pushes cfg into every component. Display and XAuthority changes
// need a restart.
func (d *Daemon) apply(cfg *config.Config) {
	if d.cfg != nil && (d.cfg.Display != cfg.Display || d.cfg.XAuthority != cfg.XAuthority) {
		d.logger.Warn("display and xauthority changes take effect after a restart")
	}
	d.cfg = cfg

	if d.backend != nil {
		d.backend.Configure(linuxOptions(cfg))
	}
	if d.builder != nil {
		d.builder.Configure(builderOptions(cfg, d.logger))
	}
	d.controller.SetSidebarEdge(cfg.SidebarEdge)
	d.controller.SetAcronymBonus(cfg.AcronymBonus)
	d.machine.SetDelay(cfg.QuickSwitchDelay())
	d.guard.SetTTL(cfg.PermissionCacheTTL())
	if d.interceptor != nil {
		d.interceptor.Configure(interceptorConfig(cfg))
	}
	if d.tap != nil {
		if err := d.tap.Configure(tapConfig(cfg)); err != nil {
			d.logger.Warn("cannot apply shortcut configuration", "error", err)
			d.guard.ForceRecheck()
		}
	}
	d.logger.Info("config applied",
		"quick_switch_delay", cfg.QuickSwitchDelay(),
		"sidebar_edge", cfg.SidebarEdge,
		"gestures", cfg.EnableGestures)
}

func linuxOptions(cfg *config.Config) platform.LinuxOptions {
	return platform.LinuxOptions{
		TrackApps:      cfg.TrackApps,
		LaunchCommands: cfg.LaunchCommands,
	}
}

func builderOptions(cfg *config.Config, logger *slog.Logger) catalog.Options {
	return catalog.Options{
		ExcludeApps:   cfg.ExcludeApps,
		HideMinimized: !cfg.ShowMinimizedWindows,
		SelfPID:       os.Getpid(),
		Logger:        logger,
	}
}

func interceptorConfig(cfg *config.Config) input.Config {
	return input.Config{
		EnableCommandTab:   cfg.EnableCommandTabOverride,
		EnableControlSpace: cfg.EnableControlSpace,
		EnableGestures:     cfg.EnableGestures,
		Gesture: gesture.Config{
			EdgeThreshold:    cfg.GestureEdgeThreshold,
			TriggerThreshold: cfg.GestureTriggerThreshold,
		},
	}
}

func tapConfig(cfg *config.Config) hotkeys.Config {
	return hotkeys.Config{
		CycleModifier: cfg.CycleModifier,
		CommandTab:    cfg.EnableCommandTabOverride,
		ControlSpace:  cfg.EnableControlSpace,
		Gestures:      cfg.EnableGestures,
	}
}
