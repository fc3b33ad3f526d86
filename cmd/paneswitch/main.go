package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/1broseidon/paneswitch/internal/config"
	"github.com/1broseidon/paneswitch/internal/daemon"
	"github.com/1broseidon/paneswitch/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "show":
		os.Exit(runShow(os.Args[2:], false))
	case "toggle":
		os.Exit(runShow(os.Args[2:], true))
	case "hide":
		os.Exit(runSimple("hide", os.Args[2:], func(c *ipc.Client) error { return c.Hide() }))
	case "reload":
		os.Exit(runSimple("reload", os.Args[2:], func(c *ipc.Client) error { return c.Reload() }))
	case "recheck":
		os.Exit(runRecheck(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "search":
		os.Exit(runSearch(os.Args[2:]))
	case "activate":
		os.Exit(runActivate(os.Args[2:]))
	case "pick":
		os.Exit(runPick(os.Args[2:]))
	case "settings":
		os.Exit(runSettings(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: paneswitch <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the switcher daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  show                Show the switcher (--search, --sidebar)")
	fmt.Fprintln(w, "  toggle              Show or hide the switcher")
	fmt.Fprintln(w, "  hide                Hide the switcher")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  list                List windows in recently-used order")
	fmt.Fprintln(w, "  search <query>      Fuzzy-search windows")
	fmt.Fprintln(w, "  activate <id>       Activate a window by id")
	fmt.Fprintln(w, "  pick                Pick a window in the terminal")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "  recheck             Re-check input capture permission")
	fmt.Fprintln(w, "  settings            Edit settings interactively")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config path         Print the config file path")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
}

// newLogger returns the stderr text logger used by every command.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/paneswitch/config.yaml)")
	notifications := fs.Bool("notify", true, "Show a desktop notification when input capture is lost or regained")
	debug := fs.Bool("debug", false, "Log at debug level regardless of log_level")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: paneswitch daemon [--path PATH] [--notify=false] [--debug]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	level := res.Config.SlogLevel()
	if *debug {
		level = slog.LevelDebug
	}
	logger := newLogger(level)
	logger.Info("configuration loaded", "path", res.Path, "files", len(res.Files))

	d, err := daemon.New(daemon.Options{Config: res, Logger: logger, Notifications: *notifications})
	if err != nil {
		logger.Error("failed to start daemon", "error", err)
		return 1
	}
	if err := d.Run(context.Background()); err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(os.Stderr, "paneswitch daemon is already running")
			return 1
		}
		logger.Error("daemon stopped with error", "error", err)
		return 1
	}
	return 0
}

func runShow(args []string, toggle bool) int {
	name := "show"
	if toggle {
		name = "toggle"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	searchMode := fs.Bool("search", false, "Open with the search field focused")
	sidebar := fs.Bool("sidebar", false, "Open as an edge sidebar")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: paneswitch %s [--search|--sidebar]\n", name)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *searchMode && *sidebar {
		fmt.Fprintln(os.Stderr, "--search and --sidebar are mutually exclusive")
		return 2
	}
	mode := "switcher"
	switch {
	case *searchMode:
		mode = "search"
	case *sidebar:
		mode = "sidebar"
	}

	client := ipc.NewClient()
	if toggle {
		return exitOnError(client.Toggle(mode))
	}
	return exitOnError(client.Show(mode))
}

func runSimple(name string, args []string, fn func(*ipc.Client) error) int {
	if len(args) > 0 {
		if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
			fmt.Fprintf(os.Stdout, "Usage: paneswitch %s\n", name)
			return 0
		}
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		return 2
	}
	return exitOnError(fn(ipc.NewClient()))
}

func runRecheck(args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: paneswitch recheck")
		return 2
	}
	trusted, err := ipc.NewClient().Recheck()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !trusted {
		fmt.Println("input capture: denied")
		return 1
	}
	fmt.Println("input capture: granted")
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: paneswitch status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().Status()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(os.Stdout, status)
	}
	printStatus(os.Stdout, status)
	return 0
}

func printStatus(w io.Writer, status *ipc.StatusData) {
	fmt.Fprintf(w, "daemon_running: %v\n", status.DaemonRunning)
	fmt.Fprintf(w, "run_id:         %s\n", status.RunID)
	fmt.Fprintf(w, "uptime_seconds: %d\n", status.UptimeSeconds)
	fmt.Fprintf(w, "trusted:        %v\n", status.Trusted)
	fmt.Fprintf(w, "tap_enabled:    %v\n", status.TapEnabled)
	fmt.Fprintf(w, "visible:        %v\n", status.Visible)
	fmt.Fprintf(w, "mode:           %s\n", status.Mode)
	if status.Query != "" {
		fmt.Fprintf(w, "query:          %s\n", status.Query)
	}
	fmt.Fprintf(w, "quick_switch:   %s\n", status.QuickSwitch)
	fmt.Fprintf(w, "windows:        %d\n", status.Windows)
	if status.Dropped > 0 {
		fmt.Fprintf(w, "dropped_events: %d\n", status.Dropped)
	}
	if status.ConfigPath != "" {
		fmt.Fprintf(w, "config:         %s\n", status.ConfigPath)
	}
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print windows as JSON")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	windows, err := ipc.NewClient().List()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(os.Stdout, windows)
	}
	printWindows(os.Stdout, windows, false)
	return 0
}

func runSearch(args []string) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print matches as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: paneswitch search [--json] <query>")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	windows, err := ipc.NewClient().Search(strings.Join(fs.Args(), " "))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(os.Stdout, windows)
	}
	printWindows(os.Stdout, windows, true)
	return 0
}

func runActivate(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: paneswitch activate <id>")
		return 2
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id == 0 {
		fmt.Fprintf(os.Stderr, "invalid window id: %q\n", args[0])
		return 2
	}
	return exitOnError(ipc.NewClient().Activate(id))
}

// printWindows writes one window per line. Scores are shown for search
// results.
func printWindows(w io.Writer, windows []ipc.WindowInfo, scores bool) {
	if len(windows) == 0 {
		fmt.Fprintln(w, "no windows")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if scores {
		fmt.Fprintln(tw, "ID\tKEY\tSCORE\tAPP\tTITLE")
	} else {
		fmt.Fprintln(tw, "ID\tKEY\tDESKTOP\tAPP\tTITLE")
	}
	for _, win := range windows {
		title := win.Title
		if win.AppOnly {
			title = "(no windows)"
		}
		third := desktopLabel(win.Desktop)
		if scores {
			third = strconv.FormatFloat(win.Score, 'f', 1, 64)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", win.ID, win.Shortcut, third, win.Owner, title)
	}
	tw.Flush()
}

func desktopLabel(desktop int) string {
	if desktop < 0 {
		return "all"
	}
	return strconv.Itoa(desktop + 1)
}

func printJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func exitOnError(err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
