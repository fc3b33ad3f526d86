// Package mcp exposes the running switcher daemon as MCP tools over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/paneswitch/internal/ipc"
)

const (
	ServerName    = "paneswitch"
	ServerVersion = "0.1.0"

	defaultSearchLimit = 10
)

// Daemon is the part of the IPC client the tools use. *ipc.Client
// satisfies it.
type Daemon interface {
	Status() (*ipc.StatusData, error)
	List() ([]ipc.WindowInfo, error)
	Search(query string) ([]ipc.WindowInfo, error)
	Activate(id int64) error
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for the window switcher.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a server that forwards tool calls to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{daemon: daemon, logger: logger}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List open windows in most-recently-used order, as the switcher shows them. Each window has an id usable with activate_window and a single-character shortcut. Applications without windows appear with app_only set.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "search_windows",
		Description: "Fuzzy-search open windows by application name and title. Results are ranked best match first with a score; an empty query returns every window in recently-used order.",
	}, s.handleSearchWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "activate_window",
		Description: "Raise and focus a window by id, or the best match for a query. Activating an app-only entry runs its configured launch command.",
	}, s.handleActivateWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switcher_status",
		Description: "Report the switcher daemon state: whether keyboard capture is permitted, whether the switcher is visible and in which mode, and how many windows are catalogued.",
	}, s.handleSwitcherStatus)
}
