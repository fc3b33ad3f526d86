package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/paneswitch/internal/ipc"
)

var errNoTarget = errors.New("either id or query is required")

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.daemon.List()
	if err != nil {
		return nil, ListWindowsOutput{}, daemonError(err)
	}
	if owner := strings.TrimSpace(args.Owner); owner != "" {
		filtered := windows[:0]
		for _, w := range windows {
			if strings.Contains(strings.ToLower(w.Owner), strings.ToLower(owner)) {
				filtered = append(filtered, w)
			}
		}
		windows = filtered
	}
	windows = limit(windows, args.Limit)
	return nil, ListWindowsOutput{Count: len(windows), Windows: windows}, nil
}

func (s *Server) handleSearchWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args SearchWindowsInput) (*mcpsdk.CallToolResult, SearchWindowsOutput, error) {
	windows, err := s.daemon.Search(args.Query)
	if err != nil {
		return nil, SearchWindowsOutput{}, daemonError(err)
	}
	n := args.Limit
	if n <= 0 {
		n = defaultSearchLimit
	}
	windows = limit(windows, n)
	return nil, SearchWindowsOutput{Query: args.Query, Count: len(windows), Windows: windows}, nil
}

func (s *Server) handleActivateWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ActivateWindowInput) (*mcpsdk.CallToolResult, ActivateWindowOutput, error) {
	target, err := s.resolveTarget(args)
	if err != nil {
		return nil, ActivateWindowOutput{}, err
	}
	if err := s.daemon.Activate(target.ID); err != nil {
		return nil, ActivateWindowOutput{}, daemonError(err)
	}
	s.logger.Info("mcp: activated window", "id", target.ID, "owner", target.Owner)
	result := &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Activated %s", describe(target))},
		},
	}
	return result, ActivateWindowOutput{ID: target.ID, Owner: target.Owner, Title: target.Title}, nil
}

func (s *Server) handleSwitcherStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ SwitcherStatusInput) (*mcpsdk.CallToolResult, ipc.StatusData, error) {
	status, err := s.daemon.Status()
	if err != nil {
		return nil, ipc.StatusData{}, daemonError(err)
	}
	return nil, *status, nil
}

// resolveTarget finds the window an activate_window call refers to. An id
// is passed through even when it is not in the current list; the daemon
// rejects unknown ids.
func (s *Server) resolveTarget(args ActivateWindowInput) (ipc.WindowInfo, error) {
	if args.ID != 0 {
		windows, err := s.daemon.List()
		if err == nil {
			for _, w := range windows {
				if w.ID == args.ID {
					return w, nil
				}
			}
		}
		return ipc.WindowInfo{ID: args.ID}, nil
	}
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return ipc.WindowInfo{}, errNoTarget
	}
	matches, err := s.daemon.Search(query)
	if err != nil {
		return ipc.WindowInfo{}, daemonError(err)
	}
	if len(matches) == 0 {
		return ipc.WindowInfo{}, fmt.Errorf("no window matches %q", query)
	}
	return matches[0], nil
}

func daemonError(err error) error {
	if errors.Is(err, ipc.ErrDaemonNotRunning) {
		return fmt.Errorf("paneswitch daemon is not running; start it with 'paneswitch daemon'")
	}
	return err
}

func limit(windows []ipc.WindowInfo, n int) []ipc.WindowInfo {
	if windows == nil {
		return []ipc.WindowInfo{}
	}
	if n > 0 && len(windows) > n {
		return windows[:n]
	}
	return windows
}

func describe(w ipc.WindowInfo) string {
	switch {
	case w.Owner == "":
		return fmt.Sprintf("window %d", w.ID)
	case w.Title == "":
		return w.Owner
	default:
		return w.Owner + " - " + w.Title
	}
}
