package mcp

import "github.com/1broseidon/paneswitch/internal/ipc"

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Owner string `json:"owner,omitempty" jsonschema:"Only return windows whose application name contains this text (case-insensitive)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of windows to return (default: all)"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Count   int              `json:"count"`
	Windows []ipc.WindowInfo `json:"windows"`
}

// SearchWindowsInput is the input for the search_windows tool.
type SearchWindowsInput struct {
	Query string `json:"query" jsonschema:"Fuzzy query matched against application names and window titles"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of matches to return (default: 10)"`
}

// SearchWindowsOutput is the output for the search_windows tool.
type SearchWindowsOutput struct {
	Query   string           `json:"query"`
	Count   int              `json:"count"`
	Windows []ipc.WindowInfo `json:"windows"`
}

// ActivateWindowInput is the input for the activate_window tool. Either
// ID or Query must be set.
type ActivateWindowInput struct {
	ID    int64  `json:"id,omitempty" jsonschema:"Window id from list_windows or search_windows"`
	Query string `json:"query,omitempty" jsonschema:"Activate the best match for this query instead of an id"`
}

// ActivateWindowOutput is the output for the activate_window tool.
type ActivateWindowOutput struct {
	ID    int64  `json:"id"`
	Owner string `json:"owner,omitempty"`
	Title string `json:"title,omitempty"`
}

// SwitcherStatusInput is the input for the switcher_status tool.
type SwitcherStatusInput struct{}
