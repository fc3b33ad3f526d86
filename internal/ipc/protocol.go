package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing     CommandType = "PING"
	CommandStatus   CommandType = "STATUS"
	CommandShow     CommandType = "SHOW"
	CommandHide     CommandType = "HIDE"
	CommandToggle   CommandType = "TOGGLE"
	CommandList     CommandType = "LIST"
	CommandSearch   CommandType = "SEARCH"
	CommandActivate CommandType = "ACTIVATE"
	CommandReload   CommandType = "RELOAD"
	CommandRecheck  CommandType = "RECHECK"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is returned by STATUS.
type StatusData struct {
	DaemonRunning bool   `json:"daemon_running"`
	RunID         string `json:"run_id"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Trusted       bool   `json:"trusted"`
	TapEnabled    bool   `json:"tap_enabled"`
	Visible       bool   `json:"visible"`
	Mode          string `json:"mode"`
	Query         string `json:"query,omitempty"`
	QuickSwitch   string `json:"quick_switch"`
	Windows       int    `json:"windows"`
	Dropped       uint64 `json:"dropped_events"`
	ConfigPath    string `json:"config_path,omitempty"`
}

// WindowInfo is one switchable entry as reported by LIST and SEARCH.
type WindowInfo struct {
	ID       int64   `json:"id"`
	PID      int     `json:"pid"`
	Owner    string  `json:"owner"`
	Title    string  `json:"title"`
	Desktop  int     `json:"desktop"`
	AppOnly  bool    `json:"app_only,omitempty"`
	Shortcut string  `json:"shortcut,omitempty"`
	Score    float64 `json:"score,omitempty"`
}

// WindowsData is returned by LIST and SEARCH.
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

type ShowPayload struct {
	Mode string `json:"mode,omitempty"`
}

type SearchPayload struct {
	Query string `json:"query"`
}

type ActivatePayload struct {
	ID int64 `json:"id"`
}

// RecheckData is returned by RECHECK.
type RecheckData struct {
	Trusted bool `json:"trusted"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: missing command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func decodePayload(req *Request, out any) error {
	if len(req.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Payload, out); err != nil {
		return fmt.Errorf("invalid %s payload: %w", req.Command, err)
	}
	return nil
}
