package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/paneswitch/internal/runtimepath"
)

// ErrDaemonNotRunning is returned when nothing listens on the socket.
var ErrDaemonNotRunning = errors.New("paneswitch daemon is not running")

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket path.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// sendRequest surfaces the failure as a connection error.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    DefaultRequestTimeout + 2*time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(cmd CommandType, payload any) (*Response, error) {
	req := Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDaemonNotRunning, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == StatusError {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

func (c *Client) call(cmd CommandType, payload any, out any) error {
	resp, err := c.sendRequest(cmd, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	return c.call(CommandPing, nil, nil)
}

// Status retrieves daemon status
func (c *Client) Status() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Show opens the switcher in mode ("switcher", "search" or "sidebar").
func (c *Client) Show(mode string) error {
	return c.call(CommandShow, ShowPayload{Mode: mode}, nil)
}

func (c *Client) Hide() error {
	return c.call(CommandHide, nil, nil)
}

func (c *Client) Toggle(mode string) error {
	return c.call(CommandToggle, ShowPayload{Mode: mode}, nil)
}

// List returns every switchable entry in most-recently-used order.
func (c *Client) List() ([]WindowInfo, error) {
	var data WindowsData
	if err := c.call(CommandList, nil, &data); err != nil {
		return nil, err
	}
	return data.Windows, nil
}

// Search returns the entries matching query, best first.
func (c *Client) Search(query string) ([]WindowInfo, error) {
	var data WindowsData
	if err := c.call(CommandSearch, SearchPayload{Query: query}, &data); err != nil {
		return nil, err
	}
	return data.Windows, nil
}

// Activate focuses the entry with the given id.
func (c *Client) Activate(id int64) error {
	return c.call(CommandActivate, ActivatePayload{ID: id}, nil)
}

// Reload asks the daemon to reload its configuration.
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// Recheck forces a capability re-check and returns the result.
func (c *Client) Recheck() (bool, error) {
	var data RecheckData
	if err := c.call(CommandRecheck, nil, &data); err != nil {
		return false, err
	}
	return data.Trusted, nil
}
