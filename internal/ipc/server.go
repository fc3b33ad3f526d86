package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// DefaultRequestTimeout bounds how long one request may wait for the
// daemon's main flow.
const DefaultRequestTimeout = 3 * time.Second

// ErrAlreadyRunning is returned by Start when another daemon answers on the
// socket.
var ErrAlreadyRunning = errors.New("another paneswitch daemon is already running")

// Handler executes IPC commands. Implementations run each call on the
// daemon's main flow and honour ctx while waiting for it.
type Handler interface {
	Status(ctx context.Context) (StatusData, error)
	Show(ctx context.Context, mode string) error
	Hide(ctx context.Context) error
	Toggle(ctx context.Context, mode string) error
	List(ctx context.Context) ([]WindowInfo, error)
	Search(ctx context.Context, query string) ([]WindowInfo, error)
	Activate(ctx context.Context, id int64) error
	Reload(ctx context.Context) error
	Recheck(ctx context.Context) (bool, error)
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	handler    Handler
	logger     *slog.Logger
	timeout    time.Duration

	listener     net.Listener
	wg           sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(socketPath string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger,
		timeout:    DefaultRequestTimeout,
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	if conn, err := net.DialTimeout("unix", s.socketPath, 200*time.Millisecond); err == nil {
		conn.Close()
		return ErrAlreadyRunning
	}
	// Stale socket from a previous run.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}
	s.listener = listener

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) closing() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closing() {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if err := checkPeer(conn); err != nil {
			s.logger.Warn("IPC connection rejected", "error", err)
			conn.Close()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection serves one request per connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.timeout + time.Second))

	data, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	var resp *Response
	req, err := ParseRequest(data)
	if err != nil {
		resp = NewErrorResponse(fmt.Sprintf("Invalid request: %v", err))
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		resp = s.handleCommand(ctx, req)
		cancel()
	}

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)

	var (
		data any
		err  error
	)
	switch req.Command {
	case CommandPing:
		data = map[string]string{"reply": "PONG"}
	case CommandStatus:
		var status StatusData
		status, err = s.handler.Status(ctx)
		data = status
	case CommandShow, CommandToggle:
		var p ShowPayload
		if err = decodePayload(req, &p); err != nil {
			break
		}
		if req.Command == CommandShow {
			err = s.handler.Show(ctx, p.Mode)
		} else {
			err = s.handler.Toggle(ctx, p.Mode)
		}
	case CommandHide:
		err = s.handler.Hide(ctx)
	case CommandList:
		var windows []WindowInfo
		windows, err = s.handler.List(ctx)
		data = WindowsData{Windows: nonNil(windows)}
	case CommandSearch:
		var p SearchPayload
		if err = decodePayload(req, &p); err != nil {
			break
		}
		var windows []WindowInfo
		windows, err = s.handler.Search(ctx, p.Query)
		data = WindowsData{Windows: nonNil(windows)}
	case CommandActivate:
		var p ActivatePayload
		if err = decodePayload(req, &p); err != nil {
			break
		}
		if p.ID == 0 {
			err = fmt.Errorf("id is required")
			break
		}
		err = s.handler.Activate(ctx, p.ID)
	case CommandReload:
		err = s.handler.Reload(ctx)
	case CommandRecheck:
		var trusted bool
		trusted, err = s.handler.Recheck(ctx)
		data = RecheckData{Trusted: trusted}
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}

	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func nonNil(windows []WindowInfo) []WindowInfo {
	if windows == nil {
		return []WindowInfo{}
	}
	return windows
}

// Stop closes the listener, waits for in-flight requests and removes the
// socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
