package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// Server listens on a Unix socket and serves registry requests. Connections
// are accepted concurrently but requests are executed under one lock, so
// registry operations never overlap.
type Server struct {
	ops      Ops
	listener net.Listener
	sockPath string
	started  time.Time

	reqMu        sync.Mutex // serializes request execution
	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request arrives
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a daemon server dispatching to the given operations.
func NewServer(ops Ops, sockPath string) *Server {
	return &Server{
		ops:        ops,
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first: if the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		// Stale socket, remove it
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop gracefully shuts down the server, closing the listener and removing
// the socket file. Idempotent.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel closed when a remote shutdown request is
// received. The daemon's main goroutine selects on this alongside signals.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB max message

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		s.reqMu.Lock()
		resp := s.handleRequest(req)
		s.reqMu.Unlock()
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodSearch:
		var params SearchParams
		if err := decodeParams(req.Params, &params); err != nil {
			return Response{ID: req.ID, Error: "invalid search params"}
		}
		if params.Query == "" {
			return Response{ID: req.ID, Error: "query is required"}
		}
		return Response{ID: req.ID, Result: s.ops.Search(params)}

	case MethodComplete:
		var params CompleteParams
		if err := decodeParams(req.Params, &params); err != nil {
			return Response{ID: req.ID, Error: "invalid complete params"}
		}
		if params.Prefix == "" {
			return Response{ID: req.ID, Error: "prefix is required"}
		}
		return Response{ID: req.ID, Result: s.ops.Complete(params)}

	case MethodDoc:
		var params DocParams
		if err := decodeParams(req.Params, &params); err != nil {
			return Response{ID: req.ID, Error: "invalid doc params"}
		}
		if params.Name == "" {
			return Response{ID: req.ID, Error: "name is required"}
		}
		return Response{ID: req.ID, Result: s.ops.Doc(params)}

	case MethodUsages:
		var params UsagesParams
		if err := decodeParams(req.Params, &params); err != nil {
			return Response{ID: req.ID, Error: "invalid usages params"}
		}
		if params.Symbol == "" {
			return Response{ID: req.ID, Error: "symbol is required"}
		}
		return Response{ID: req.ID, Result: s.ops.Usages(params)}

	case MethodRefresh:
		var params RefreshParams
		if err := decodeParams(req.Params, &params); err != nil {
			return Response{ID: req.ID, Error: "invalid refresh params"}
		}
		return Response{ID: req.ID, Result: s.ops.Refresh(params)}

	case MethodStats:
		return Response{ID: req.ID, Result: s.ops.Stats()}

	case MethodHealth:
		stats := s.ops.Stats()
		return Response{ID: req.ID, Result: HealthResult{
			Status:      "ok",
			SymbolCount: stats.SymbolCount,
			FileCount:   stats.FileCount,
			Uptime:      time.Since(s.started).Round(time.Second).String(),
		}}

	case MethodWipe:
		if err := s.ops.Wipe(); err != nil {
			return Response{ID: req.ID, Error: err.Error()}
		}
		return Response{ID: req.ID, Result: struct{}{}}

	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}

	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

// decodeParams re-marshals the loosely typed params into the target struct.
func decodeParams(params interface{}, target interface{}) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	conn.Write(append(data, '\n'))
}
