// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Lifecycle controller: start, stop, idle-timeout sweep, graceful
// acceptor shutdown. Server is a one-shot object — start once, stop
// once; post-stop the object is inert — tying together the executor
// binding, connection table, accept loop, and reaper.

package corox

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/coroxio/corox/coroxsys"
)

// Server is the engine core. Construct with NewServer, then Start it
// once; Stop is safe to call more than once.
type Server struct {
	cfg    ServerConfig
	logger Logger
	clk    clock.Clock

	router *Router
	table  *ConnectionTable

	execSource ExecutorSource
	ownedPool  bool // true unless an ExecutorSource was supplied via WithExecutor

	listener   net.Listener
	port       atomic.Int32
	nextConnID atomic.Int64

	started atomic.Bool
	stopped atomic.Bool
	stopMu  sync.Mutex // serializes concurrent Stop callers so only one does the work

	acceptorClosed chan struct{}

	reaperCancel context.CancelFunc
	reaperDone   chan struct{}

	static *StaticResponder
	proxy  *ProxyDispatcher
}

// ServerOption configures optional Server construction-time
// dependencies.
type ServerOption func(*Server)

// WithLogger overrides the default stderr Logger.
func WithLogger(logger Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithClock overrides the default real clock.Clock, the hook
// idle-timeout tests use to avoid sleeping wall-clock time.
func WithClock(clk clock.Clock) ServerOption {
	return func(s *Server) { s.clk = clk }
}

// WithExecutor switches the server to the Borrowed executor binding:
// every connection runs on the supplied Executor instead of an owned
// worker pool.
func WithExecutor(exec Executor) ServerOption {
	return func(s *Server) {
		s.execSource = NewBorrowedExecutor(exec)
		s.ownedPool = false
	}
}

// NewServer constructs a Server in Embedded executor mode by default.
func NewServer(cfg ServerConfig, opts ...ServerOption) *Server {
	s := &Server{
		cfg:    cfg,
		logger: NewStderrLogger(),
		clk:    clock.New(),
		router: NewRouter(),
		table:  NewConnectionTable(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.execSource == nil {
		s.execSource = NewEmbeddedPool(cfg.AcceptorThreadCount)
		s.ownedPool = true
	}
	return s
}

// Router exposes the register/dispatch collaborator for callers that
// want to add their own handlers alongside static/proxy ones.
func (s *Server) Router() *Router { return s.router }

// RegisterHandler implements register_handler(methods, path, handler).
func (s *Server) RegisterHandler(methods Method, path string, handler Handler) {
	s.router.Register(methods, path, handler)
}

// ConfigureStatic implements the configure_static entry point.
func (s *Server) ConfigureStatic(uriPrefix, rootDir string) error {
	s.cfg.StaticURIPrefix, s.cfg.StaticRootDir = uriPrefix, rootDir
	sr, err := ConfigureStatic(s.router, s.logger, uriPrefix, rootDir)
	if err != nil {
		return err
	}
	sr.SetTransferChunkedSize(s.cfg.TransferChunkedSize)
	sr.SetFileRespFormatType(s.cfg.FileRespFormat)
	s.static = sr
	return nil
}

// SetMaxSizeOfCacheFiles implements set_max_size_of_cache_files(bytes);
// ConfigureStatic must be called first.
func (s *Server) SetMaxSizeOfCacheFiles(maxBytes int64) error {
	s.cfg.MaxCacheBytes = maxBytes
	if s.static == nil {
		return wrapf(ErrInvalidConfig, "set_max_size_of_cache_files: configure_static not called yet")
	}
	return s.static.SetMaxSizeOfCacheFiles(maxBytes)
}

// ConfigureProxy implements the configure_proxy entry point.
func (s *Server) ConfigureProxy(cfg ProxyConfig, client UpstreamClient) error {
	if client == nil {
		client = NewHTTPUpstreamClient()
	}
	pd, err := ConfigureProxy(s.router, client, cfg)
	if err != nil {
		return err
	}
	s.proxy = pd
	return nil
}

// SetNoDelay implements set_no_delay(bool).
func (s *Server) SetNoDelay(enable bool) { s.cfg.NoDelay = enable }

// SetCheckDuration implements set_check_duration(d).
func (s *Server) SetCheckDuration(d time.Duration) { s.cfg.CheckDuration = d }

// SetTimeoutDuration implements set_timeout_duration(d); d>0 enables
// the reaper.
func (s *Server) SetTimeoutDuration(d time.Duration) { s.cfg.TimeoutDuration = d }

// SetShrinkToFit implements set_shrink_to_fit(bool).
func (s *Server) SetShrinkToFit(enable bool) { s.cfg.ShrinkToFit = enable }

// SetTransferChunkedSize implements set_transfer_chunked_size(n).
func (s *Server) SetTransferChunkedSize(n int) {
	s.cfg.TransferChunkedSize = n
	if s.static != nil {
		s.static.SetTransferChunkedSize(n)
	}
}

// SetFileRespFormatType implements
// set_file_resp_format_type({chunked, range}).
func (s *Server) SetFileRespFormatType(format FormatType) {
	s.cfg.FileRespFormat = format
	if s.static != nil {
		s.static.SetFileRespFormatType(format)
	}
}

// Port returns the listening port, resolved to the OS-assigned value
// once Start has succeeded if the configured port was 0.
func (s *Server) Port() int { return int(s.port.Load()) }

// ConnectionCount implements connection_count().
func (s *Server) ConnectionCount() int { return s.table.Count() }

// Start binds the listener and launches the accept loop and, if
// configured, the idle-connection reaper. Returns ErrAddressInUse on
// bind failure without transitioning to running.
func (s *Server) Start() error {
	lc := net.ListenConfig{
		Control: func(_, _ string, rawConn syscall.RawConn) error {
			return coroxsys.SetReuseAddr(rawConn)
		},
	}

	listener, err := lc.Listen(context.Background(), "tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return wrapf(ErrAddressInUse, "listen on port %d: %v", s.cfg.Port, err)
	}
	s.listener = listener
	s.port.Store(int32(listener.Addr().(*net.TCPAddr).Port))
	s.acceptorClosed = make(chan struct{})
	s.started.Store(true)

	go s.acceptLoop()

	if s.cfg.TimeoutDuration > 0 {
		s.startCheckTimer()
	}
	return nil
}

// Stop is an idempotent stop sequence. The first caller performs the
// work; concurrent and later callers no-op.
func (s *Server) Stop() {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()
	if !s.started.Load() || !s.stopped.CompareAndSwap(false, true) {
		return
	}

	if s.reaperCancel != nil {
		s.reaperCancel()
		<-s.reaperDone
	}

	if s.listener != nil {
		s.listener.Close()
	}
	if s.acceptorClosed != nil {
		<-s.acceptorClosed
	}

	s.table.CloseAll()

	s.execSource.Shutdown()
}

// startCheckTimer arms a ticker for CheckDuration; on each tick, if
// not stopping, sweeps the connection table and re-arms. A cancelled
// wait returns without re-arming.
func (s *Server) startCheckTimer() {
	ctx, cancel := context.WithCancel(context.Background())
	s.reaperCancel = cancel
	s.reaperDone = make(chan struct{})

	ticker := s.clk.Ticker(s.cfg.CheckDuration)
	go func() {
		defer close(s.reaperDone)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.table.Sweep(s.clk.Now(), s.cfg.TimeoutDuration)
			}
		}
	}()
}
