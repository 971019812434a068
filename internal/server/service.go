package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"mpacklog/internal/latest"
	"mpacklog/internal/logging"
	"mpacklog/internal/tailer"
)

// Options configures a Service.
type Options struct {
	// Bind is the interface to listen on. Empty means all interfaces.
	Bind string
	// Port is the TCP port to listen on. Zero binds an ephemeral port.
	Port int
	// Frequency bounds the tailer's polls and each connection's replies per
	// second.
	Frequency float64
	// ChunkSize is the tailer's read size per poll.
	ChunkSize int
}

// Service owns the tailer loop and the accept loop, and coordinates their
// shutdown. Stop is synchronous: it returns once both loops have confirmed
// termination.
type Service struct {
	logPath   string
	bind      string
	port      int
	frequency float64
	logger    *slog.Logger

	cell   *latest.Cell
	tailer *tailer.Tailer

	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
	loops    sync.WaitGroup // tailer loop + accept loop
	conns    sync.WaitGroup
	running  atomic.Bool
	stopOnce sync.Once

	errMu   sync.Mutex
	loopErr error
}

// New prepares a service tailing the log file at logPath. The path must
// already be resolved to a concrete file.
func New(logPath string, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	frequency := opts.Frequency
	if frequency <= 0 {
		frequency = tailer.DefaultFrequency
	}
	cell := latest.NewCell()
	return &Service{
		logPath:   logPath,
		bind:      opts.Bind,
		port:      opts.Port,
		frequency: frequency,
		logger:    logger,
		cell:      cell,
		tailer: tailer.New(logPath, cell, logger, tailer.Options{
			Frequency: frequency,
			ChunkSize: opts.ChunkSize,
		}),
	}
}

// Start binds the listening socket and launches the tailer and accept loops.
// A bind failure is fatal and nothing is left running.
func (s *Service) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("server already running")
	}

	addr := net.JoinHostPort(s.bind, strconv.Itoa(s.port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.listener = listener
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running.Store(true)

	s.loops.Add(2)
	go s.runTailer()
	go s.acceptLoop()

	s.logger.Info("log server listening",
		logging.String(logging.FieldComponent, "server"),
		logging.String("address", listener.Addr().String()),
		logging.String("path", s.logPath))
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Service) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop clears the running state, wakes the accept loop with a loopback
// probe, and blocks until both loops have signaled completion. It is safe to
// call from any goroutine, including a connection handler, and is
// idempotent. It returns the tailer's terminal error, if any.
func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		if !s.running.Load() {
			return
		}
		s.cancel()

		// The accept loop may be blocked waiting for a client that will
		// never come. Connecting to our own port guarantees it observes a
		// socket event and re-checks the lifecycle state promptly.
		var probe net.Conn
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			target := net.JoinHostPort("127.0.0.1", strconv.Itoa(addr.Port))
			conn, err := net.DialTimeout("tcp", target, time.Second)
			if err == nil {
				probe = conn
				_, _ = probe.Write([]byte("stop"))
			}
		}
		if probe == nil {
			// No probe possible; closing the listener unblocks the accept
			// loop instead.
			_ = s.listener.Close()
		}

		s.loops.Wait()
		_ = s.listener.Close()
		if probe != nil {
			_ = probe.Close()
		}
		s.running.Store(false)
		s.logger.Info("log server stopped", logging.String(logging.FieldComponent, "server"))
	})
	return s.Err()
}

// Err returns the first terminal loop error, if any.
func (s *Service) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.loopErr
}

// Run starts the service and blocks until a stop request, a fatal loop
// error, SIGINT/SIGTERM, or ctx ending, then performs a coordinated stop.
func (s *Service) Run(ctx context.Context) error {
	signalCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := s.Start(signalCtx); err != nil {
		return err
	}

	finished := make(chan struct{})
	go func() {
		s.loops.Wait()
		close(finished)
	}()

	select {
	case <-signalCtx.Done():
	case <-finished:
	}
	return s.Stop()
}

func (s *Service) runTailer() {
	defer s.loops.Done()
	if err := s.tailer.Run(s.ctx); err != nil {
		s.errMu.Lock()
		if s.loopErr == nil {
			s.loopErr = err
		}
		s.errMu.Unlock()
		s.logger.Error("tailer terminated",
			logging.String(logging.FieldComponent, "tailer"),
			logging.Error(err))
		// Take the whole service down; a server with no tailer would serve
		// stale data forever.
		go s.Stop()
	}
}

func (s *Service) acceptLoop() {
	defer s.loops.Done()
	logger := logging.NewComponentLogger(s.logger, "server")
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			logger.Warn("accept failed", logging.Error(err))
			continue
		}
		if s.ctx.Err() != nil {
			_ = conn.Close()
			return
		}
		s.conns.Add(1)
		go func(c net.Conn) {
			defer s.conns.Done()
			s.serveConn(c)
		}(conn)
	}
}
