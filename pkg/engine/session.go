package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"
)

// SessionState tracks the lifecycle of one connection attempt.
type SessionState int

const (
	StateIdle SessionState = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// session owns the Conn for a single connection attempt. It is created by
// the engine on Start and reaches StateClosed exactly once, after which
// no further transitions or events fire.
type session struct {
	dialer Dialer
	logger *slog.Logger
	emit   func(Event)

	mu       sync.Mutex
	state    SessionState
	conn     Conn
	stopReq  bool
	stopCode uint16

	writeMu sync.Mutex

	done chan struct{}
}

func newSession(dialer Dialer, logger *slog.Logger, emit func(Event)) *session {
	return &session{
		dialer: dialer,
		logger: logger,
		emit:   emit,
		done:   make(chan struct{}),
	}
}

func (s *session) currentState() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// start transitions Idle→Connecting and opens the connection on a new
// goroutine; the caller never blocks and never sees a synchronous error.
func (s *session) start(ctx context.Context, req Request) {
	s.mu.Lock()
	s.state = StateConnecting
	s.mu.Unlock()

	go s.open(ctx, req)
}

func (s *session) open(ctx context.Context, req Request) {
	if s.dialer == nil {
		s.fail(ErrMissingDialer)
		return
	}

	s.logger.Info("opening connection", slog.String("url", req.URL))

	conn, err := s.dialer.Dial(ctx, req)
	if err != nil {
		s.fail(fmt.Errorf("dial failed: %w", err))
		return
	}

	s.mu.Lock()

	if s.stopReq {
		code := s.stopCode
		s.state = StateClosed
		s.mu.Unlock()

		_ = conn.Close()
		close(s.done)
		s.emit(DisconnectedEvent{Code: code})

		return
	}

	s.conn = conn
	s.state = StateOpen
	s.mu.Unlock()

	s.logger.Info("connection open",
		slog.String("url", req.URL),
		slog.String("subprotocol", conn.Subprotocol()),
	)

	s.emit(ConnectedEvent{Subprotocol: conn.Subprotocol()})
	s.readLoop(conn)
}

// fail finishes a connection attempt that never reached Open.
func (s *session) fail(err error) {
	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()

	close(s.done)

	s.logger.Error("connect failed", "error", err)
	s.emit(ErrorEvent{Err: err})
}

// stop requests teardown with an already-sanitized close code. Graceful
// codes send a close frame first; CloseAbnormal tears the socket down
// immediately. Completion is observed via the later Disconnected event.
func (s *session) stop(code uint16) {
	s.mu.Lock()

	if s.state == StateClosed || s.stopReq {
		s.mu.Unlock()
		return
	}

	s.stopReq = true
	s.stopCode = code
	conn := s.conn

	if conn != nil {
		s.state = StateClosing
	}

	s.mu.Unlock()

	// Still connecting: open() observes stopReq once the dial returns.
	if conn == nil {
		return
	}

	if code != CloseAbnormal {
		s.writeMu.Lock()
		if err := conn.WriteClose(code, ""); err != nil {
			s.logger.Warn("failed to send close frame", "error", err)
		}
		s.writeMu.Unlock()
	}

	_ = conn.Close()
}

// writeText sends a text frame. onComplete fires after the transport
// confirms the send attempt; success and failure are not distinguished
// here, failures surface later from the read side if at all.
func (s *session) writeText(text string, onComplete func()) {
	go func() {
		s.write(MessageText, []byte(text))

		if onComplete != nil {
			onComplete()
		}
	}()
}

// writeData sends data encoded per opcode. Text-tagged bytes that are not
// valid UTF-8 are dropped without a send, an event, or a completion.
// Ping never forwards the payload, per control frame semantics. Unknown
// opcodes are a no-op.
func (s *session) writeData(data []byte, opcode Opcode, onComplete func()) {
	switch opcode {
	case OpcodeBinary:
		go func() {
			s.write(MessageBinary, data)

			if onComplete != nil {
				onComplete()
			}
		}()

	case OpcodeText:
		if !utf8.Valid(data) {
			return
		}

		s.writeText(string(data), onComplete)

	case OpcodePing:
		go func() {
			s.ping()

			if onComplete != nil {
				onComplete()
			}
		}()
	}
}

func (s *session) write(kind MessageKind, data []byte) {
	conn := s.currentConn()
	if conn == nil {
		return
	}

	s.writeMu.Lock()
	err := conn.WriteMessage(kind, data)
	s.writeMu.Unlock()

	if err != nil {
		s.logger.Warn("write failed", "error", err)
	}
}

func (s *session) ping() {
	conn := s.currentConn()
	if conn == nil {
		return
	}

	s.writeMu.Lock()
	err := conn.WritePing()
	s.writeMu.Unlock()

	if err != nil {
		s.logger.Warn("ping failed", "error", err)
	}
}

func (s *session) currentConn() Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}
