package engine

import (
	"context"
	"log/slog"
	"sync"
)

type Config struct {
	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Logger: slog.Default(),
	}
}

// Engine is the transport engine consumed by a higher-level WebSocket
// client. One Engine drives one event stream; a new connection attempt
// after teardown reuses the same Engine via a new Start.
//
// Completion callbacks and event delivery run on internal goroutines and
// may be concurrent with caller-side Start/Stop/Write calls.
type Engine struct {
	dialer Dialer
	logger *slog.Logger
	bcast  broadcaster

	mu      sync.Mutex
	session *session
}

func New(dialer Dialer, cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Engine{
		dialer: dialer,
		logger: cfg.Logger,
	}
}

// Register binds the single observer for this engine, overwriting any
// previous binding. Register(nil) detaches the observer; subsequent
// events are dropped silently. Safe to call at any point, including
// concurrently with event delivery.
func (e *Engine) Register(d Delegate) {
	e.bcast.bind(d)
}

// Start opens a connection to the target described by req and arms the
// read loop. The session is constructed lazily; a session that already
// reached Closed is replaced so the stream can be restarted. Start never
// blocks and never fails synchronously: a dial failure surfaces as an
// Error event. Calling Start while the session is Open is a caller
// error and is deliberately not guarded.
func (e *Engine) Start(ctx context.Context, req Request) {
	e.mu.Lock()

	if e.session == nil || e.session.currentState() == StateClosed {
		e.session = newSession(e.dialer, e.logger, e.bcast.emit)
	}

	s := e.session
	e.mu.Unlock()

	s.start(ctx, req)
}

// Stop requests graceful shutdown with the given close code; unrecognized
// codes fall back to a normal closure (1000). Asynchronous: completion is
// observed via a later Disconnected event.
func (e *Engine) Stop(code uint16) {
	if s := e.current(); s != nil {
		s.stop(sanitizeCloseCode(code))
	}
}

// ForceStop requests immediate shutdown without a close handshake,
// reported as an abnormal closure (1006).
func (e *Engine) ForceStop() {
	if s := e.current(); s != nil {
		s.stop(CloseAbnormal)
	}
}

// WriteText sends a text frame. onComplete (optional) fires after the
// transport confirms the send attempt. Writes are independent; no
// ordering is guaranteed between completions.
func (e *Engine) WriteText(text string, onComplete func()) {
	if s := e.current(); s != nil {
		s.writeText(text, onComplete)
	}
}

// WriteData sends data encoded per opcode: Binary sends raw bytes, Text
// validates UTF-8 first (invalid input is silently dropped), Ping sends a
// payload-less protocol ping, anything else is a no-op.
func (e *Engine) WriteData(data []byte, opcode Opcode, onComplete func()) {
	if s := e.current(); s != nil {
		s.writeData(data, opcode, onComplete)
	}
}

// State reports the current session state; StateIdle before the first
// Start.
func (e *Engine) State() SessionState {
	s := e.current()
	if s == nil {
		return StateIdle
	}

	return s.currentState()
}

// Done returns a channel closed when the current session reaches Closed.
// Before the first Start it returns nil, which blocks forever.
func (e *Engine) Done() <-chan struct{} {
	s := e.current()
	if s == nil {
		return nil
	}

	return s.done
}

func (e *Engine) current() *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}
