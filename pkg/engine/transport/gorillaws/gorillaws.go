// Package gorillaws provides the default engine.Conn implementation,
// backed by github.com/gorilla/websocket. The handshake, framing and
// control-frame plumbing all live in the underlying library; this package
// only adapts them to the engine's Conn seam and applies the engine's
// AuthPolicy to the TLS handshake.
package gorillaws

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/netkit-go/wsengine/pkg/engine"
)

const (
	defaultHandshakeTimeout = 45 * time.Second
	controlWriteTimeout     = 5 * time.Second
)

type Dialer struct {
	policy           engine.AuthPolicy
	subprotocols     []string
	handshakeTimeout time.Duration
}

type Option func(*Dialer)

// WithSubprotocols sets the subprotocols offered during the handshake.
func WithSubprotocols(names ...string) Option {
	return func(d *Dialer) {
		d.subprotocols = names
	}
}

func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(d *Dialer) {
		d.handshakeTimeout = timeout
	}
}

func NewDialer(policy engine.AuthPolicy, opts ...Option) *Dialer {
	d := &Dialer{
		policy:           policy,
		handshakeTimeout: defaultHandshakeTimeout,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Dialer) Dial(ctx context.Context, req engine.Request) (engine.Conn, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	// HTTP_PROXY is ignored deliberately; a proxy would sit between the
	// engine and the TLS peer it is authenticating.
	dialer := websocket.Dialer{
		Proxy:            nil,
		HandshakeTimeout: d.handshakeTimeout,
		Subprotocols:     d.subprotocols,
		TLSClientConfig:  d.policy.TLSConfig(u.Hostname()),
	}

	conn, _, err := dialer.DialContext(ctx, u.String(), req.Header)
	if err != nil {
		return nil, err
	}

	return &Conn{conn: conn}, nil
}

// Conn adapts *websocket.Conn to engine.Conn. Read and write sides may be
// used concurrently with each other; the engine serializes writes itself.
type Conn struct {
	conn *websocket.Conn
}

func (c *Conn) ReadMessage() (engine.MessageKind, []byte, error) {
	mt, data, err := c.conn.ReadMessage()
	if err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return 0, nil, &engine.CloseError{
				Code:   uint16(closeErr.Code),
				Reason: closeErr.Text,
			}
		}

		return 0, nil, err
	}

	return engine.MessageKind(mt), data, nil
}

func (c *Conn) WriteMessage(kind engine.MessageKind, data []byte) error {
	return c.conn.WriteMessage(int(kind), data)
}

func (c *Conn) WritePing() error {
	return c.conn.WriteControl(
		websocket.PingMessage,
		nil,
		time.Now().Add(controlWriteTimeout),
	)
}

func (c *Conn) WriteClose(code uint16, reason string) error {
	return c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(int(code), reason),
		time.Now().Add(controlWriteTimeout),
	)
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) Subprotocol() string {
	return c.conn.Subprotocol()
}
