// Package coderws provides an engine.Conn implementation backed by
// github.com/coder/websocket, as an alternative to the default gorilla
// transport. It exists to keep the engine's Conn seam honest: the engine
// compiles and behaves identically against either library.
package coderws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"

	"github.com/netkit-go/wsengine/pkg/engine"
)

const (
	defaultHandshakeTimeout = 45 * time.Second
	writeTimeout            = 10 * time.Second
)

type Dialer struct {
	policy           engine.AuthPolicy
	subprotocols     []string
	handshakeTimeout time.Duration
}

type Option func(*Dialer)

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

	dialCtx, cancel := context.WithTimeout(ctx, d.handshakeTimeout)
	defer cancel()

	// No proxy: the TLS policy authenticates the peer directly.
	client := &http.Client{
		Transport: &http.Transport{
			Proxy:           nil,
			TLSClientConfig: d.policy.TLSConfig(u.Hostname()),
		},
	}

	conn, _, err := websocket.Dial(dialCtx, u.String(), &websocket.DialOptions{
		HTTPClient:   client,
		HTTPHeader:   req.Header,
		Subprotocols: d.subprotocols,
	})
	if err != nil {
		return nil, err
	}

	return &Conn{conn: conn}, nil
}

// Conn adapts *websocket.Conn to engine.Conn.
type Conn struct {
	conn *websocket.Conn
}

func (c *Conn) ReadMessage() (engine.MessageKind, []byte, error) {
	typ, data, err := c.conn.Read(context.Background())
	if err != nil {
		if status := websocket.CloseStatus(err); status != -1 {
			reason := ""

			var closeErr websocket.CloseError
			if errors.As(err, &closeErr) {
				reason = closeErr.Reason
			}

			return 0, nil, &engine.CloseError{
				Code:   uint16(status),
				Reason: reason,
			}
		}

		return 0, nil, err
	}

	switch typ {
	case websocket.MessageText:
		return engine.MessageText, data, nil
	default:
		return engine.MessageBinary, data, nil
	}
}

func (c *Conn) WriteMessage(kind engine.MessageKind, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	typ := websocket.MessageBinary
	if kind == engine.MessageText {
		typ = websocket.MessageText
	}

	return c.conn.Write(ctx, typ, data)
}

func (c *Conn) WritePing() error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	return c.conn.Ping(ctx)
}

func (c *Conn) WriteClose(code uint16, reason string) error {
	return c.conn.Close(websocket.StatusCode(code), reason)
}

func (c *Conn) Close() error {
	return c.conn.CloseNow()
}

func (c *Conn) Subprotocol() string {
	return c.conn.Subprotocol()
}
