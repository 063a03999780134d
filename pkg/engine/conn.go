package engine

import (
	"context"
	"net/http"
)

// MessageKind discriminates received data frames. Values match the RFC
// 6455 data opcodes so adapters can map them directly.
type MessageKind int

const (
	MessageText   MessageKind = 1
	MessageBinary MessageKind = 2
)

// Opcode selects the encoding of an outbound write.
type Opcode int

const (
	OpcodeText Opcode = iota + 1
	OpcodeBinary
	OpcodePing
)

// Request describes the target of a connection attempt. The engine treats
// it as opaque and hands it to the Dialer unmodified.
type Request struct {
	URL    string
	Header http.Header
}

// Conn is the underlying socket primitive. Implementations own the
// WebSocket handshake and framing; the engine only reads whole messages
// and writes whole frames through it.
//
// ReadMessage blocks until a data message arrives or the connection
// fails. A peer-initiated close must surface as a *CloseError.
type Conn interface {
	ReadMessage() (MessageKind, []byte, error)
	WriteMessage(kind MessageKind, data []byte) error
	WritePing() error
	WriteClose(code uint16, reason string) error
	Close() error
	Subprotocol() string
}

// Dialer opens a Conn to the target described by a Request. The TLS
// authentication policy is applied by the Dialer implementation during
// the handshake.
type Dialer interface {
	Dial(ctx context.Context, req Request) (Conn, error)
}
