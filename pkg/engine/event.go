package engine

// Event is a typed notification produced by the engine and delivered to
// the registered Delegate. The set of implementations is closed:
// ConnectedEvent, DisconnectedEvent, TextEvent, BinaryEvent, ErrorEvent.
type Event interface {
	isEvent()
}

// ConnectedEvent reports a successfully opened connection together with
// the subprotocol negotiated during the handshake (empty if none).
type ConnectedEvent struct {
	Subprotocol string
}

// DisconnectedEvent reports connection teardown, either requested locally
// via Stop/ForceStop or initiated by the peer with a close frame.
type DisconnectedEvent struct {
	Reason string
	Code   uint16
}

// TextEvent carries a received text message.
type TextEvent struct {
	Text string
}

// BinaryEvent carries a received binary message.
type BinaryEvent struct {
	Data []byte
}

// ErrorEvent reports a transport failure. It is terminal for the read
// side: no further events follow until a new Start.
type ErrorEvent struct {
	Err error
}

func (ConnectedEvent) isEvent() {}

func (DisconnectedEvent) isEvent() {}

func (TextEvent) isEvent() {}

func (BinaryEvent) isEvent() {}

func (ErrorEvent) isEvent() {}

// Delegate is the single observer of an engine's event stream. OnEvent is
// invoked from the engine's internal goroutines; implementations must not
// assume a particular calling goroutine.
type Delegate interface {
	OnEvent(Event)
}

// Close codes from the RFC 6455 status code space.
const (
	CloseNormal   uint16 = 1000
	CloseAbnormal uint16 = 1006

	closeNoStatus uint16 = 1005
)

// sanitizeCloseCode maps unrecognized or send-forbidden codes to a normal
// closure. 1005 and 1006 are reserved and must never appear in a close
// frame we send.
func sanitizeCloseCode(code uint16) uint16 {
	switch {
	case code == closeNoStatus || code == CloseAbnormal:
		return CloseNormal
	case code >= 1000 && code <= 1015:
		return code
	case code >= 3000 && code <= 4999:
		return code
	default:
		return CloseNormal
	}
}
