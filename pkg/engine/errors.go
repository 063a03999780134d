package engine

import (
	"errors"
	"fmt"
)

var (
	ErrMissingDialer = errors.New("no dialer configured")
	ErrTrustRejected = errors.New("server trust rejected by evaluator")
	ErrNoPeerCerts   = errors.New("peer presented no certificates")
)

// CloseError reports that the peer closed the connection with a close
// frame. Transport adapters convert their library-specific close errors
// into this type so the read loop can tell a protocol-level close from a
// transport fault.
type CloseError struct {
	Code   uint16
	Reason string
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("websocket closed: code %d: %s", e.Code, e.Reason)
}
