package engine

import "errors"

// readLoop drains incoming messages with exactly one receive in flight:
// it re-arms only after the previous receive completed. A failed receive
// disarms the loop permanently for this session; the failure is reported
// as exactly one terminal Disconnected or Error event and no further
// receive is issued until a new Start constructs a fresh session.
func (s *session) readLoop(conn Conn) {
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			s.terminate(conn, err)
			return
		}

		switch kind {
		case MessageText:
			s.emit(TextEvent{Text: string(data)})
		case MessageBinary:
			s.emit(BinaryEvent{Data: data})
		}
	}
}

// terminate reaches StateClosed and emits the single terminal event. An
// engine-initiated stop wins over whatever error the cancelled receive
// completed with; a peer close frame maps to Disconnected; everything
// else is a transport error.
func (s *session) terminate(conn Conn, err error) {
	s.mu.Lock()
	stopped, code := s.stopReq, s.stopCode
	s.state = StateClosed
	s.conn = nil
	s.mu.Unlock()

	_ = conn.Close()
	close(s.done)

	var closeErr *CloseError

	switch {
	case stopped:
		s.emit(DisconnectedEvent{Code: code})
	case errors.As(err, &closeErr):
		s.emit(DisconnectedEvent{Reason: closeErr.Reason, Code: closeErr.Code})
	default:
		s.logger.Error("receive failed", "error", err)
		s.emit(ErrorEvent{Err: err})
	}
}
