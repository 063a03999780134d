// Package engine implements a pluggable WebSocket transport engine:
//   - Connection lifecycle (Start / Stop / ForceStop) over an injected Dialer
//   - TLS authentication policy (client-certificate and server-trust challenges)
//   - A sequential read loop that turns incoming frames into typed events
//   - A write path mapping outbound payloads onto wire frames
//
// The engine does not implement the WebSocket handshake or framing itself;
// both are delegated to the underlying Conn implementation (see the
// transport subpackages). It also does not retry or reconnect: a read
// failure terminates the stream with a single Error or Disconnected event
// and the caller decides what happens next.
//
// # Basic usage
//
//	dialer := gorillaws.NewDialer(engine.AuthPolicy{})
//	eng := engine.New(dialer, engine.DefaultConfig())
//	eng.Register(myDelegate)
//	eng.Start(ctx, engine.Request{URL: "wss://example.com/ws"})
//	...
//	eng.Stop(engine.CloseNormal)
//
// # Mutual TLS and trust pinning
//
//	policy := engine.AuthPolicy{
//	    Credential: &clientCert,
//	    TrustEvaluator: func(pt engine.PeerTrust) error {
//	        leaf, err := pt.Leaf()
//	        if err != nil {
//	            return err
//	        }
//	        return verifyPin(leaf)
//	    },
//	}
//	eng := engine.New(gorillaws.NewDialer(policy), engine.DefaultConfig())
//
// A configured TrustEvaluator is authoritative: returning an error cancels
// the TLS handshake. An absent evaluator (and an absent Credential) means
// default platform handling, never rejection.
//
// All events are delivered to the single Delegate bound via Register, in
// transport arrival order. Delivery to an unregistered delegate is a silent
// no-op; events are never buffered.
package engine
