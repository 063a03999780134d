package engine

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
)

// PeerTrust is the context handed to a TrustEvaluator: the certificate
// chain presented by the peer during the TLS handshake, in wire order
// (leaf first), plus the hostname the connection was dialed with.
type PeerTrust struct {
	RawCerts   [][]byte
	ServerName string
}

// Certificates parses the presented chain. Returns ErrNoPeerCerts when
// the peer sent nothing.
func (pt PeerTrust) Certificates() ([]*x509.Certificate, error) {
	if len(pt.RawCerts) == 0 {
		return nil, ErrNoPeerCerts
	}

	certs := make([]*x509.Certificate, 0, len(pt.RawCerts))

	for _, raw := range pt.RawCerts {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse peer certificate: %w", err)
		}

		certs = append(certs, cert)
	}

	return certs, nil
}

// Leaf parses and returns the peer's leaf certificate.
func (pt PeerTrust) Leaf() (*x509.Certificate, error) {
	certs, err := pt.Certificates()
	if err != nil {
		return nil, err
	}

	return certs[0], nil
}

// TrustEvaluator is caller-supplied validation of the peer's certificate
// chain. Returning nil accepts the peer; returning an error cancels the
// TLS handshake. A nil TrustEvaluator means default platform validation,
// never rejection.
type TrustEvaluator func(PeerTrust) error

// Disposition is the outcome of resolving a TLS challenge.
type Disposition int

const (
	// PerformDefault defers to the platform's standard handling: send no
	// client certificate, or run the default chain and hostname checks.
	PerformDefault Disposition = iota
	// UseCredential answers the challenge with a specific credential (the
	// configured client certificate, or the peer's accepted trust chain).
	UseCredential
	// CancelHandshake aborts the TLS handshake outright.
	CancelHandshake
)

// AuthPolicy is the immutable authentication configuration of an engine.
// Both fields are optional; the zero value defers everything to default
// TLS handling.
type AuthPolicy struct {
	// Credential is the client identity presented when the server
	// requests a certificate. Nil means "let the platform decide", which
	// for crypto/tls sends no certificate.
	Credential *tls.Certificate

	// TrustEvaluator replaces the default server-trust validation. When
	// set, its verdict is authoritative for the whole handshake.
	TrustEvaluator TrustEvaluator

	// RootCAs is the pool used by default server-trust handling. Nil
	// means the system pool. Ignored when TrustEvaluator is set.
	RootCAs *x509.CertPool
}

// ResolveClientCertificate decides the response to a client-certificate
// challenge. A configured credential is committed to immediately; absence
// defers to default handling.
func ResolveClientCertificate(cred *tls.Certificate) (Disposition, *tls.Certificate) {
	if cred != nil {
		return UseCredential, cred
	}

	return PerformDefault, nil
}

// ResolveServerTrust decides the response to a server-trust challenge.
// No obtainable peer trust defers to default handling. A configured
// evaluator has veto power: its error cancels the handshake rather than
// falling back. No evaluator defers to default handling.
func ResolveServerTrust(eval TrustEvaluator, pt PeerTrust) (Disposition, error) {
	if len(pt.RawCerts) == 0 {
		return PerformDefault, nil
	}

	if eval == nil {
		return PerformDefault, nil
	}

	if err := eval(pt); err != nil {
		return CancelHandshake, fmt.Errorf("%w: %w", ErrTrustRejected, err)
	}

	return UseCredential, nil
}

// TLSConfig assembles the tls.Config enforcing this policy for a
// connection to serverName. The client-certificate challenge is answered
// by GetClientCertificate; the server-trust challenge by
// VerifyPeerCertificate when an evaluator is configured, otherwise by the
// standard verification against RootCAs.
func (p AuthPolicy) TLSConfig(serverName string) *tls.Config {
	cfg := &tls.Config{
		ServerName: serverName,
		RootCAs:    p.RootCAs,
	}

	cred := p.Credential
	cfg.GetClientCertificate = func(*tls.CertificateRequestInfo) (*tls.Certificate, error) {
		if d, c := ResolveClientCertificate(cred); d == UseCredential {
			return c, nil
		}

		// crypto/tls treats an empty certificate as "send none".
		return &tls.Certificate{}, nil
	}

	if eval := p.TrustEvaluator; eval != nil {
		// Custom validation replaces the default chain check entirely;
		// the evaluator's verdict decides the handshake.
		cfg.InsecureSkipVerify = true
		cfg.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			pt := PeerTrust{RawCerts: rawCerts, ServerName: serverName}

			if d, err := ResolveServerTrust(eval, pt); d == CancelHandshake {
				return err
			}

			return nil
		}
	}

	return cfg
}
