package transport

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"time"
)

// TLSConn is the TLS 1.3 over TCP backend. The stream semantics match
// TCPConn; the handshake runs during Connect and its failure is a connect
// failure, not a send/receive error.
type TLSConn struct {
	netConn

	// Config is the client TLS configuration. Nil selects the insecure lab
	// default (self-signed reflector certs, no verification).
	Config *tls.Config

	state tls.ConnectionState
}

// NewTLSConn creates a disconnected TLS conn using the given client config.
// Pass nil for the insecure lab default.
func NewTLSConn(config *tls.Config) *TLSConn {
	return &TLSConn{Config: config}
}

// Connect dials TCP, runs the TLS 1.3 handshake and verifies version + ALPN.
func (c *TLSConn) Connect(ctx context.Context, ep Endpoint) error {
	if err := ep.Validate(); err != nil {
		return err
	}
	if c.connected() {
		return ErrAlreadyConnected
	}

	conf := c.Config
	if conf == nil {
		conf = NewInsecureClientTLSConfig()
	}
	if conf.ServerName == "" && !conf.InsecureSkipVerify {
		conf = conf.Clone()
		conf.ServerName = ep.Host
	}

	dialer := &net.Dialer{}
	nc, err := dialer.DialContext(ctx, "tcp", ep.Address())
	if err != nil {
		return fmt.Errorf("connect %s: %w: %w", ep.Address(), ErrConnectFailure, err)
	}

	tlsConn := tls.Client(nc, conf)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		nc.Close()
		return fmt.Errorf("connect %s: %w: handshake: %w", ep.Address(), ErrConnectFailure, err)
	}

	state := tlsConn.ConnectionState()
	if err := VerifyConnection(state); err != nil {
		tlsConn.Close()
		return fmt.Errorf("connect %s: %w: %w", ep.Address(), ErrConnectFailure, err)
	}

	c.state = state
	c.attach(tlsConn, ep, "tls")
	return nil
}

// TLSState returns the state of the live TLS connection.
func (c *TLSConn) TLSState() tls.ConnectionState {
	return c.state
}

// NewClientTLSConfig creates the client TLS configuration: TLS 1.3 only,
// ALPN echoqual/1, verification against the given root pool.
func NewClientTLSConfig(roots *x509.CertPool, serverName string) *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS13,
		MaxVersion: tls.VersionTLS13,
		RootCAs:    roots,
		ServerName: serverName,
		NextProtos: []string{ALPNProtocol},
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
	}
}

// NewInsecureClientTLSConfig creates the lab-rig client configuration:
// TLS 1.3 with certificate verification disabled, for reflectors running on
// self-signed certificates. Never use outside a test bench.
func NewInsecureClientTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS13,
		MaxVersion:         tls.VersionTLS13,
		InsecureSkipVerify: true,
		NextProtos:         []string{ALPNProtocol},
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
	}
}

// NewServerTLSConfig creates the reflector-side TLS configuration.
func NewServerTLSConfig(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		MinVersion:   tls.VersionTLS13,
		MaxVersion:   tls.VersionTLS13,
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{ALPNProtocol},
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
	}
}

// VerifyTLS13 checks that a TLS connection is using TLS 1.3.
func VerifyTLS13(state tls.ConnectionState) error {
	if state.Version != tls.VersionTLS13 {
		return fmt.Errorf("TLS version %x is not TLS 1.3 (0x0304)", state.Version)
	}
	return nil
}

// VerifyALPN checks that the negotiated ALPN protocol is correct.
func VerifyALPN(state tls.ConnectionState) error {
	if state.NegotiatedProtocol != ALPNProtocol {
		return fmt.Errorf("ALPN protocol %q is not %q", state.NegotiatedProtocol, ALPNProtocol)
	}
	return nil
}

// VerifyConnection performs the standard post-handshake checks.
func VerifyConnection(state tls.ConnectionState) error {
	if err := VerifyTLS13(state); err != nil {
		return err
	}
	return VerifyALPN(state)
}

// GenerateSelfSignedCert creates an ephemeral ECDSA P-256 certificate for the
// given hosts, valid for 24 hours. Used by lab reflectors started without
// -cert/-key and by TLS tests.
func GenerateSelfSignedCert(hosts ...string) (tls.Certificate, error) {
	privKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generate key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generate serial: %w", err)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName:   "echoqual-reflector",
			Organization: []string{"echoqual lab"},
		},
		NotBefore:             now.Add(-1 * time.Hour),
		NotAfter:              now.Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &privKey.PublicKey, privKey)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("create certificate: %w", err)
	}

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  privKey,
	}, nil
}
