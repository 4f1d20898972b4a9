package scraper

import (
	"context"
	"fmt"
	"net"

	tls2 "github.com/refraction-networking/utls"
)

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via
// utls. ALPN is pinned to http/1.1: net/http cannot speak h2 over a
// connection it did not negotiate itself.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	spec, err := tls2.UTLSIdToSpec(tls2.HelloChrome_Auto)
	if err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("chrome hello spec: %w", err)
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls2.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{ServerName: host}, tls2.HelloCustom)
	if err := tlsConn.ApplyPreset(&spec); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("apply chrome preset: %w", err)
	}

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
