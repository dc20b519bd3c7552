package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	utls "github.com/refraction-networking/utls"
)

// Profile names the TLS ClientHello the transport presents.
type Profile string

const (
	ProfileGo      Profile = "go" // crypto/tls, no mimicry
	ProfileChrome  Profile = "chrome"
	ProfileFirefox Profile = "firefox"
	ProfileSafari  Profile = "safari"
)

var helloIDs = map[Profile]utls.ClientHelloID{
	ProfileChrome:  utls.HelloChrome_Auto,
	ProfileFirefox: utls.HelloFirefox_Auto,
	ProfileSafari:  utls.HelloIOS_Auto,
}

// ParseProfile maps a config string to a Profile. Empty means ProfileGo.
func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	if p == "" || p == ProfileGo {
		return ProfileGo, nil
	}
	if _, ok := helloIDs[p]; !ok {
		return "", fmt.Errorf("httpclient: unknown tls profile %q", s)
	}
	return p, nil
}

// NewTransport returns a RoundTripper for the profile. ProfileGo yields a
// clone of http.DefaultTransport; the browser profiles perform the TLS
// handshake through uTLS.
func NewTransport(p Profile) (http.RoundTripper, error) {
	p, err := ParseProfile(string(p))
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if p == ProfileGo {
		return transport, nil
	}

	helloID := helloIDs[p]
	transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		rawConn, err := transport.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		conn := utls.UClient(rawConn, &utls.Config{ServerName: host}, helloID)
		if err := http1Only(conn); err != nil {
			_ = rawConn.Close()
			return nil, fmt.Errorf("httpclient: utls hello for %s: %w", host, err)
		}
		if err := conn.HandshakeContext(ctx); err != nil {
			_ = rawConn.Close()
			return nil, fmt.Errorf("httpclient: utls handshake with %s: %w", host, err)
		}
		return conn, nil
	}

	return transport, nil
}

// http1Only rewrites the preset's ALPN offer so the server cannot pick h2,
// which a transport with a custom DialTLSContext does not speak.
func http1Only(conn *utls.UConn) error {
	if err := conn.BuildHandshakeState(); err != nil {
		return err
	}
	for _, ext := range conn.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}
	return conn.MarshalClientHello()
}
