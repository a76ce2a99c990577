package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/database64128/tfo-go/v2"
)

// Config carries the knobs for dialing and upgrading connections.
type Config struct {
	// DialTimeout bounds the TCP connect, including any DNS lookup done
	// by the dialer. Zero means no limit beyond ctx.
	DialTimeout time.Duration

	// NegotiationTimeout bounds the TLS handshake on upgraded
	// connections. Zero means no deadline is set.
	NegotiationTimeout time.Duration

	// KeepAlive is applied to every TCP connection we open.
	KeepAlive net.KeepAliveConfig

	// EnableTFO sends the first data segment along with the SYN on
	// platforms that support TCP Fast Open.
	EnableTFO bool

	// TLSConfig, if set, is cloned and used as the base for TLS
	// upgrades. ServerName is filled in per connection.
	TLSConfig *tls.Config
}

// Dialer opens TCP connections per a fixed Config.
type Dialer struct {
	cfg Config
}

func NewDialer(cfg Config) *Dialer {
	return &Dialer{cfg: cfg}
}

// DialContext opens a TCP connection to address and applies the
// configured keepalive. With TFO enabled the connect may be deferred
// until the first write.
func (d *Dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	td := tfo.Dialer{
		Dialer:     net.Dialer{Timeout: d.cfg.DialTimeout},
		DisableTFO: !d.cfg.EnableTFO,
	}

	conn, err := td.DialContext(ctx, network, address, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s %s: %w", network, address, err)
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAliveConfig(d.cfg.KeepAlive)
	}

	return conn, nil
}

// ClientTLS upgrades conn to TLS, verifying the peer as serverName. On
// handshake failure the connection is closed.
func (d *Dialer) ClientTLS(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error) {
	var conf *tls.Config
	if d.cfg.TLSConfig != nil {
		conf = d.cfg.TLSConfig.Clone()
		if conf.MinVersion == 0 {
			conf.MinVersion = tls.VersionTLS12
		}
	} else {
		conf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	conf.ServerName = serverName

	tlsConn := tls.Client(conn, conf)
	if d.cfg.NegotiationTimeout > 0 {
		_ = tlsConn.SetDeadline(time.Now().Add(d.cfg.NegotiationTimeout))
	}

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = tlsConn.Close()
		return nil, fmt.Errorf("tls handshake with %s: %w", serverName, err)
	}

	_ = tlsConn.SetDeadline(time.Time{})
	return tlsConn, nil
}
