package viaduct

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/die-net/viaduct/internal/socks5"
	"github.com/die-net/viaduct/internal/target"
	"github.com/die-net/viaduct/internal/transport"
	"github.com/die-net/viaduct/internal/urlsplit"
)

// Config carries the client's dialing and logging knobs. The zero value
// works: no timeouts beyond the caller's context, no keepalive, no TFO,
// certificates verified against the system roots, logging off.
type Config struct {
	// DialTimeout bounds the DNS lookup plus TCP connect of one dial.
	DialTimeout time.Duration

	// NegotiationTimeout bounds TLS handshakes and the SOCKS5 exchange.
	NegotiationTimeout time.Duration

	// IOTimeout bounds a whole Get or PostJSON exchange on a stream.
	IOTimeout time.Duration

	// KeepAlive is applied to every TCP connection.
	KeepAlive net.KeepAliveConfig

	// EnableTFO asks for TCP Fast Open on platforms that support it.
	EnableTFO bool

	// TLSConfig, if set, is the base for proxy and target TLS upgrades.
	TLSConfig *tls.Config

	// Logger receives debug-level connection lifecycle events. Nil
	// disables logging.
	Logger *zap.Logger
}

// Client opens tunneled connections to targets, directly or through one
// proxy hop. It keeps no state across connections; every call yields an
// independently owned stream.
type Client struct {
	cfg    Config
	dialer *transport.Dialer
	log    *zap.Logger
}

func New(cfg Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg: cfg,
		dialer: transport.NewDialer(transport.Config{
			DialTimeout:        cfg.DialTimeout,
			NegotiationTimeout: cfg.NegotiationTimeout,
			KeepAlive:          cfg.KeepAlive,
			EnableTFO:          cfg.EnableTFO,
			TLSConfig:          cfg.TLSConfig,
		}),
		log: log,
	}
}

// Connect opens a connection straight to rawTarget, upgrading it to TLS
// when the target scheme calls for it.
func (c *Client) Connect(ctx context.Context, rawTarget string) (*Stream, error) {
	tgt, err := target.Parse(rawTarget)
	if err != nil {
		return nil, err
	}

	addr, err := tgt.ResolveOne(ctx)
	if err != nil {
		return nil, err
	}

	c.log.Debug("connecting", zap.String("target", tgt.String()), zap.Stringer("addr", addr))

	conn, err := c.dialer.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return nil, err
	}

	if tgt.IsSecure() {
		conn, err = c.dialer.ClientTLS(ctx, conn, tgt.Host())
		if err != nil {
			return nil, err
		}
	}

	return c.newStream(conn, tgt, false, socks5.BindAddr{}, false), nil
}

// ConnectProxy opens a connection to rawTarget through the proxy at
// proxyURL. An http or https proxy is a blind forwarder: the proxy hop is
// TLS-wrapped for https, and the target never is. A socks5, socks5h, or
// socks5t proxy gets a CONNECT handshake without credentials, then the
// target is TLS-wrapped when its scheme calls for it.
func (c *Client) ConnectProxy(ctx context.Context, proxyURL, rawTarget string) (*Stream, error) {
	return c.connectProxy(ctx, proxyURL, rawTarget, socks5.NoAuth())
}

// ConnectProxyAuth is ConnectProxy with username/password authentication
// offered during SOCKS5 negotiation. Proxy schemes without an
// authentication exchange fail with ErrUnsupportedProxy.
func (c *Client) ConnectProxyAuth(ctx context.Context, proxyURL, rawTarget, username, password string) (*Stream, error) {
	return c.connectProxy(ctx, proxyURL, rawTarget, socks5.UsernamePassword(username, password))
}

func (c *Client) connectProxy(ctx context.Context, proxyURL, rawTarget string, cred socks5.Credential) (*Stream, error) {
	pu, err := urlsplit.Split(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy %q: %w", proxyURL, err)
	}

	tgt, err := target.Parse(rawTarget)
	if err != nil {
		return nil, err
	}

	switch pu.Scheme {
	case "http", "https":
		if cred.Method() != socks5.MethodNoAuth {
			return nil, fmt.Errorf("proxy scheme %q takes no credentials: %w", pu.Scheme, ErrUnsupportedProxy)
		}
		return c.connectHTTPProxy(ctx, pu, tgt)
	case "socks5", "socks5h", "socks5t":
		return c.connectSOCKS5Proxy(ctx, pu, tgt, cred)
	default:
		return nil, fmt.Errorf("proxy scheme %q: %w", pu.Scheme, ErrUnsupportedProxy)
	}
}

func (c *Client) connectHTTPProxy(ctx context.Context, pu *urlsplit.URL, tgt target.Addr) (*Stream, error) {
	proxyAddr := net.JoinHostPort(pu.Hostname(), pu.DefaultPort())

	conn, err := c.dialer.DialContext(ctx, "tcp", proxyAddr)
	if err != nil {
		return nil, err
	}

	if pu.Scheme == "https" {
		conn, err = c.dialer.ClientTLS(ctx, conn, pu.Hostname())
		if err != nil {
			return nil, err
		}
	}

	c.log.Debug("http proxy connected",
		zap.String("proxy", proxyAddr),
		zap.String("target", tgt.String()))

	// The proxy forwards bytes as-is; no TLS toward the target on this path.
	return c.newStream(conn, tgt, true, socks5.BindAddr{}, false), nil
}

func (c *Client) connectSOCKS5Proxy(ctx context.Context, pu *urlsplit.URL, tgt target.Addr, cred socks5.Credential) (*Stream, error) {
	if err := cred.Validate(); err != nil {
		return nil, err
	}

	dest, err := tgt.AppendSOCKSAddress(nil)
	if err != nil {
		return nil, err
	}

	proxyAddr := net.JoinHostPort(pu.Hostname(), pu.DefaultPort())

	conn, err := c.dialer.DialContext(ctx, "tcp", proxyAddr)
	if err != nil {
		return nil, err
	}

	if c.cfg.NegotiationTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.cfg.NegotiationTimeout))
	}

	bind, err := socks5.ClientHandshake(conn, cred, dest)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("socks5 handshake with %s: %w", proxyAddr, err)
	}

	_ = conn.SetDeadline(time.Time{})

	c.log.Debug("socks5 tunnel established",
		zap.String("proxy", proxyAddr),
		zap.String("target", tgt.String()),
		zap.String("bind", bind.String()))

	if tgt.IsSecure() {
		conn, err = c.dialer.ClientTLS(ctx, conn, tgt.Host())
		if err != nil {
			return nil, err
		}
	}

	return c.newStream(conn, tgt, true, bind, true), nil
}

func (c *Client) newStream(conn net.Conn, tgt target.Addr, proxied bool, bind socks5.BindAddr, hasBind bool) *Stream {
	return &Stream{
		conn:      conn,
		target:    tgt,
		proxied:   proxied,
		bind:      bind,
		hasBind:   hasBind,
		ioTimeout: c.cfg.IOTimeout,
	}
}
