package testutil

import (
	"context"
	"crypto/tls"
	"net"
	"testing"
)

// StartRelay starts a fixture that forwards each accepted connection byte
// for byte to upstream, the way a tunneling proxy does once its control
// exchange is out of the way.
func StartRelay(t *testing.T, ctx context.Context, upstream string) net.Listener {
	t.Helper()

	return StartTCPServer(t, ctx, relayHandler(ctx, upstream))
}

// StartTLSRelay is StartRelay behind a server-side TLS handshake.
func StartTLSRelay(t *testing.T, ctx context.Context, conf *tls.Config, upstream string) net.Listener {
	t.Helper()

	return StartTLSServer(t, ctx, conf, relayHandler(ctx, upstream))
}

func relayHandler(ctx context.Context, upstream string) func(net.Conn) {
	return func(c net.Conn) {
		d := net.Dialer{}
		dst, err := d.DialContext(ctx, "tcp", upstream)
		if err != nil {
			return
		}
		_ = CopyBidirectional(ctx, c, dst)
	}
}
