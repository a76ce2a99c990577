package testutil

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"testing"
)

// StartTCPServer starts a loopback listener and serves every accepted
// connection with handler on its own goroutine. The listener and any
// open connections are closed at test cleanup, after which all handlers
// are waited for.
func StartTCPServer(t *testing.T, ctx context.Context, handler func(net.Conn)) net.Listener {
	t.Helper()

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var conns []net.Conn

	var wg sync.WaitGroup
	wg.Go(func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()

			wg.Go(func() {
				defer c.Close()
				handler(c)
			})
		}
	})

	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		for _, c := range conns {
			_ = c.Close()
		}
		mu.Unlock()
		wg.Wait()
	})

	return ln
}

// StartTLSServer is StartTCPServer with each connection upgraded by a
// server-side TLS handshake using conf before handler sees it.
func StartTLSServer(t *testing.T, ctx context.Context, conf *tls.Config, handler func(net.Conn)) net.Listener {
	t.Helper()

	return StartTCPServer(t, ctx, func(c net.Conn) {
		tc := tls.Server(c, conf)
		defer tc.Close()

		if err := tc.HandshakeContext(ctx); err != nil {
			return
		}
		handler(tc)
	})
}
