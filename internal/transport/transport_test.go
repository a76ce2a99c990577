package transport_test

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/die-net/viaduct/internal/testutil"
	"github.com/die-net/viaduct/internal/transport"
)

func TestDialContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ln := testutil.StartTCPServer(t, ctx, testutil.Echo)

	d := transport.NewDialer(transport.Config{
		DialTimeout: 2 * time.Second,
		KeepAlive:   net.KeepAliveConfig{Enable: true, Idle: 30 * time.Second},
	})

	conn, err := d.DialContext(ctx, "tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	testutil.AssertEcho(t, conn, conn, []byte("hello"))
}

func TestDialContextRefused(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Grab a loopback port and close it again so the dial is refused.
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	d := transport.NewDialer(transport.Config{DialTimeout: 2 * time.Second})

	_, err = d.DialContext(ctx, "tcp", addr)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := transport.DialResultCodeFromError(err); got != transport.DialResultCodeECONNREFUSED {
		t.Errorf("dial result code = %v, want ECONNREFUSED", got)
	}
}

func TestClientTLS(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	serverConf, clientConf := testutil.NewTLSConfigPair(t)
	ln := testutil.StartTLSServer(t, ctx, serverConf, testutil.Echo)

	d := transport.NewDialer(transport.Config{
		DialTimeout:        2 * time.Second,
		NegotiationTimeout: 2 * time.Second,
		TLSConfig:          clientConf,
	})

	conn, err := d.DialContext(ctx, "tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	tlsConn, err := d.ClientTLS(ctx, conn, "127.0.0.1")
	if err != nil {
		t.Fatal(err)
	}
	defer tlsConn.Close()

	testutil.AssertEcho(t, tlsConn, tlsConn, []byte("over tls"))
}

func TestClientTLSUnknownAuthority(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	serverConf, _ := testutil.NewTLSConfigPair(t)
	ln := testutil.StartTLSServer(t, ctx, serverConf, testutil.Echo)

	d := transport.NewDialer(transport.Config{DialTimeout: 2 * time.Second})

	conn, err := d.DialContext(ctx, "tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	_, err = d.ClientTLS(ctx, conn, "127.0.0.1")
	if err == nil {
		t.Fatal("expected certificate verification error")
	}
	if !strings.Contains(err.Error(), "tls handshake") {
		t.Errorf("unexpected error: %v", err)
	}
}
