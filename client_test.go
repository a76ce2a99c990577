package viaduct_test

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/die-net/viaduct"
	"github.com/die-net/viaduct/internal/testutil"
)

var respOK = []byte("HTTP/1.0 200 OK\r\nContent-Type: text/plain\r\n\r\nhello viaduct")

func testConfig() viaduct.Config {
	return viaduct.Config{
		DialTimeout:        5 * time.Second,
		NegotiationTimeout: 5 * time.Second,
		IOTimeout:          5 * time.Second,
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestConnectDirectGet(t *testing.T) {
	ctx := testContext(t)
	origin := testutil.StartOrigin(t, ctx, respOK)

	client := viaduct.New(testConfig())

	stream, err := client.Connect(ctx, origin.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	if stream.Proxied() {
		t.Error("Proxied() = true for a direct connection")
	}
	if got := stream.BindAddr(); got != "" {
		t.Errorf("BindAddr() = %q, want empty", got)
	}

	body, err := stream.Get()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(body, []byte("hello viaduct")) {
		t.Errorf("body = %q", body)
	}

	want := "GET / HTTP/1.0\r\nHost: 127.0.0.1\r\n\r\n"
	if got := string(origin.Request()); got != want {
		t.Errorf("request = %q, want %q", got, want)
	}
}

func TestConnectDirectGetPath(t *testing.T) {
	ctx := testContext(t)
	origin := testutil.StartOrigin(t, ctx, respOK)

	client := viaduct.New(testConfig())

	// The query stays out of the request line; only the path is sent.
	stream, err := client.Connect(ctx, "http://"+origin.Addr()+"/a/b?q=1")
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	if _, err := stream.Get(); err != nil {
		t.Fatal(err)
	}

	want := "GET /a/b HTTP/1.0\r\nHost: 127.0.0.1\r\n\r\n"
	if got := string(origin.Request()); got != want {
		t.Errorf("request = %q, want %q", got, want)
	}
}

func TestConnectDirectTLS(t *testing.T) {
	ctx := testContext(t)
	serverConf, clientConf := testutil.NewTLSConfigPair(t)
	origin := testutil.StartTLSOrigin(t, ctx, serverConf, respOK)

	cfg := testConfig()
	cfg.TLSConfig = clientConf
	client := viaduct.New(cfg)

	stream, err := client.Connect(ctx, "https://"+origin.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	body, err := stream.Get()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(body, []byte("hello viaduct")) {
		t.Errorf("body = %q", body)
	}
}

func TestConnectProxySOCKS5(t *testing.T) {
	ctx := testContext(t)
	origin := testutil.StartOrigin(t, ctx, respOK)
	proxy := testutil.StartSOCKS5Server(t, ctx, testutil.SOCKS5Auth{})

	client := viaduct.New(testConfig())

	stream, err := client.ConnectProxy(ctx, "socks5://"+proxy.Addr().String(), origin.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	if !stream.Proxied() {
		t.Error("Proxied() = false for a tunneled connection")
	}
	if stream.BindAddr() == "" {
		t.Error("BindAddr() empty after a SOCKS5 handshake")
	}

	body, err := stream.Get()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(body, []byte("hello viaduct")) {
		t.Errorf("body = %q", body)
	}
}

func TestConnectProxySOCKS5Auth(t *testing.T) {
	ctx := testContext(t)
	origin := testutil.StartOrigin(t, ctx, respOK)
	proxy := testutil.StartSOCKS5Server(t, ctx, testutil.SOCKS5Auth{Username: "user", Password: "secret"})
	proxyURL := "socks5://" + proxy.Addr().String()

	client := viaduct.New(testConfig())

	stream, err := client.ConnectProxyAuth(ctx, proxyURL, origin.Addr(), "user", "secret")
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	body, err := stream.Get()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(body, []byte("hello viaduct")) {
		t.Errorf("body = %q", body)
	}
}

func TestConnectProxySOCKS5AuthRejected(t *testing.T) {
	ctx := testContext(t)
	proxy := testutil.StartSOCKS5Server(t, ctx, testutil.SOCKS5Auth{Username: "user", Password: "secret"})

	client := viaduct.New(testConfig())

	_, err := client.ConnectProxyAuth(ctx, "socks5://"+proxy.Addr().String(), "example.org:80", "user", "wrong")
	if !errors.Is(err, viaduct.ErrAuthFailure) {
		t.Fatalf("error = %v, want %v", err, viaduct.ErrAuthFailure)
	}
}

func TestConnectProxySOCKS5SecureTarget(t *testing.T) {
	ctx := testContext(t)
	serverConf, clientConf := testutil.NewTLSConfigPair(t)
	origin := testutil.StartTLSOrigin(t, ctx, serverConf, respOK)
	proxy := testutil.StartSOCKS5Server(t, ctx, testutil.SOCKS5Auth{})

	cfg := testConfig()
	cfg.TLSConfig = clientConf
	client := viaduct.New(cfg)

	stream, err := client.ConnectProxy(ctx, "socks5://"+proxy.Addr().String(), "https://"+origin.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	body, err := stream.Get()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(body, []byte("hello viaduct")) {
		t.Errorf("body = %q", body)
	}
}

func TestConnectProxyHTTP(t *testing.T) {
	ctx := testContext(t)
	origin := testutil.StartOrigin(t, ctx, respOK)
	relay := testutil.StartRelay(t, ctx, origin.Addr())

	client := viaduct.New(testConfig())

	stream, err := client.ConnectProxy(ctx, "http://"+relay.Addr().String(), origin.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	if !stream.Proxied() {
		t.Error("Proxied() = false for a proxied connection")
	}
	if got := stream.BindAddr(); got != "" {
		t.Errorf("BindAddr() = %q, want empty for an http proxy", got)
	}

	body, err := stream.Get()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(body, []byte("hello viaduct")) {
		t.Errorf("body = %q", body)
	}
}

func TestConnectProxyHTTPS(t *testing.T) {
	ctx := testContext(t)
	serverConf, clientConf := testutil.NewTLSConfigPair(t)
	origin := testutil.StartOrigin(t, ctx, respOK)
	relay := testutil.StartTLSRelay(t, ctx, serverConf, origin.Addr())

	cfg := testConfig()
	cfg.TLSConfig = clientConf
	client := viaduct.New(cfg)

	stream, err := client.ConnectProxy(ctx, "https://"+relay.Addr().String(), origin.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	body, err := stream.Get()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(body, []byte("hello viaduct")) {
		t.Errorf("body = %q", body)
	}
}

func TestConnectProxyUnsupportedScheme(t *testing.T) {
	ctx := testContext(t)
	client := viaduct.New(testConfig())

	tests := []struct {
		name  string
		proxy string
		auth  bool
	}{
		{name: "ftp", proxy: "ftp://127.0.0.1:21"},
		{name: "schemeless", proxy: "localhost:1080"},
		{name: "auth_on_http_proxy", proxy: "http://127.0.0.1:3128", auth: true},
		{name: "auth_on_ftp", proxy: "ftp://127.0.0.1:21", auth: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.auth {
				_, err = client.ConnectProxyAuth(ctx, tt.proxy, "example.org:80", "u", "p")
			} else {
				_, err = client.ConnectProxy(ctx, tt.proxy, "example.org:80")
			}
			if !errors.Is(err, viaduct.ErrUnsupportedProxy) {
				t.Errorf("error = %v, want %v", err, viaduct.ErrUnsupportedProxy)
			}
		})
	}
}

func TestConnectProxyAuthCredentialTooLong(t *testing.T) {
	ctx := testContext(t)
	client := viaduct.New(testConfig())
	long := strings.Repeat("a", 256)

	// The proxy address points nowhere; validation must fail before any
	// dial is attempted.
	_, err := client.ConnectProxyAuth(ctx, "socks5://127.0.0.1:1", "example.org:80", long, "p")
	if !errors.Is(err, viaduct.ErrUsernameTooLong) {
		t.Fatalf("error = %v, want %v", err, viaduct.ErrUsernameTooLong)
	}

	_, err = client.ConnectProxyAuth(ctx, "socks5://127.0.0.1:1", "example.org:80", "u", long)
	if !errors.Is(err, viaduct.ErrPasswordTooLong) {
		t.Fatalf("error = %v, want %v", err, viaduct.ErrPasswordTooLong)
	}
}

func TestConnectProxyConnectionRefusedUpstream(t *testing.T) {
	ctx := testContext(t)
	proxy := testutil.StartSOCKS5Server(t, ctx, testutil.SOCKS5Auth{})

	// Grab a loopback port and close it again so the proxy's dial to the
	// target is refused.
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	deadAddr := ln.Addr().String()
	_ = ln.Close()

	client := viaduct.New(testConfig())

	_, err = client.ConnectProxy(ctx, "socks5://"+proxy.Addr().String(), deadAddr)
	if !errors.Is(err, viaduct.ReplyConnectionRefused) {
		t.Fatalf("error = %v, want %v", err, viaduct.ReplyConnectionRefused)
	}
}

func TestGetMalformedResponse(t *testing.T) {
	ctx := testContext(t)
	origin := testutil.StartOrigin(t, ctx, []byte("HTTP/1.0 200 OK\r\nno header terminator"))
	proxy := testutil.StartSOCKS5Server(t, ctx, testutil.SOCKS5Auth{})

	client := viaduct.New(testConfig())

	stream, err := client.ConnectProxy(ctx, "socks5://"+proxy.Addr().String(), origin.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	if _, err := stream.Get(); !errors.Is(err, viaduct.ErrMalformedResponse) {
		t.Fatalf("Get() error = %v, want %v", err, viaduct.ErrMalformedResponse)
	}
}

func TestPostJSON(t *testing.T) {
	ctx := testContext(t)
	origin := testutil.StartOrigin(t, ctx, respOK)

	client := viaduct.New(testConfig())

	stream, err := client.Connect(ctx, origin.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	payload := []byte(`{"q":1}`)
	body, err := stream.PostJSON(payload)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(body, []byte("hello viaduct")) {
		t.Errorf("body = %q", body)
	}

	req := origin.Request()
	for _, want := range []string{
		"POST / HTTP/1.0\r\n",
		"Host: 127.0.0.1\r\n",
		"Content-Type: application/json\r\n",
		"Content-Length: 7\r\n",
		`{"q":1}`,
	} {
		if !bytes.Contains(req, []byte(want)) {
			t.Errorf("request %q missing %q", req, want)
		}
	}
}

func TestPostJSONEmptyBody(t *testing.T) {
	ctx := testContext(t)
	origin := testutil.StartOrigin(t, ctx, respOK)

	client := viaduct.New(testConfig())

	stream, err := client.Connect(ctx, origin.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	if _, err := stream.PostJSON(nil); err != nil {
		t.Fatal(err)
	}

	req := origin.Request()
	if bytes.Contains(req, []byte("Content-Length")) {
		t.Errorf("request %q carries a Content-Length for an empty body", req)
	}
}

func TestConnectInvalidTarget(t *testing.T) {
	ctx := testContext(t)
	client := viaduct.New(testConfig())

	if _, err := client.Connect(ctx, "http://"); !errors.Is(err, viaduct.ErrInvalidHost) {
		t.Fatalf("error = %v, want %v", err, viaduct.ErrInvalidHost)
	}
}
