package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/die-net/viaduct"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		proxy     = pflag.String("proxy", defaultProxy(), "Proxy URL: http://host:port | https://host:port | socks5://host:port | socks5h://host:port | socks5t://host:port. Empty connects directly.")
		proxyUser = pflag.String("proxy-user", "", "Username for SOCKS5 proxy authentication")
		proxyPass = pflag.String("proxy-pass", "", "Password for SOCKS5 proxy authentication")
		post      = pflag.String("post", "", "JSON body to POST instead of sending a GET")

		dialTimeout        = pflag.Duration("dial-timeout", 10*time.Second, "Timeout for outbound DNS lookup and TCP connect")
		negotiationTimeout = pflag.Duration("negotiation-timeout", 10*time.Second, "Timeout for TLS and SOCKS5 negotiation to set up the connection")
		ioTimeout          = pflag.Duration("io-timeout", 60*time.Second, "Timeout for the whole request/response exchange")
		tcpKeepAlive       = pflag.String("tcp-keepalive", "45:45:3", "TCP keepalive: on|off|keepidle:keepintvl:keepcnt")
		tfo                = pflag.Bool("tfo", false, "Enable TCP Fast Open on outbound connections")
		insecure           = pflag.Bool("insecure", false, "Skip TLS certificate verification")
		verbose            = pflag.Bool("verbose", false, "Enable connection lifecycle logging")
	)

	pflag.CommandLine.SortFlags = false
	pflag.Parse()

	if pflag.NArg() != 1 {
		return errors.New("usage: viaduct [flags] <target-url>")
	}
	targetURL := pflag.Arg(0)

	ka, err := parseTCPKeepAlive(*tcpKeepAlive)
	if err != nil {
		return fmt.Errorf("invalid --tcp-keepalive: %w", err)
	}

	logger := zap.NewNop()
	if *verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
	}

	cfg := viaduct.Config{
		DialTimeout:        *dialTimeout,
		NegotiationTimeout: *negotiationTimeout,
		IOTimeout:          *ioTimeout,
		KeepAlive:          ka,
		EnableTFO:          *tfo,
		Logger:             logger,
	}
	if *insecure {
		cfg.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // User explicitly asked to skip verification.
	}

	client := viaduct.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var stream *viaduct.Stream
	switch {
	case *proxy == "":
		stream, err = client.Connect(ctx, targetURL)
	case *proxyUser != "" || *proxyPass != "":
		stream, err = client.ConnectProxyAuth(ctx, *proxy, targetURL, *proxyUser, *proxyPass)
	default:
		stream, err = client.ConnectProxy(ctx, *proxy, targetURL)
	}
	if err != nil {
		return err
	}
	defer stream.Close()

	var body []byte
	if pflag.CommandLine.Changed("post") {
		body, err = stream.PostJSON([]byte(*post))
	} else {
		body, err = stream.Get()
	}
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(body)
	return err
}

func parseTCPKeepAlive(s string) (net.KeepAliveConfig, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return net.KeepAliveConfig{}, errors.New("empty")
	}
	if s == "on" {
		return net.KeepAliveConfig{Enable: true}, nil
	}
	if s == "off" {
		return net.KeepAliveConfig{Enable: false}, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return net.KeepAliveConfig{}, errors.New("expected on|off|keepidle:keepintvl:keepcnt")
	}
	keepIdle, err := parsePositiveSeconds(parts[0])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepidle: %w", err)
	}
	keepIntvl, err := parsePositiveSeconds(parts[1])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepintvl: %w", err)
	}
	keepCnt, err := parsePositiveInt(parts[2])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepcnt: %w", err)
	}

	return net.KeepAliveConfig{
		Enable:   true,
		Idle:     keepIdle,
		Interval: keepIntvl,
		Count:    keepCnt,
	}, nil
}

func parsePositiveSeconds(s string) (time.Duration, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be > 0")
	}
	return time.Duration(n) * time.Second, nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be > 0")
	}
	return n, nil
}

func defaultProxy() string {
	if p := os.Getenv("ALL_PROXY"); p != "" {
		return p
	}

	if p := os.Getenv("all_proxy"); p != "" {
		return p
	}

	return ""
}
