package viaduct

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/die-net/viaduct/internal/socks5"
	"github.com/die-net/viaduct/internal/target"
)

// Stream is an established connection to the target, possibly tunneled
// through a proxy and possibly TLS-wrapped. It is exclusively owned by
// the caller; the client keeps no reference to it.
type Stream struct {
	conn      net.Conn
	target    target.Addr
	proxied   bool
	bind      socks5.BindAddr
	hasBind   bool
	ioTimeout time.Duration
}

func (s *Stream) Read(p []byte) (int, error)  { return s.conn.Read(p) }
func (s *Stream) Write(p []byte) (int, error) { return s.conn.Write(p) }
func (s *Stream) Close() error                { return s.conn.Close() }

// Proxied reports whether the stream runs through a proxy hop.
func (s *Stream) Proxied() bool { return s.proxied }

// BindAddr returns the address the SOCKS5 proxy reported binding for this
// tunnel, or "" for streams with no SOCKS5 hop.
func (s *Stream) BindAddr() string {
	if !s.hasBind {
		return ""
	}
	return s.bind.String()
}

// Get writes a minimal HTTP/1.0 GET for the target's path and returns the
// response body, everything after the first blank line. The whole
// exchange shares one deadline when the client was configured with an
// IOTimeout.
func (s *Stream) Get() ([]byte, error) {
	req := "GET " + s.target.Path() + " HTTP/1.0\r\nHost: " + s.target.Host() + "\r\n\r\n"
	return s.roundTrip([]byte(req))
}

// PostJSON writes an HTTP/1.0 POST with a JSON content type and body, and
// returns the response body. An empty body sends no Content-Length.
func (s *Stream) PostJSON(body []byte) ([]byte, error) {
	req := "POST " + s.target.Path() + " HTTP/1.0\r\nHost: " + s.target.Host() + "\r\nContent-Type: application/json\r\n"
	if len(body) > 0 {
		req += "Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + string(body)
	}
	req += "\r\n"
	return s.roundTrip([]byte(req))
}

func (s *Stream) roundTrip(req []byte) ([]byte, error) {
	if s.ioTimeout > 0 {
		_ = s.conn.SetDeadline(time.Now().Add(s.ioTimeout))
	}

	if _, err := s.conn.Write(req); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	resp, err := io.ReadAll(s.conn)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	i := bytes.Index(resp, []byte("\r\n\r\n"))
	if i < 0 {
		return nil, ErrMalformedResponse
	}
	return resp[i+4:], nil
}
