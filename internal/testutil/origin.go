package testutil

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Origin is a raw HTTP origin fixture. Each connection carries one
// request, which is recorded verbatim and answered with a fixed response
// before the connection closes.
type Origin struct {
	ln   net.Listener
	resp []byte

	mu  sync.Mutex
	req []byte
}

// StartOrigin starts an Origin answering every request with rawResponse.
func StartOrigin(t *testing.T, ctx context.Context, rawResponse []byte) *Origin {
	t.Helper()

	o := &Origin{resp: rawResponse}
	o.ln = StartTCPServer(t, ctx, o.handle)
	return o
}

// StartTLSOrigin is StartOrigin behind a server-side TLS handshake.
func StartTLSOrigin(t *testing.T, ctx context.Context, conf *tls.Config, rawResponse []byte) *Origin {
	t.Helper()

	o := &Origin{resp: rawResponse}
	o.ln = StartTLSServer(t, ctx, conf, o.handle)
	return o
}

// Addr returns the origin's host:port.
func (o *Origin) Addr() string {
	return o.ln.Addr().String()
}

// Request returns the raw bytes of the most recent request.
func (o *Origin) Request() []byte {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.req
}

func (o *Origin) handle(c net.Conn) {
	raw, err := readRawRequest(bufio.NewReader(c))

	o.mu.Lock()
	o.req = raw
	o.mu.Unlock()

	if err != nil {
		return
	}
	_, _ = c.Write(o.resp)
}

// readRawRequest reads one HTTP request verbatim: header lines through
// the blank line, then a body of Content-Length bytes if one is named.
func readRawRequest(br *bufio.Reader) ([]byte, error) {
	var raw []byte
	for {
		line, err := br.ReadBytes('\n')
		raw = append(raw, line...)
		if err != nil {
			return raw, err
		}
		if bytes.Equal(line, []byte("\r\n")) {
			break
		}
	}

	if n := contentLength(raw); n > 0 {
		body := make([]byte, n)
		if _, err := io.ReadFull(br, body); err != nil {
			return raw, err
		}
		raw = append(raw, body...)
	}
	return raw, nil
}

func contentLength(head []byte) int {
	for _, line := range bytes.Split(head, []byte("\r\n")) {
		k, v, ok := bytes.Cut(line, []byte(":"))
		if !ok || !strings.EqualFold(string(bytes.TrimSpace(k)), "Content-Length") {
			continue
		}
		if n, err := strconv.Atoi(string(bytes.TrimSpace(v))); err == nil {
			return n
		}
	}
	return 0
}
