package testutil

import (
	"bytes"
	"io"
	"net"
	"testing"
)

// Echo is a StartTCPServer handler that copies everything it reads back
// to the peer until EOF.
func Echo(c net.Conn) {
	_, _ = io.Copy(c, c)
}

func AssertEcho(t *testing.T, w io.Writer, r io.Reader, msg []byte) {
	t.Helper()

	if _, err := w.Write(msg); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, len(msg))
	if _, err := io.ReadFull(r, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, msg) {
		t.Fatalf("expected %q got %q", string(msg), string(buf))
	}
}
