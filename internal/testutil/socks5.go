package testutil

import (
	"context"
	"fmt"
	"net"
	"testing"

	txsocks5 "github.com/txthinking/socks5"

	"github.com/die-net/viaduct/internal/transport"
)

// SOCKS5Auth configures the credentials a test SOCKS5 server demands.
// The zero value negotiates NO AUTHENTICATION REQUIRED.
type SOCKS5Auth struct {
	Username string
	Password string
}

// StartSOCKS5Server starts a loopback SOCKS5 server that handles CONNECT
// by dialing the requested destination and relaying bytes. Dial failures
// are reported with a reply code derived from the dial error.
func StartSOCKS5Server(t *testing.T, ctx context.Context, auth SOCKS5Auth) net.Listener {
	t.Helper()

	return StartTCPServer(t, ctx, func(c net.Conn) {
		_ = serveSOCKS5Connect(ctx, c, auth)
	})
}

func serveSOCKS5Connect(ctx context.Context, c net.Conn, auth SOCKS5Auth) error {
	if err := serverNegotiate(c, auth); err != nil {
		return err
	}

	req, err := txsocks5.NewRequestFrom(c)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	if req.Cmd != txsocks5.CmdConnect {
		_, _ = newZeroAddrReply(txsocks5.RepCommandNotSupported).WriteTo(c)
		return nil
	}

	d := net.Dialer{}
	dst, err := d.DialContext(ctx, "tcp", req.Address())
	if err != nil {
		_, _ = newZeroAddrReply(replyForDialError(err)).WriteTo(c)
		return nil
	}
	defer dst.Close()

	a, addr, port, err := txsocks5.ParseAddress(dst.LocalAddr().String())
	if err != nil {
		return fmt.Errorf("parse local address %q: %w", dst.LocalAddr().String(), err)
	}
	if a == txsocks5.ATYPDomain {
		addr = addr[1:]
	}
	if _, err := txsocks5.NewReply(txsocks5.RepSuccess, a, addr, port).WriteTo(c); err != nil {
		return fmt.Errorf("success reply: %w", err)
	}

	return CopyBidirectional(ctx, c, dst)
}

func serverNegotiate(c net.Conn, auth SOCKS5Auth) error {
	neg, err := txsocks5.NewNegotiationRequestFrom(c)
	if err != nil {
		return fmt.Errorf("negotiation request: %w", err)
	}

	if auth.Username != "" || auth.Password != "" {
		if !containsMethod(neg.Methods, txsocks5.MethodUsernamePassword) {
			writeNoAcceptableMethods(c)
			return fmt.Errorf("client does not support username/password")
		}
		if _, err := txsocks5.NewNegotiationReply(txsocks5.MethodUsernamePassword).WriteTo(c); err != nil {
			return fmt.Errorf("negotiation reply: %w", err)
		}

		urq, err := txsocks5.NewUserPassNegotiationRequestFrom(c)
		if err != nil {
			return fmt.Errorf("read userpass: %w", err)
		}
		if string(urq.Uname) != auth.Username || string(urq.Passwd) != auth.Password {
			_, _ = txsocks5.NewUserPassNegotiationReply(txsocks5.UserPassStatusFailure).WriteTo(c)
			return fmt.Errorf("auth failed")
		}
		if _, err := txsocks5.NewUserPassNegotiationReply(txsocks5.UserPassStatusSuccess).WriteTo(c); err != nil {
			return fmt.Errorf("write userpass: %w", err)
		}
		return nil
	}

	if !containsMethod(neg.Methods, txsocks5.MethodNone) {
		writeNoAcceptableMethods(c)
		return fmt.Errorf("client does not support no-auth")
	}
	if _, err := txsocks5.NewNegotiationReply(txsocks5.MethodNone).WriteTo(c); err != nil {
		return fmt.Errorf("negotiation reply: %w", err)
	}
	return nil
}

// replyForDialError picks the RFC 1928 reply code matching a dial error.
func replyForDialError(err error) byte {
	switch transport.DialResultCodeFromError(err) {
	case transport.DialResultCodeSuccess:
		return txsocks5.RepSuccess
	case transport.DialResultCodeEACCES:
		return txsocks5.RepNotAllowed
	case transport.DialResultCodeENETDOWN, transport.DialResultCodeENETUNREACH, transport.DialResultCodeENETRESET:
		return txsocks5.RepNetworkUnreachable
	case transport.DialResultCodeEHOSTDOWN, transport.DialResultCodeEHOSTUNREACH:
		return txsocks5.RepHostUnreachable
	case transport.DialResultCodeECONNREFUSED:
		return txsocks5.RepConnectionRefused
	default:
		return txsocks5.RepServerFailure
	}
}

func newZeroAddrReply(rep byte) *txsocks5.Reply {
	return txsocks5.NewReply(rep, txsocks5.ATYPIPv4, []byte{0x00, 0x00, 0x00, 0x00}, []byte{0x00, 0x00})
}

func writeNoAcceptableMethods(c net.Conn) {
	// RFC 1928: 0xFF indicates no acceptable methods.
	_, _ = txsocks5.NewNegotiationReply(0xff).WriteTo(c)
}

func containsMethod(methods []byte, want byte) bool {
	for _, m := range methods {
		if m == want {
			return true
		}
	}
	return false
}
