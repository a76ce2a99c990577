package socks5

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"net/netip"
	"strconv"
)

// BindAddr is the server-reported bound address from a CONNECT reply. It
// is informational and is not used to route further traffic.
type BindAddr struct {
	Domain string
	IP     netip.Addr
	Port   uint16
}

// Host returns the domain name or the IP literal, whichever is set.
func (b BindAddr) Host() string {
	if b.Domain != "" {
		return b.Domain
	}
	return b.IP.String()
}

func (b BindAddr) String() string {
	return net.JoinHostPort(b.Host(), strconv.Itoa(int(b.Port)))
}

// ClientHandshake negotiates authentication and issues a CONNECT over rw,
// which must already be connected to the proxy. dest is the destination in
// the RFC 1928 address format (type, address, port). On success the
// connection is tunneled to the destination and rw carries end-to-end
// traffic from the next byte on.
func ClientHandshake(rw io.ReadWriter, cred Credential, dest []byte) (BindAddr, error) {
	if err := ClientNegotiate(rw, cred); err != nil {
		return BindAddr{}, err
	}
	return ClientConnect(rw, dest)
}

// ClientNegotiate runs method selection and, when cred calls for it, the
// username/password sub-negotiation. The credential is validated before
// the first byte is written.
func ClientNegotiate(rw io.ReadWriter, cred Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	// The greeting offers exactly one method:
	//	field 1: SOCKS version, 1 byte
	//	field 2: number of methods offered, 1 byte
	//	field 3: method codes, 1 byte per method
	if _, err := rw.Write([]byte{Version, 1, cred.Method()}); err != nil {
		return fmt.Errorf("write greeting: %w", err)
	}

	// The server answers with its selection:
	//	field 1: SOCKS version, 1 byte
	//	field 2: chosen method, 1 byte, 0xFF if none offered is acceptable
	var buf [2]byte
	if _, err := io.ReadFull(rw, buf[:]); err != nil {
		return fmt.Errorf("read method selection: %w", err)
	}
	if buf[0] != Version {
		return UnsupportedVersionError(buf[0])
	}
	if buf[1] != cred.Method() {
		return UnsupportedAuthMethodError(buf[1])
	}

	if cred.Method() != MethodUsernamePassword {
		return nil
	}

	if _, err := rw.Write(cred.appendAuthRequest(nil)); err != nil {
		return fmt.Errorf("write auth request: %w", err)
	}

	// The sub-negotiation reply:
	//	field 1: auth version, 1 byte
	//	field 2: status, 1 byte, 0 for success
	if _, err := io.ReadFull(rw, buf[:]); err != nil {
		return fmt.Errorf("read auth reply: %w", err)
	}
	if buf[0] != AuthVersion {
		return UnsupportedAuthVersionError(buf[0])
	}
	if buf[1] != 0 {
		return ErrAuthFailure
	}

	return nil
}

// ClientConnect issues a CONNECT request for dest and parses the reply.
func ClientConnect(rw io.ReadWriter, dest []byte) (BindAddr, error) {
	// The connection request:
	//	field 1: SOCKS version, 1 byte
	//	field 2: command code, 1 byte, 1 for a TCP stream connection
	//	field 3: reserved, must be 0, 1 byte
	//	fields 4-6: destination type, address, and port
	req := make([]byte, 0, 3+len(dest))
	req = append(req, Version, CmdConnect, 0)
	req = append(req, dest...)
	if _, err := rw.Write(req); err != nil {
		return BindAddr{}, fmt.Errorf("write connect request: %w", err)
	}

	// The fixed part of the reply:
	//	field 1: SOCKS version, 1 byte
	//	field 2: status, 1 byte, 0 for request granted
	//	field 3: reserved, must be 0, 1 byte
	//	field 4: bind address type, 1 byte
	var buf [4]byte
	if _, err := io.ReadFull(rw, buf[:]); err != nil {
		return BindAddr{}, fmt.Errorf("read connect reply: %w", err)
	}
	if buf[0] != Version {
		return BindAddr{}, UnsupportedVersionError(buf[0])
	}
	if buf[1] != ReplySucceeded {
		return BindAddr{}, ReplyError(buf[1])
	}
	if buf[2] != 0 {
		return BindAddr{}, ErrInvalidReservedByte
	}

	return readBindAddr(rw, buf[3])
}

// readBindAddr reads the variable tail of a CONNECT reply: the bound
// address in the format selected by addrType, then the bound port.
func readBindAddr(r io.Reader, addrType byte) (BindAddr, error) {
	var bind BindAddr

	switch addrType {
	case AddressTypeIPv4:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return BindAddr{}, fmt.Errorf("read bind address: %w", err)
		}
		bind.IP = netip.AddrFrom4(buf)
	case AddressTypeDomain:
		var length [1]byte
		if _, err := io.ReadFull(r, length[:]); err != nil {
			return BindAddr{}, fmt.Errorf("read bind address length: %w", err)
		}
		buf := make([]byte, length[0])
		if _, err := io.ReadFull(r, buf); err != nil {
			return BindAddr{}, fmt.Errorf("read bind address: %w", err)
		}
		bind.Domain = string(buf)
	case AddressTypeIPv6:
		var buf [16]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return BindAddr{}, fmt.Errorf("read bind address: %w", err)
		}
		bind.IP = netip.AddrFrom16(buf)
	default:
		return BindAddr{}, UnsupportedAddressTypeError(addrType)
	}

	var port [2]byte
	if _, err := io.ReadFull(r, port[:]); err != nil {
		return BindAddr{}, fmt.Errorf("read bind port: %w", err)
	}
	bind.Port = binary.BigEndian.Uint16(port[:])

	return bind, nil
}
