package target

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/die-net/viaduct/internal/socks5"
	"github.com/die-net/viaduct/internal/urlsplit"
)

var (
	ErrInvalidHost     = errors.New("invalid target host")
	ErrEmptyResolution = errors.New("target resolved to no addresses")
	ErrDomainTooLong   = errors.New("domain name longer than 255 bytes")
)

// Addr is a parsed target endpoint. It is an immutable value: parsing
// the same string twice yields equal Addrs, and copies may be shared
// freely.
type Addr struct {
	scheme string
	host   string     // bracketless
	ip     netip.Addr // invalid for a domain host
	port   uint16
	path   string
}

// Parse decomposes raw into a target address. Input without a scheme
// gets one inferred: https when the part before the first slash ends in
// port 443, http otherwise. The port defaults per scheme when not
// explicit.
func Parse(raw string) (Addr, error) {
	if !strings.Contains(raw, "://") {
		authority, _, _ := strings.Cut(raw, "/")
		if strings.HasSuffix(authority, ":443") {
			raw = "https://" + raw
		} else {
			raw = "http://" + raw
		}
	}

	u, err := urlsplit.Split(raw)
	if err != nil {
		return Addr{}, fmt.Errorf("%w: %w", ErrInvalidHost, err)
	}

	host := u.Hostname()
	if host == "" {
		return Addr{}, fmt.Errorf("%w: %q has no host", ErrInvalidHost, raw)
	}

	a := Addr{
		scheme: u.Scheme,
		host:   host,
		path:   u.Path,
	}
	if a.path == "" {
		a.path = "/"
	}

	// A host that is not an IP literal is a domain name.
	a.ip, _ = netip.ParseAddr(host)

	switch {
	case u.Port != "":
		n, err := strconv.ParseUint(u.Port, 10, 16)
		if err != nil {
			return Addr{}, fmt.Errorf("%w: port %q", ErrInvalidHost, u.Port)
		}
		a.port = uint16(n)
	default:
		if port, ok := urlsplit.PortForScheme(u.Scheme); ok {
			a.port = port
		} else {
			// Historical fallback for schemes with no well-known port.
			a.port = 80
		}
	}

	return a, nil
}

// IsSecure reports whether the connection to the target gets a TLS
// upgrade.
func (a Addr) IsSecure() bool { return a.scheme == "https" }

func (a Addr) Scheme() string { return a.scheme }

// Host returns the hostname without IPv6 brackets, suitable as a TLS
// server name and a Host header value.
func (a Addr) Host() string { return a.host }

// Path returns the request-line path, "/" when the URL had none. The
// query is not included.
func (a Addr) Path() string { return a.path }

func (a Addr) Port() uint16 { return a.port }

// PortBytes returns the port in network byte order.
func (a Addr) PortBytes() [2]byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], a.port)
	return b
}

// Type returns the RFC 1928 address type of the host.
func (a Addr) Type() byte {
	switch {
	case a.ip.Is4():
		return socks5.AddressTypeIPv4
	case a.ip.IsValid():
		return socks5.AddressTypeIPv6
	default:
		return socks5.AddressTypeDomain
	}
}

// HostBytes returns the host as it goes on the wire: 4 or 16 raw
// network-order bytes for an IP literal, the name's bytes for a domain.
// There is no length prefix at this level.
func (a Addr) HostBytes() []byte {
	switch {
	case a.ip.Is4():
		b := a.ip.As4()
		return b[:]
	case a.ip.IsValid():
		b := a.ip.As16()
		return b[:]
	default:
		return []byte(a.host)
	}
}

// AppendSOCKSAddress appends the RFC 1928 destination address to dst:
// the address type, the length-prefixed domain or raw IP bytes, then the
// big-endian port. A domain whose length does not fit the one-byte
// prefix fails before anything is appended.
func (a Addr) AppendSOCKSAddress(dst []byte) ([]byte, error) {
	switch t := a.Type(); t {
	case socks5.AddressTypeDomain:
		if len(a.host) > 255 {
			return nil, ErrDomainTooLong
		}
		dst = append(dst, t, byte(len(a.host)))
		dst = append(dst, a.host...)
	default:
		dst = append(dst, t)
		dst = append(dst, a.HostBytes()...)
	}
	return binary.BigEndian.AppendUint16(dst, a.port), nil
}

// Resolve returns the socket addresses the target maps to, with the
// effective port applied. An IP literal short-circuits; a domain goes
// through the default resolver.
func (a Addr) Resolve(ctx context.Context) ([]netip.AddrPort, error) {
	if a.ip.IsValid() {
		return []netip.AddrPort{netip.AddrPortFrom(a.ip, a.port)}, nil
	}

	ips, err := net.DefaultResolver.LookupNetIP(ctx, "ip", a.host)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", a.host, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyResolution, a.host)
	}

	addrs := make([]netip.AddrPort, len(ips))
	for i, ip := range ips {
		addrs[i] = netip.AddrPortFrom(ip, a.port)
	}
	return addrs, nil
}

// ResolveOne returns the first address Resolve yields.
func (a Addr) ResolveOne(ctx context.Context) (netip.AddrPort, error) {
	addrs, err := a.Resolve(ctx)
	if err != nil {
		return netip.AddrPort{}, err
	}
	return addrs[0], nil
}

// String renders host:port, bracketing IPv6 hosts.
func (a Addr) String() string {
	return net.JoinHostPort(a.host, strconv.Itoa(int(a.port)))
}
