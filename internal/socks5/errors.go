package socks5

import (
	"errors"
	"fmt"
)

var (
	ErrAuthFailure         = errors.New("username/password authentication failed")
	ErrInvalidReservedByte = errors.New("invalid reserved byte in reply")
	ErrUsernameTooLong     = errors.New("username longer than 255 bytes")
	ErrPasswordTooLong     = errors.New("password longer than 255 bytes")
)

// UnsupportedVersionError is returned when a version byte from the server
// is not the SOCKS5 version.
type UnsupportedVersionError byte

func (v UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported SOCKS version: %#x", byte(v))
}

func (UnsupportedVersionError) Is(target error) bool {
	return target == errors.ErrUnsupported
}

// UnsupportedAuthMethodError is returned when the server selects an
// authentication method other than the one offered, including the 0xFF
// "no acceptable methods" answer.
type UnsupportedAuthMethodError byte

func (m UnsupportedAuthMethodError) Error() string {
	return fmt.Sprintf("unsupported authentication method: %#x", byte(m))
}

func (UnsupportedAuthMethodError) Is(target error) bool {
	return target == errors.ErrUnsupported
}

// UnsupportedAuthVersionError is returned when the username/password reply
// does not carry the RFC 1929 version.
type UnsupportedAuthVersionError byte

func (v UnsupportedAuthVersionError) Error() string {
	return fmt.Sprintf("unsupported authentication version: %#x", byte(v))
}

func (UnsupportedAuthVersionError) Is(target error) bool {
	return target == errors.ErrUnsupported
}

// UnsupportedAddressTypeError is returned for a bind address type other
// than IPv4, IPv6, or domain.
type UnsupportedAddressTypeError byte

func (t UnsupportedAddressTypeError) Error() string {
	return fmt.Sprintf("unsupported address type: %#x", byte(t))
}

func (UnsupportedAddressTypeError) Is(target error) bool {
	return target == errors.ErrUnsupported
}

// ReplyError is a non-zero status code from a CONNECT reply, one distinct
// value per RFC 1928 reply code.
type ReplyError byte

func (e ReplyError) Error() string {
	switch e {
	case ReplyGeneralSocksServerFailure:
		return "general SOCKS server failure"
	case ReplyConnectionNotAllowedByRuleset:
		return "connection not allowed by ruleset"
	case ReplyNetworkUnreachable:
		return "network unreachable"
	case ReplyHostUnreachable:
		return "host unreachable"
	case ReplyConnectionRefused:
		return "connection refused"
	case ReplyTTLExpired:
		return "TTL expired"
	case ReplyCommandNotSupported:
		return "command not supported"
	case ReplyAddressTypeNotSupported:
		return "address type not supported"
	default:
		return fmt.Sprintf("unknown SOCKS5 reply code: %#x", byte(e))
	}
}
