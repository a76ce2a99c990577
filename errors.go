package viaduct

import (
	"errors"

	"github.com/die-net/viaduct/internal/socks5"
	"github.com/die-net/viaduct/internal/target"
)

var (
	// ErrUnsupportedProxy marks a proxy URL whose scheme is not one the
	// client can tunnel through, or credentials offered to a proxy scheme
	// with no authentication exchange.
	ErrUnsupportedProxy = errors.New("unsupported proxy scheme")

	// ErrMalformedResponse marks a response that ended without a
	// header/body boundary.
	ErrMalformedResponse = errors.New("malformed http response: missing header terminator")

	ErrInvalidHost     = target.ErrInvalidHost
	ErrEmptyResolution = target.ErrEmptyResolution
	ErrDomainTooLong   = target.ErrDomainTooLong

	ErrAuthFailure         = socks5.ErrAuthFailure
	ErrUsernameTooLong     = socks5.ErrUsernameTooLong
	ErrPasswordTooLong     = socks5.ErrPasswordTooLong
	ErrInvalidReservedByte = socks5.ErrInvalidReservedByte
)

// ReplyError is the non-success status a SOCKS5 proxy answered the
// CONNECT request with. Match a specific status with errors.Is against a
// ReplyError value.
type ReplyError = socks5.ReplyError

// The reply statuses RFC 1928 names. Any other byte value is the
// unknown-status catch-all and still renders via ReplyError.
const (
	ReplyGeneralFailure          = ReplyError(socks5.ReplyGeneralSocksServerFailure)
	ReplyRulesetDenied           = ReplyError(socks5.ReplyConnectionNotAllowedByRuleset)
	ReplyNetworkUnreachable      = ReplyError(socks5.ReplyNetworkUnreachable)
	ReplyHostUnreachable         = ReplyError(socks5.ReplyHostUnreachable)
	ReplyConnectionRefused       = ReplyError(socks5.ReplyConnectionRefused)
	ReplyTTLExpired              = ReplyError(socks5.ReplyTTLExpired)
	ReplyCommandNotSupported     = ReplyError(socks5.ReplyCommandNotSupported)
	ReplyAddressTypeNotSupported = ReplyError(socks5.ReplyAddressTypeNotSupported)
)
