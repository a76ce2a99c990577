package socks5

// Wire constants from RFC 1928 and RFC 1929.
const (
	Version     = 5
	AuthVersion = 1

	MethodNoAuth           = 0
	MethodUsernamePassword = 2
	MethodNoAcceptable     = 0xFF

	CmdConnect = 1

	AddressTypeIPv4   = 1
	AddressTypeDomain = 3
	AddressTypeIPv6   = 4
)

// CONNECT reply codes.
const (
	ReplySucceeded                     = 0
	ReplyGeneralSocksServerFailure     = 1
	ReplyConnectionNotAllowedByRuleset = 2
	ReplyNetworkUnreachable            = 3
	ReplyHostUnreachable               = 4
	ReplyConnectionRefused             = 5
	ReplyTTLExpired                    = 6
	ReplyCommandNotSupported           = 7
	ReplyAddressTypeNotSupported       = 8
)
