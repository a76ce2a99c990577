package socks5

// Package socks5 implements the client half of the SOCKS5 TCP CONNECT
// handshake from RFC 1928, with optional username/password authentication
// from RFC 1929.
//
// It is pure wire protocol: callers bring an already-connected transport,
// an encoded destination address, and a Credential, and get back the
// proxy-reported bind address or an error naming exactly which step of the
// negotiation went wrong. Dialing and TLS are left to the caller.
