// Package viaduct establishes outbound TCP connections to a target host,
// either directly or through one level of proxying: an HTTP forwarding
// proxy that blindly relays bytes, or a SOCKS5 proxy with optional
// username/password authentication. Either hop can be wrapped in TLS, and
// the resulting stream carries just enough HTTP/1.0 to fetch a resource
// from the target.
package viaduct
