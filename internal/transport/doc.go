package transport

// Package transport opens and upgrades the TCP connections the tunnel
// rides on: plain dials with optional TCP Fast Open and keepalive, TLS
// client upgrades with a negotiation deadline, and classification of dial
// failures into portable result codes.
//
// Callers hold net.Conn whichever way the connection was produced; nothing
// downstream branches on plain versus TLS.
