package target

// Package target models the endpoint a tunnel terminates at: a host of
// one of the three SOCKS5 address kinds (IPv4, IPv6, domain), a port
// resolved from the URL or the scheme, and the path for the request
// line. It infers a scheme for bare host:port input, encodes the RFC
// 1928 destination address, and resolves domain hosts to socket
// addresses.
