package socks5

// Credential selects the authentication method offered in the greeting and
// carries the username and password for the RFC 1929 sub-negotiation.
type Credential struct {
	method   byte
	username string
	password string
}

// NoAuth returns a credential for the "no authentication required" method.
func NoAuth() Credential {
	return Credential{method: MethodNoAuth}
}

// UsernamePassword returns a credential for the username/password method.
// Empty values are allowed; whether they satisfy the server is the
// server's call.
func UsernamePassword(username, password string) Credential {
	return Credential{method: MethodUsernamePassword, username: username, password: password}
}

// Method returns the method code offered in the greeting.
func (c Credential) Method() byte {
	return c.method
}

// Validate checks the one-byte length limits of the sub-negotiation
// request. It runs before anything is written to the proxy.
func (c Credential) Validate() error {
	if len(c.username) > 255 {
		return ErrUsernameTooLong
	}
	if len(c.password) > 255 {
		return ErrPasswordTooLong
	}
	return nil
}

// appendAuthRequest appends the RFC 1929 username/password request:
//	field 1: auth version, 1 byte
//	field 2: username length, 1 byte
//	field 3: username, 0-255 bytes
//	field 4: password length, 1 byte
//	field 5: password, 0-255 bytes
func (c Credential) appendAuthRequest(b []byte) []byte {
	b = append(b, AuthVersion, byte(len(c.username)))
	b = append(b, c.username...)
	b = append(b, byte(len(c.password)))
	return append(b, c.password...)
}
