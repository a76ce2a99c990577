package urlsplit

import (
	"errors"
	"strconv"
	"strings"
)

// Split failures, one per malformed component.
var (
	ErrEmpty          = errors.New("empty url")
	ErrControlByte    = errors.New("invalid control character in url")
	ErrMissingScheme  = errors.New("missing protocol scheme")
	ErrPathColon      = errors.New("first path segment in url cannot contain colon")
	ErrMissingBracket = errors.New("missing ']' in host")
	ErrInvalidPort    = errors.New("invalid port after host")
)

// URL holds the components of a split URL. Fields keep the exact bytes of
// the input: nothing is unescaped or canonicalized, and an IPv6 Host keeps
// its square brackets. An empty field means the component was absent.
type URL struct {
	Scheme   string // lowercased
	Opaque   string // set instead of Host for schemeless input with no path, e.g. "127.0.0.1:8080"
	User     string
	Password string
	Host     string
	Port     string
	Path     string // includes the leading slash
	Query    string
	Fragment string
}

// Split decomposes raw into its URL components. It accepts anything
// URL-shaped rather than enforcing RFC 3986: hosts are not validated
// against any grammar, userinfo splits at the first "@", and only the
// port is checked for well-formedness.
func Split(raw string) (*URL, error) {
	if raw == "" {
		return nil, ErrEmpty
	}
	if containsCTLByte(raw) {
		return nil, ErrControlByte
	}

	u := &URL{}

	if raw == "*" {
		u.Path = "*"
		return u, nil
	}

	scheme, rest, err := splitScheme(raw)
	if err != nil {
		return nil, err
	}
	u.Scheme = scheme

	rest, u.Query, _ = strings.Cut(rest, "?")

	if !strings.Contains(rest, "/") {
		if u.Scheme == "" {
			u.Opaque = rest
			return u, nil
		}
		if strings.Contains(rest, ":") {
			return nil, ErrPathColon
		}
	}

	rest, u.Fragment, _ = strings.Cut(rest, "#")

	rest = strings.TrimPrefix(rest, "//")

	if userinfo, after, ok := strings.Cut(rest, "@"); ok {
		u.User, u.Password, _ = strings.Cut(userinfo, ":")
		rest = after
	}

	if i := strings.IndexByte(rest, '/'); i >= 0 {
		u.Path = rest[i:]
		rest = rest[:i]
	}

	u.Host, u.Port, err = splitHostPort(rest)
	if err != nil {
		return nil, err
	}

	return u, nil
}

// Hostname returns Host with any IPv6 brackets removed.
func (u *URL) Hostname() string {
	if strings.HasPrefix(u.Host, "[") && strings.HasSuffix(u.Host, "]") {
		return u.Host[1 : len(u.Host)-1]
	}
	return u.Host
}

// splitScheme peels "scheme:" off the front of raw. A leading digit or a
// character outside [a-zA-Z0-9+-.] means raw has no scheme; a leading
// colon is malformed.
func splitScheme(raw string) (scheme, rest string, err error) {
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' || c == '+' || c == '-' || c == '.':
			if i == 0 {
				return "", raw, nil
			}
		case c == ':':
			if i == 0 {
				return "", "", ErrMissingScheme
			}
			return strings.ToLower(raw[:i]), raw[i+1:], nil
		default:
			return "", raw, nil
		}
	}
	return "", raw, nil
}

// splitHostPort splits the authority at the last colon, honoring IPv6
// brackets. The port, when present, must be a decimal 16-bit number.
func splitHostPort(raw string) (host, port string, err error) {
	i := strings.LastIndexByte(raw, ':')
	if i < 0 {
		return raw, "", nil
	}

	if start := strings.IndexByte(raw, '['); start >= 0 {
		end := strings.IndexByte(raw, ']')
		switch {
		case end < 0:
			return "", "", ErrMissingBracket
		case start == 0 && i == end+1:
			host, port = raw[:i], raw[i+1:]
		case start == 0 && end == len(raw)-1:
			return raw, "", nil
		default:
			return "", "", ErrMissingBracket
		}
	} else {
		host, port = raw[:i], raw[i+1:]
	}

	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return "", "", ErrInvalidPort
	}

	return host, port, nil
}

func containsCTLByte(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < ' ' || c == 0x7f {
			return true
		}
	}
	return false
}
