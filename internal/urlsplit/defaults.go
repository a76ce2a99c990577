package urlsplit

import (
	"fmt"
	"strconv"
)

// DefaultScheme returns the scheme, inferring one from a well-known port
// when the scheme is absent and falling back to "http".
func (u *URL) DefaultScheme() string {
	if u.Scheme != "" {
		return u.Scheme
	}
	switch u.Port {
	case "21":
		return "ftp"
	case "22":
		return "ssh"
	case "23":
		return "telnet"
	case "110":
		return "pop"
	case "111":
		return "nfs"
	case "143":
		return "imap"
	case "161":
		return "snmp"
	case "194":
		return "irc"
	case "389":
		return "ldap"
	case "443":
		return "https"
	case "445":
		return "smb"
	case "636":
		return "ldaps"
	case "873":
		return "rsync"
	case "5900":
		return "vnc"
	case "6379":
		return "redis"
	case "9418":
		return "git"
	default:
		return "http"
	}
}

// DefaultPort returns the explicit port, or the well-known port for the
// scheme, falling back to "80".
func (u *URL) DefaultPort() string {
	if u.Port != "" {
		return u.Port
	}
	if port, ok := PortForScheme(u.Scheme); ok {
		return strconv.Itoa(int(port))
	}
	return "80"
}

// Origin renders "scheme://host:port" with both defaults applied. An IPv6
// host keeps its brackets.
func (u *URL) Origin() string {
	return fmt.Sprintf("%s://%s:%s", u.DefaultScheme(), u.Host, u.DefaultPort())
}

// PortForScheme returns the well-known port for a scheme, reporting false
// for schemes it does not know.
func PortForScheme(scheme string) (uint16, bool) {
	switch scheme {
	case "ftp":
		return 21, true
	case "git":
		return 9418, true
	case "http", "ws":
		return 80, true
	case "https", "wss":
		return 443, true
	case "imap":
		return 143, true
	case "irc":
		return 194, true
	case "ldap":
		return 389, true
	case "ldaps":
		return 636, true
	case "nfs":
		return 111, true
	case "pop":
		return 110, true
	case "redis":
		return 6379, true
	case "rsync":
		return 873, true
	case "sftp", "ssh":
		return 22, true
	case "smb":
		return 445, true
	case "snmp":
		return 161, true
	case "socks5", "socks5h", "socks5t":
		return 1080, true
	case "telnet":
		return 23, true
	case "vnc":
		return 5900, true
	default:
		return 0, false
	}
}
