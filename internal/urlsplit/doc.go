// Package urlsplit decomposes URL-shaped strings into raw components
// without unescaping or validating them, and carries the well-known
// scheme and port tables used to fill in whichever half of host:port a
// proxy or target URL leaves out.
package urlsplit
