// Package clientip resolves the address a request is attributed to in rate
// limiting and request logs.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the peer address of r. X-Forwarded-For is honoured
// only when the peer itself is a loopback or private address, i.e. a
// reverse proxy in front of the server; the left-most forwarded entry wins.
func RealClientIP(r *http.Request) string {
	peer := hostOnly(r.RemoteAddr)
	if !isProxy(peer) {
		return peer
	}
	fwd := r.Header.Get("X-Forwarded-For")
	if fwd == "" {
		return peer
	}
	first := strings.TrimSpace(strings.Split(fwd, ",")[0])
	if net.ParseIP(first) == nil {
		return peer
	}
	return first
}

func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.TrimSpace(addr)
	}
	return strings.TrimSpace(host)
}

func isProxy(addr string) bool {
	ip := net.ParseIP(addr)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
}
