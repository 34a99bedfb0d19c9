package dispatch

import (
	"net"
	"strings"

	"scheduler-sim/dispatch/domain"
)

// ClientKey identifica o cliente pelo host do endereço remoto.
func ClientKey(remote net.Addr) domain.Key {
	if remote == nil {
		return "unknown"
	}
	addr := strings.TrimSpace(remote.String())
	host, _, err := net.SplitHostPort(addr)
	if err == nil && host != "" {
		return domain.Key(host)
	}
	if addr != "" {
		return domain.Key(addr)
	}
	return "unknown"
}
