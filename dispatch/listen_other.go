//go:build !linux

package dispatch

import "net"

// Fora do Linux o backlog fica por conta do runtime.
func listen(addr string, _ int) (net.Listener, error) {
	return net.Listen("tcp", addr)
}
