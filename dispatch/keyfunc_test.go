package dispatch

import (
	"net"
	"testing"
)

type stringAddr string

func (a stringAddr) Network() string { return "tcp" }
func (a stringAddr) String() string  { return string(a) }

func TestClientKey_UsesRemoteHost(t *testing.T) {
	addr := &net.TCPAddr{IP: net.ParseIP("10.0.0.9"), Port: 5555}
	if got := ClientKey(addr); got != "10.0.0.9" {
		t.Fatalf("expected remote host, got %q", got)
	}
}

func TestClientKey_IPv6(t *testing.T) {
	addr := &net.TCPAddr{IP: net.ParseIP("::1"), Port: 8081}
	if got := ClientKey(addr); got != "::1" {
		t.Fatalf("expected ipv6 host, got %q", got)
	}
}

func TestClientKey_FallbacksToRawAddr(t *testing.T) {
	if got := ClientKey(stringAddr(" pipe ")); got != "pipe" {
		t.Fatalf("expected raw address, got %q", got)
	}
	if got := ClientKey(stringAddr("")); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
	if got := ClientKey(nil); got != "unknown" {
		t.Fatalf("expected unknown for nil addr, got %q", got)
	}
}
