// Package transport moves mDNS datagrams between the discovery engine and
// the network.
//
// The Transport interface is the only thing the engine knows about sockets.
// UDPTransport implements it over the IPv4 and IPv6 mDNS groups on every
// selected adapter; MockTransport implements it in memory for tests.
package transport

import (
	"context"
	"net"
	"net/netip"
	"time"
)

// Transport sends queries and delivers inbound datagrams.
type Transport interface {
	// Send multicasts packet on each adapter, or on every adapter the
	// transport selected when adapters is empty. A failure on one adapter
	// does not stop the others; the returned error aggregates them.
	Send(ctx context.Context, packet []byte, adapters []Adapter) error

	// Listen calls handler for every inbound datagram until duration
	// elapses (nil error) or ctx ends (ctx.Err()). A duration <= 0 listens
	// until ctx ends. handler is never called after Listen returns, and
	// calls for one Listen never overlap.
	//
	// ready, if non-nil, is called once handler is subscribed. Datagrams
	// that arrive earlier are not seen by handler, so queries must not be
	// sent before ready runs.
	Listen(ctx context.Context, duration time.Duration, handler Handler, ready func()) error

	// Adapters returns the adapters this transport sends and listens on.
	Adapters() ([]Adapter, error)

	// Close releases network resources.
	Close() error
}

// Handler receives one inbound datagram.
type Handler func(Packet)

// Adapter is a network interface used for mDNS traffic.
type Adapter struct {
	Index     int
	Name      string
	Addresses []netip.Addr
}

// Address returns the adapter's first IPv4 address, falling back to its
// first address of any family.
func (a Adapter) Address() netip.Addr {
	for _, addr := range a.Addresses {
		if addr.Is4() {
			return addr
		}
	}
	if len(a.Addresses) > 0 {
		return a.Addresses[0]
	}
	return netip.Addr{}
}

// HasIPv4 reports whether the adapter has an IPv4 address.
func (a Adapter) HasIPv4() bool {
	for _, addr := range a.Addresses {
		if addr.Is4() {
			return true
		}
	}
	return false
}

// HasIPv6 reports whether the adapter has an IPv6 address.
func (a Adapter) HasIPv6() bool {
	for _, addr := range a.Addresses {
		if addr.Is6() && !addr.Is4In6() {
			return true
		}
	}
	return false
}

// Packet is one inbound datagram.
type Packet struct {
	// Adapter is the interface the datagram arrived on. Index is 0 when
	// the platform does not report it.
	Adapter Adapter
	Source  net.Addr
	Data    []byte
}

// SourceAddress returns the sender's IP address without port or zone.
func (p Packet) SourceAddress() string {
	switch src := p.Source.(type) {
	case *net.UDPAddr:
		if addr, ok := netip.AddrFromSlice(src.IP); ok {
			return addr.Unmap().String()
		}
		return src.IP.String()
	case nil:
		return ""
	default:
		if host, _, err := net.SplitHostPort(src.String()); err == nil {
			return host
		}
		return src.String()
	}
}
