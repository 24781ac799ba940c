package transport

import (
	"net"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/joshuafuller/zeroconf/internal/errors"
)

// Option configures a UDPTransport.
type Option func(*config) error

type config struct {
	interfaces      []net.Interface
	interfaceFilter func(net.Interface) bool
	ipv6            bool
	loopback        bool
	logger          *zap.Logger
	clock           clock.Clock
}

func defaultConfig() config {
	return config{
		ipv6:   true,
		logger: zap.NewNop(),
		clock:  clock.New(),
	}
}

// WithInterfaces restricts the transport to an explicit interface list.
// It takes precedence over WithInterfaceFilter.
func WithInterfaces(ifaces []net.Interface) Option {
	return func(c *config) error {
		if len(ifaces) == 0 {
			return &errors.ValidationError{
				Field:   "interfaces",
				Message: "interface list cannot be empty",
			}
		}
		c.interfaces = append([]net.Interface(nil), ifaces...)
		return nil
	}
}

// WithInterfaceFilter selects interfaces with a custom predicate, replacing
// the default filter (up, multicast-capable, not loopback).
func WithInterfaceFilter(filter func(net.Interface) bool) Option {
	return func(c *config) error {
		if filter == nil {
			return &errors.ValidationError{
				Field:   "interfaceFilter",
				Message: "filter function cannot be nil",
			}
		}
		c.interfaceFilter = filter
		return nil
	}
}

// WithIPv6 enables or disables the IPv6 socket. It is enabled by default;
// failing to open it only logs a warning.
func WithIPv6(enabled bool) Option {
	return func(c *config) error {
		c.ipv6 = enabled
		return nil
	}
}

// WithLoopback includes loopback interfaces in the default selection.
func WithLoopback(enabled bool) Option {
	return func(c *config) error {
		c.loopback = enabled
		return nil
	}
}

// WithLogger sets the logger for socket lifecycle and send failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "logger cannot be nil"}
		}
		c.logger = logger
		return nil
	}
}

// WithClock sets the clock that bounds Listen windows and paces retries
// after socket read errors.
func WithClock(clk clock.Clock) Option {
	return func(c *config) error {
		if clk == nil {
			return &errors.ValidationError{Field: "clock", Message: "clock cannot be nil"}
		}
		c.clock = clk
		return nil
	}
}
