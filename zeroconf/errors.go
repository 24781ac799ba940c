package zeroconf

import (
	"github.com/joshuafuller/zeroconf/internal/errors"
	"github.com/joshuafuller/zeroconf/internal/records"
	"github.com/joshuafuller/zeroconf/internal/transport"
)

// Error types returned by the Resolver. Use errors.As to branch on them.
type (
	// DecodeError reports a datagram that is not a well-formed DNS message.
	// Discovery drops such packets; DecodeError only surfaces from the codec.
	DecodeError = errors.WireFormatError

	// ConfigurationError reports invalid options, raised before any I/O.
	ConfigurationError = errors.ValidationError

	// TransportError reports a socket failure, usually on one adapter.
	TransportError = errors.NetworkError

	// CancelledError reports that the caller's context ended the operation.
	CancelledError = errors.CancelledError
)

// IsCancelled reports whether err came from a cancelled or expired context.
func IsCancelled(err error) bool {
	return errors.IsCancelled(err)
}

// Transport-level types shared with custom NetworkTransport implementations.
type (
	NetworkTransport = transport.Transport
	Adapter          = transport.Adapter
	Packet           = transport.Packet
)

// PropertySet is the ordered key/value content of one TXT record.
type PropertySet = records.PropertySet

// Property is one TXT key with its optional value.
type Property = records.Property
