package zeroconf

import (
	"strings"
	"time"

	"github.com/joshuafuller/zeroconf/internal/errors"
	"github.com/joshuafuller/zeroconf/internal/protocol"
)

// Defaults applied by NewResolveOptions and NewBrowseDomainsOptions.
const (
	DefaultRetries    = 2
	DefaultRetryDelay = 2 * time.Second
	DefaultScanTime   = 2 * time.Second
)

// Options configures one discovery operation.
//
// Protocols form a case-insensitive set kept in first-seen order. The other
// fields are plain values checked by Validate when the operation starts.
type Options struct {
	protocols []string

	// Retries is how many times the query is resent after the first send.
	Retries int

	// RetryDelay is the interval between sends.
	RetryDelay time.Duration

	// ScanTime bounds how long responses are collected.
	ScanTime time.Duration

	// ScanQueryType selects PTR or ANY questions.
	ScanQueryType ScanQueryType

	// AllowOverlappedQueries skips the Resolver's QueryLock.
	AllowOverlappedQueries bool

	// Adapters names the interfaces to send on. Empty means all of them.
	Adapters []string
}

func newOptions(protocols ...string) Options {
	o := Options{
		Retries:       DefaultRetries,
		RetryDelay:    DefaultRetryDelay,
		ScanTime:      DefaultScanTime,
		ScanQueryType: ScanQueryTypePtr,
	}
	for _, p := range protocols {
		o.AddProtocol(p)
	}
	return o
}

// Protocols returns the requested protocol names.
func (o *Options) Protocols() []string {
	return append([]string(nil), o.protocols...)
}

// AddProtocol adds name unless an equal name, ignoring case, is present.
func (o *Options) AddProtocol(name string) {
	if o.HasProtocol(name) {
		return
	}
	o.protocols = append(o.protocols, name)
}

// HasProtocol reports whether name was requested, ignoring case.
func (o *Options) HasProtocol(name string) bool {
	for _, p := range o.protocols {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// Validate checks the options before any network activity.
func (o *Options) Validate() error {
	if len(o.protocols) == 0 {
		return &errors.ValidationError{Field: "protocols", Message: "at least one protocol is required"}
	}
	for _, p := range o.protocols {
		if strings.TrimSpace(p) == "" {
			return &errors.ValidationError{Field: "protocols", Value: p, Message: "protocol cannot be empty"}
		}
	}
	if o.Retries < 0 {
		return &errors.ValidationError{Field: "retries", Value: o.Retries, Message: "must not be negative"}
	}
	if o.RetryDelay <= 0 {
		return &errors.ValidationError{Field: "retry delay", Value: o.RetryDelay, Message: "must be positive"}
	}
	if o.ScanTime <= 0 {
		return &errors.ValidationError{Field: "scan time", Value: o.ScanTime, Message: "must be positive"}
	}
	if !o.ScanQueryType.valid() {
		return &errors.ValidationError{Field: "scan query type", Value: int(o.ScanQueryType), Message: "must be Ptr or Any"}
	}
	return nil
}

func (o *Options) clone() Options {
	c := *o
	c.protocols = o.Protocols()
	c.Adapters = append([]string(nil), o.Adapters...)
	return c
}

// ResolveOptions configures Resolver.Resolve.
type ResolveOptions struct {
	Options
}

// NewResolveOptions returns defaults for resolving protocols, e.g.
// "_http._tcp.local.".
func NewResolveOptions(protocols ...string) *ResolveOptions {
	return &ResolveOptions{Options: newOptions(protocols...)}
}

// BrowseDomainsOptions configures Resolver.BrowseDomains. Its only protocol
// is the DNS-SD service type enumeration name (RFC 6763 §9).
type BrowseDomainsOptions struct {
	Options
}

// NewBrowseDomainsOptions returns defaults for enumerating service types.
func NewBrowseDomainsOptions() *BrowseDomainsOptions {
	return &BrowseDomainsOptions{Options: newOptions(protocol.BrowseDomainsProtocol)}
}
