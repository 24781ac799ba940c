package zeroconf

import (
	"context"
	"net"
	"sort"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/joshuafuller/zeroconf/internal/errors"
	"github.com/joshuafuller/zeroconf/internal/transport"
)

// Resolver runs mDNS discovery operations over a NetworkTransport.
//
// A Resolver is safe for concurrent use. Unless an operation sets
// AllowOverlappedQueries, its queries wait for the Resolver's QueryLock.
type Resolver struct {
	transport     NetworkTransport
	ownsTransport bool
	transportOpts []transport.Option

	log        *zap.Logger
	clock      clock.Clock
	lock       *QueryLock
	registerer prometheus.Registerer
	metrics    *metrics
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithTransport replaces the default UDP multicast transport. The Resolver
// does not close a transport it did not create.
func WithTransport(t NetworkTransport) Option {
	return func(r *Resolver) error {
		if t == nil {
			return &errors.ValidationError{Field: "transport", Message: "transport cannot be nil"}
		}
		r.transport = t
		return nil
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "logger cannot be nil"}
		}
		r.log = logger
		return nil
	}
}

// WithClock sets the clock driving retry timers and response timestamps.
func WithClock(clk clock.Clock) Option {
	return func(r *Resolver) error {
		if clk == nil {
			return &errors.ValidationError{Field: "clock", Message: "clock cannot be nil"}
		}
		r.clock = clk
		return nil
	}
}

// WithQueryLock shares lock with other Resolvers so their queries never
// overlap.
func WithQueryLock(lock *QueryLock) Option {
	return func(r *Resolver) error {
		if lock == nil {
			return &errors.ValidationError{Field: "query lock", Message: "query lock cannot be nil"}
		}
		r.lock = lock
		return nil
	}
}

// WithMetrics registers the Resolver's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Resolver) error {
		if reg == nil {
			return &errors.ValidationError{Field: "registerer", Message: "registerer cannot be nil"}
		}
		r.registerer = reg
		return nil
	}
}

// WithInterfaces restricts the default transport to ifaces.
// It has no effect together with WithTransport.
func WithInterfaces(ifaces []net.Interface) Option {
	return func(r *Resolver) error {
		if len(ifaces) == 0 {
			return &errors.ValidationError{Field: "interfaces", Message: "interface list cannot be empty"}
		}
		r.transportOpts = append(r.transportOpts, transport.WithInterfaces(ifaces))
		return nil
	}
}

// WithInterfaceFilter restricts the default transport to the interfaces
// filter accepts. It has no effect together with WithTransport.
func WithInterfaceFilter(filter func(net.Interface) bool) Option {
	return func(r *Resolver) error {
		if filter == nil {
			return &errors.ValidationError{Field: "interface filter", Message: "filter function cannot be nil"}
		}
		r.transportOpts = append(r.transportOpts, transport.WithInterfaceFilter(filter))
		return nil
	}
}

// WithLoopback includes loopback interfaces in the default transport.
func WithLoopback(enabled bool) Option {
	return func(r *Resolver) error {
		r.transportOpts = append(r.transportOpts, transport.WithLoopback(enabled))
		return nil
	}
}

// WithIPv6 enables or disables the default transport's IPv6 socket.
// It has no effect together with WithTransport.
func WithIPv6(enabled bool) Option {
	return func(r *Resolver) error {
		r.transportOpts = append(r.transportOpts, transport.WithIPv6(enabled))
		return nil
	}
}

// New returns a Resolver. Without WithTransport it opens UDP multicast
// sockets on every suitable interface.
func New(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		log:   zap.NewNop(),
		clock: clock.New(),
		lock:  NewQueryLock(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	m, err := newMetrics(r.registerer)
	if err != nil {
		return nil, err
	}
	r.metrics = m

	if r.transport == nil {
		topts := append([]transport.Option{
			transport.WithLogger(r.log),
			transport.WithClock(r.clock),
		}, r.transportOpts...)
		t, err := transport.NewUDPTransport(topts...)
		if err != nil {
			return nil, err
		}
		r.transport = t
		r.ownsTransport = true
	}
	return r, nil
}

// Close releases the transport if the Resolver created it.
func (r *Resolver) Close() error {
	if !r.ownsTransport {
		return nil
	}
	return r.transport.Close()
}

// Adapters lists the adapters the transport can send on.
func (r *Resolver) Adapters() ([]AdapterInformation, error) {
	adapters, err := r.transport.Adapters()
	if err != nil {
		return nil, err
	}
	out := make([]AdapterInformation, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, adapterInformation(a))
	}
	return out, nil
}

// Resolve finds hosts offering opts' protocols.
//
// callback, if non-nil, receives each accepted response as it arrives,
// including responses later replaced by a newer one for the same key. The
// returned hosts are deduplicated and sorted by key. When ctx ends first,
// Resolve returns a *CancelledError and no hosts.
func (r *Resolver) Resolve(ctx context.Context, opts *ResolveOptions, callback func(*Host)) ([]*Host, error) {
	if opts == nil {
		return nil, &errors.ValidationError{Field: "options", Message: "options cannot be nil"}
	}
	o := opts.Options.clone()

	var onMatch func(match)
	if callback != nil {
		onMatch = func(m match) {
			callback(assembleHost(m.response, m.source, &o))
		}
	}

	matches, err := r.resolveInternal(ctx, "resolve", &o, onMatch)
	if err != nil {
		return nil, err
	}

	hosts := make([]*Host, 0, len(matches))
	for _, key := range sortedKeys(matches) {
		m := matches[key]
		hosts = append(hosts, assembleHost(m.response, m.source, &o))
	}
	return hosts, nil
}

// ResolveServices resolves protocols with default options.
func (r *Resolver) ResolveServices(ctx context.Context, protocols ...string) ([]*Host, error) {
	return r.Resolve(ctx, NewResolveOptions(protocols...), nil)
}

func sortedKeys(matches map[string]match) []string {
	keys := make([]string, 0, len(matches))
	for k := range matches {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
