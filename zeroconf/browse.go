package zeroconf

import (
	"context"
	"sort"

	"github.com/joshuafuller/zeroconf/internal/errors"
	"github.com/joshuafuller/zeroconf/internal/message"
)

// DomainLookup maps service types to the responders that advertise them and
// back. Keys are the "<source>:<display name>" match keys.
type DomainLookup struct {
	byService map[string][]string
	byKey     map[string][]string
}

func newDomainLookup() *DomainLookup {
	return &DomainLookup{
		byService: make(map[string][]string),
		byKey:     make(map[string][]string),
	}
}

func (l *DomainLookup) add(service, key string) {
	if !containsExact(l.byService[service], key) {
		l.byService[service] = append(l.byService[service], key)
	}
	if !containsExact(l.byKey[key], service) {
		l.byKey[key] = append(l.byKey[key], service)
	}
}

// Len returns the number of distinct service types.
func (l *DomainLookup) Len() int { return len(l.byService) }

// Services returns the service types, sorted.
func (l *DomainLookup) Services() []string {
	return sortedMapKeys(l.byService)
}

// Keys returns the responders that advertised service.
func (l *DomainLookup) Keys(service string) []string {
	return append([]string(nil), l.byService[service]...)
}

// Responders returns every responder key, sorted.
func (l *DomainLookup) Responders() []string {
	return sortedMapKeys(l.byKey)
}

// ServicesAt returns the service types advertised by the responder key.
func (l *DomainLookup) ServicesAt(key string) []string {
	return append([]string(nil), l.byKey[key]...)
}

// DomainServices returns each service type split into service and domain.
func (l *DomainLookup) DomainServices() []DomainService {
	services := l.Services()
	out := make([]DomainService, 0, len(services))
	for _, s := range services {
		out = append(out, splitServiceType(s))
	}
	return out
}

// BrowseDomains enumerates the service types advertised on the link
// (RFC 6763 §9).
//
// callback, if non-nil, receives every (service type, responder key) pair
// as responses arrive. When ctx ends first, BrowseDomains returns a
// *CancelledError and no lookup.
func (r *Resolver) BrowseDomains(ctx context.Context, opts *BrowseDomainsOptions, callback func(service, key string)) (*DomainLookup, error) {
	if opts == nil {
		return nil, &errors.ValidationError{Field: "options", Message: "options cannot be nil"}
	}
	o := opts.Options.clone()

	var onMatch func(match)
	if callback != nil {
		onMatch = func(m match) {
			for _, service := range browsedServices(m.response) {
				callback(service, m.key)
			}
		}
	}

	matches, err := r.resolveInternal(ctx, "browse", &o, onMatch)
	if err != nil {
		return nil, err
	}

	lookup := newDomainLookup()
	for _, key := range sortedKeys(matches) {
		for _, service := range browsedServices(matches[key].response) {
			lookup.add(service, key)
		}
	}
	return lookup, nil
}

// browsedServices returns the PTR answer targets of a browse response.
func browsedServices(resp *message.Response) []string {
	ptrs := resp.PTRAnswers()
	out := make([]string, 0, len(ptrs))
	for i := range ptrs {
		out = append(out, ptrs[i].AsPTR())
	}
	return out
}

func containsExact(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortedMapKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
