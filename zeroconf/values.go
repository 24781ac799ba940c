package zeroconf

import (
	"strings"

	"github.com/spaolacci/murmur3"

	"github.com/joshuafuller/zeroconf/internal/errors"
)

// AdapterInformation identifies the network adapter a packet arrived on.
type AdapterInformation struct {
	Address string
	Name    string
}

func adapterInformation(a Adapter) AdapterInformation {
	info := AdapterInformation{Name: a.Name}
	if addr := a.Address(); addr.IsValid() {
		info.Address = addr.String()
	}
	return info
}

// Equal compares both fields.
func (a AdapterInformation) Equal(other AdapterInformation) bool {
	return a == other
}

// Hash is consistent with Equal.
func (a AdapterInformation) Hash() uint64 {
	return hashStrings(a.Address, a.Name)
}

// String returns "<name>: <address>".
func (a AdapterInformation) String() string {
	return a.Name + ": " + a.Address
}

// DomainService is a service type split into its service part and the
// domain it is registered in (RFC 6763 §4.1), e.g. "_http._tcp" in "local.".
type DomainService struct {
	Domain  string
	Service string
}

// splitServiceType splits "_http._tcp.local." into "_http._tcp" and "local.".
// Names with fewer than three labels have no domain.
func splitServiceType(name string) DomainService {
	labels := strings.SplitN(name, ".", 3)
	if len(labels) < 3 || labels[2] == "" {
		return DomainService{Service: strings.TrimSuffix(name, ".")}
	}
	return DomainService{Domain: labels[2], Service: labels[0] + "." + labels[1]}
}

// Equal compares both fields.
func (d DomainService) Equal(other DomainService) bool {
	return d == other
}

// Hash is consistent with Equal.
func (d DomainService) Hash() uint64 {
	return hashStrings(d.Domain, d.Service)
}

// String returns "<service>.<domain>".
func (d DomainService) String() string {
	if d.Domain == "" {
		return d.Service
	}
	return d.Service + "." + d.Domain
}

// ServiceAnnouncement is an unsolicited response heard by
// Resolver.ListenForAnnouncements.
type ServiceAnnouncement struct {
	adapter AdapterInformation
	host    *Host
}

// NewServiceAnnouncement pairs an adapter with the host heard on it.
func NewServiceAnnouncement(adapter AdapterInformation, host *Host) (ServiceAnnouncement, error) {
	if host == nil {
		return ServiceAnnouncement{}, &errors.ValidationError{Field: "host", Message: "host cannot be nil"}
	}
	return ServiceAnnouncement{adapter: adapter, host: host}, nil
}

// AdapterInformation returns the adapter the announcement arrived on.
func (s ServiceAnnouncement) AdapterInformation() AdapterInformation { return s.adapter }

// Host returns the announced host.
func (s ServiceAnnouncement) Host() *Host { return s.host }

// Equal compares the adapters and the hosts.
func (s ServiceAnnouncement) Equal(other ServiceAnnouncement) bool {
	return s.adapter.Equal(other.adapter) && s.host.Equal(other.host)
}

// Hash is consistent with Equal.
func (s ServiceAnnouncement) Hash() uint64 {
	return s.adapter.Hash()*397 ^ s.host.Hash()
}

// hashStrings hashes fields with a separator so ("ab","c") and ("a","bc")
// differ.
func hashStrings(fields ...string) uint64 {
	h := murmur3.New64()
	for _, f := range fields {
		_, _ = h.Write([]byte(f))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
