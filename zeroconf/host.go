package zeroconf

import (
	"fmt"
	"strings"
	"time"

	"github.com/joshuafuller/zeroconf/internal/errors"
	"github.com/joshuafuller/zeroconf/internal/protocol"
	"github.com/joshuafuller/zeroconf/internal/records"
)

// Host is one responder assembled from a single mDNS response.
//
// A Host is built once per response and is read-only afterwards; accessors
// return copies.
type Host struct {
	id          string
	displayName string
	hostname    string
	ipAddresses []string
	domains     []string

	services     map[string]*Service
	serviceNames []string
}

func newHost() *Host {
	return &Host{services: make(map[string]*Service)}
}

// ID is the first IPv4 address of the host, or the address the response
// came from when it carried none.
func (h *Host) ID() string { return h.id }

// DisplayName is the instance label of the host's PTR record, e.g. "dev1"
// for dev1._http._tcp.local.
func (h *Host) DisplayName() string { return h.displayName }

// Hostname is the owner name of the first A record, or the target of the
// first SRV record when no A record was sent.
func (h *Host) Hostname() string { return h.hostname }

// IPAddress returns the first address, or "" when there is none.
func (h *Host) IPAddress() string {
	if len(h.ipAddresses) == 0 {
		return ""
	}
	return h.ipAddresses[0]
}

// IPAddresses returns the distinct IPv4 addresses followed by the IPv6 ones.
func (h *Host) IPAddresses() []string {
	return append([]string(nil), h.ipAddresses...)
}

// Domains returns the PTR target names the host answered with, or the
// requested protocols when the response had no PTR answers.
func (h *Host) Domains() []string {
	return append([]string(nil), h.domains...)
}

// Services returns the host's services keyed by SRV owner name.
func (h *Host) Services() map[string]*Service {
	out := make(map[string]*Service, len(h.services))
	for k, v := range h.services {
		out[k] = v
	}
	return out
}

// Service returns the service whose SRV owner name is serviceName.
func (h *Host) Service(serviceName string) (*Service, bool) {
	s, ok := h.services[serviceName]
	return s, ok
}

// ServiceNames returns the service keys in the order they were found.
func (h *Host) ServiceNames() []string {
	return append([]string(nil), h.serviceNames...)
}

func (h *Host) addService(s *Service) error {
	if s == nil {
		return &errors.ValidationError{Field: "service", Message: "service cannot be nil"}
	}
	if s.serviceName == "" {
		return &errors.ValidationError{Field: "service name", Message: "service name cannot be empty"}
	}
	if _, ok := h.services[s.serviceName]; !ok {
		h.serviceNames = append(h.serviceNames, s.serviceName)
	}
	h.services[s.serviceName] = s
	return nil
}

// Equal reports whether both hosts have the same ID and first address.
func (h *Host) Equal(other *Host) bool {
	if h == nil || other == nil {
		return h == other
	}
	return h.id == other.id && h.IPAddress() == other.IPAddress()
}

// Hash is consistent with Equal.
func (h *Host) Hash() uint64 {
	if h == nil {
		return 0
	}
	return hashStrings(h.id, h.IPAddress())
}

// String renders a multi-line diagnostic dump.
func (h *Host) String() string {
	var sb strings.Builder
	rule := "| ----------------------------------------------\n"
	sb.WriteString(rule)
	sb.WriteString("| HOST\n")
	sb.WriteString(rule)
	fmt.Fprintf(&sb, "| Id: %s\n", h.id)
	fmt.Fprintf(&sb, "| DisplayName: %s\n", h.displayName)
	fmt.Fprintf(&sb, "| Hostname: %s\n", h.hostname)
	fmt.Fprintf(&sb, "| IPs: %s\n", strings.Join(h.ipAddresses, ", "))
	fmt.Fprintf(&sb, "| Services: %d\n", len(h.services))
	for i, name := range h.serviceNames {
		sb.WriteString("\t| -------------------\n")
		fmt.Fprintf(&sb, "\t| Service #%d\n", i)
		sb.WriteString("\t| -------------------\n")
		sb.WriteString(h.services[name].String())
		sb.WriteString("\t| -------------------\n")
	}
	sb.WriteString(rule)
	return sb.String()
}

// Service is one SRV record with the TXT records published next to it.
type Service struct {
	name        string
	serviceName string
	port        uint16
	ttl         *records.RecordTTL
	properties  []PropertySet
}

// Name is the service type the instance was found under, e.g.
// "_http._tcp.local.".
func (s *Service) Name() string { return s.name }

// ServiceName is the SRV owner name, e.g. "dev1._http._tcp.local.".
func (s *Service) ServiceName() string { return s.serviceName }

// Port is the SRV port.
func (s *Service) Port() uint16 { return s.port }

// TTL is the SRV record TTL in seconds as received.
func (s *Service) TTL() uint32 { return s.ttl.TTL }

// ReceivedAt is when the response carrying the service was decoded.
func (s *Service) ReceivedAt() time.Time { return s.ttl.CreatedAt }

// RemainingTTL returns the whole seconds left at now (RFC 6762 §10).
func (s *Service) RemainingTTL(now time.Time) uint32 {
	return s.ttl.RemainingAt(now)
}

// Expired reports whether the SRV record has outlived its TTL at now.
func (s *Service) Expired(now time.Time) bool {
	return s.ttl.ExpiredAt(now)
}

// Properties returns one PropertySet per TXT record, in record order.
func (s *Service) Properties() []PropertySet {
	return append([]PropertySet(nil), s.properties...)
}

// String renders a diagnostic dump used by Host.String.
func (s *Service) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\t| Service: %s\n", s.name)
	fmt.Fprintf(&sb, "\t| ServiceName: %s\n", s.serviceName)
	fmt.Fprintf(&sb, "\t| Port: %d\n", s.port)
	fmt.Fprintf(&sb, "\t| TTL: %d\n", s.ttl.TTL)
	fmt.Fprintf(&sb, "\t| PropertySets: %d\n", len(s.properties))
	for i, set := range s.properties {
		sb.WriteString("\t\t| -------------------\n")
		fmt.Fprintf(&sb, "\t\t| Property Set #%d\n", i)
		sb.WriteString("\t\t| -------------------\n")
		for _, p := range set.Properties() {
			fmt.Fprintf(&sb, "\t\t| %s = %s\n", p.Key, p.Value)
		}
		sb.WriteString("\t\t| -------------------\n")
	}
	return sb.String()
}

func newService(name, serviceName string, port uint16, ttl uint32, receivedAt time.Time) *Service {
	return &Service{
		name:        name,
		serviceName: serviceName,
		port:        port,
		ttl:         records.NewRecordTTLAt(protocol.RecordTypeSRV, ttl, receivedAt),
	}
}
