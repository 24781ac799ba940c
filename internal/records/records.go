// Package records interprets decoded resource records for DNS-SD.
//
// It selects records by type and owner name, extracts distinct addresses,
// parses TXT key/value properties (RFC 6763 §6) and tracks TTL expiry
// (RFC 6762 §10). Owner names compare case-insensitively (RFC 1035 §2.3.3).
package records

import (
	"strings"

	"github.com/joshuafuller/zeroconf/internal/message"
	"github.com/joshuafuller/zeroconf/internal/protocol"
)

// OfType returns the records of type t, preserving order.
func OfType(rrs []message.ResourceRecord, t protocol.RecordType) []message.ResourceRecord {
	var out []message.ResourceRecord
	for _, rr := range rrs {
		if rr.Type == t {
			out = append(out, rr)
		}
	}
	return out
}

// Named returns the records whose owner name equals name, ignoring case.
func Named(rrs []message.ResourceRecord, name string) []message.ResourceRecord {
	var out []message.ResourceRecord
	for _, rr := range rrs {
		if strings.EqualFold(rr.Name, name) {
			out = append(out, rr)
		}
	}
	return out
}

// First returns the first record of type t.
func First(rrs []message.ResourceRecord, t protocol.RecordType) (message.ResourceRecord, bool) {
	for _, rr := range rrs {
		if rr.Type == t {
			return rr, true
		}
	}
	return message.ResourceRecord{}, false
}

// IPv4Addresses returns the distinct A record addresses in first-seen order.
func IPv4Addresses(rrs []message.ResourceRecord) []string {
	return addresses(rrs, func(rr *message.ResourceRecord) (string, bool) {
		addr, ok := rr.AsA()
		if !ok {
			return "", false
		}
		return addr.String(), true
	})
}

// IPv6Addresses returns the distinct AAAA record addresses in first-seen order.
func IPv6Addresses(rrs []message.ResourceRecord) []string {
	return addresses(rrs, func(rr *message.ResourceRecord) (string, bool) {
		addr, ok := rr.AsAAAA()
		if !ok {
			return "", false
		}
		return addr.String(), true
	})
}

func addresses(rrs []message.ResourceRecord, extract func(*message.ResourceRecord) (string, bool)) []string {
	var out []string
	seen := make(map[string]struct{})
	for i := range rrs {
		addr, ok := extract(&rrs[i])
		if !ok {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}
