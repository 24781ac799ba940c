package zeroconf

import (
	"strings"

	"github.com/joshuafuller/zeroconf/internal/message"
	"github.com/joshuafuller/zeroconf/internal/protocol"
	"github.com/joshuafuller/zeroconf/internal/records"
)

// matchRecord returns the first record, across answers, authorities and
// additionals, whose owner name ends with one of protocols.
func matchRecord(resp *message.Response, protocols []string) (message.ResourceRecord, bool) {
	for _, rr := range resp.Records() {
		for _, p := range protocols {
			if hasSuffixFold(rr.Name, p) {
				return rr, true
			}
		}
	}
	return message.ResourceRecord{}, false
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

// displayName is the instance label for a PTR record and the owner name for
// any other record.
func displayName(rr *message.ResourceRecord) string {
	if _, ok := rr.Data.(*message.PTR); ok {
		return ptrDisplayName(rr)
	}
	return rr.Name
}

// ptrDisplayName strips the owner name out of the target:
// "dev1._http._tcp.local." under "_http._tcp.local." gives "dev1".
func ptrDisplayName(rr *message.ResourceRecord) string {
	return strings.TrimRight(strings.ReplaceAll(rr.AsPTR(), rr.Name, ""), ".")
}

// assembleHost builds a Host from resp. source is the address the response
// came from. opts is nil for unsolicited announcements.
func assembleHost(resp *message.Response, source string, opts *Options) *Host {
	all := resp.Records()
	ptrs := resp.PTRAnswers()
	h := newHost()

	ipv4 := records.IPv4Addresses(all)
	if len(ipv4) == 0 && source != "" {
		ipv4 = []string{source}
	}
	h.id = source
	if len(ipv4) > 0 {
		h.id = ipv4[0]
	}
	h.ipAddresses = distinct(append(ipv4, records.IPv6Addresses(all)...))

	for _, ptr := range ptrs {
		h.domains = append(h.domains, ptr.AsPTR())
	}
	if len(h.domains) == 0 && opts != nil {
		h.domains = opts.Protocols()
	}

	h.displayName = hostDisplayName(resp, ptrs, opts)
	h.hostname = hostname(all, h.domains)

	for _, domain := range h.domains {
		addServices(h, resp, all, ptrs, domain)
	}
	return h
}

// hostDisplayName prefers a PTR answer owned by a requested protocol, then
// any PTR answer, then the record that matched the query.
func hostDisplayName(resp *message.Response, ptrs []message.ResourceRecord, opts *Options) string {
	if opts != nil {
		for i := range ptrs {
			if opts.HasProtocol(ptrs[i].Name) {
				return ptrDisplayName(&ptrs[i])
			}
		}
	}
	if len(ptrs) > 0 {
		return ptrDisplayName(&ptrs[0])
	}
	if opts != nil {
		if rr, ok := matchRecord(resp, opts.protocols); ok {
			return displayName(&rr)
		}
	}
	return ""
}

func hostname(all []message.ResourceRecord, domains []string) string {
	if a, ok := records.First(all, protocol.RecordTypeA); ok {
		return a.Name
	}

	candidates := all
	if len(domains) > 0 {
		candidates = nil
		for _, rr := range all {
			if containsFold(domains, rr.Name) {
				candidates = append(candidates, rr)
			}
		}
	}
	for i := range candidates {
		if srv := candidates[i].AsSRV(); srv != nil {
			return srv.Target
		}
	}
	return ""
}

// addServices adds one Service per SRV record owned by domain. Every TXT
// record owned by domain becomes one property set on each of them.
func addServices(h *Host, resp *message.Response, all, ptrs []message.ResourceRecord, domain string) {
	owned := records.Named(all, domain)

	name := domain
	for i := range ptrs {
		if strings.EqualFold(ptrs[i].AsPTR(), domain) {
			name = ptrs[i].Name
			break
		}
	}

	var sets []PropertySet
	for i := range owned {
		if txt, ok := owned[i].Data.(*message.TXT); ok {
			sets = append(sets, records.ParseProperties(txt.Strings))
		}
	}

	for i := range owned {
		srv := owned[i].AsSRV()
		if srv == nil {
			continue
		}
		svc := newService(name, owned[i].Name, srv.Port, owned[i].TTL, resp.Timestamp)
		svc.properties = append([]PropertySet(nil), sets...)
		_ = h.addService(svc)
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func distinct(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
