package zeroconf

import (
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/joshuafuller/zeroconf/internal/message"
	"github.com/joshuafuller/zeroconf/internal/transport"
)

var (
	eth0  = Adapter{Index: 2, Name: "eth0", Addresses: []netip.Addr{netip.MustParseAddr("192.168.1.2"), netip.MustParseAddr("fe80::2")}}
	wlan0 = Adapter{Index: 3, Name: "wlan0", Addresses: []netip.Addr{netip.MustParseAddr("10.0.0.3")}}
)

func hdr(name string, rrtype uint16, ttl uint32) dns.RR_Header {
	return dns.RR_Header{Name: name, Rrtype: rrtype, Class: dns.ClassINET, Ttl: ttl}
}

func ptrRR(owner, target string) *dns.PTR {
	return &dns.PTR{Hdr: hdr(owner, dns.TypePTR, 4500), Ptr: target}
}

func srvRR(owner string, port uint16, target string, ttl uint32) *dns.SRV {
	return &dns.SRV{Hdr: hdr(owner, dns.TypeSRV, ttl), Port: port, Target: target}
}

func txtRR(owner string, txt ...string) *dns.TXT {
	return &dns.TXT{Hdr: hdr(owner, dns.TypeTXT, 4500), Txt: txt}
}

func aRR(name, ip string) *dns.A {
	return &dns.A{Hdr: hdr(name, dns.TypeA, 120), A: net.ParseIP(ip)}
}

func aaaaRR(name, ip string) *dns.AAAA {
	return &dns.AAAA{Hdr: hdr(name, dns.TypeAAAA, 120), AAAA: net.ParseIP(ip)}
}

// packResponse builds a compressed mDNS response.
func packResponse(t *testing.T, answers, extras []dns.RR) []byte {
	t.Helper()

	m := &dns.Msg{
		MsgHdr: dns.MsgHdr{Response: true, Authoritative: true},
		Answer: answers,
		Extra:  extras,
	}
	m.Compress = true

	b, err := m.Pack()
	require.NoError(t, err)
	return b
}

// packQuery builds a query carrying a known answer, as another querier on
// the link would send it.
func packQuery(t *testing.T, name string, known ...dns.RR) []byte {
	t.Helper()

	m := new(dns.Msg)
	m.SetQuestion(name, dns.TypePTR)
	m.Id = 0
	m.Answer = known

	b, err := m.Pack()
	require.NoError(t, err)
	return b
}

// dev1Response is a typical answer for _http._tcp.local.: the PTR in the
// answer section and the SRV, TXT and A records as additionals.
func dev1Response(t *testing.T, srvTTL uint32) []byte {
	t.Helper()

	return packResponse(t,
		[]dns.RR{ptrRR("_http._tcp.local.", "dev1._http._tcp.local.")},
		[]dns.RR{
			srvRR("dev1._http._tcp.local.", 8080, "dev1.local.", srvTTL),
			txtRR("dev1._http._tcp.local.", "id=42"),
			aRR("dev1.local.", "192.168.1.5"),
		},
	)
}

func decodeResponse(t *testing.T, data []byte) *message.Response {
	t.Helper()

	resp, err := message.Decode(data)
	require.NoError(t, err)
	return resp
}

func packetFrom(adapter Adapter, ip string, data []byte) Packet {
	return Packet{Adapter: adapter, Source: &net.UDPAddr{IP: net.ParseIP(ip), Port: 5353}, Data: data}
}

// respondWith answers every query with packets.
func respondWith(packets ...Packet) transport.Responder {
	return func([]byte, []Adapter) []Packet {
		return packets
	}
}

func newTestResolver(t *testing.T, tr NetworkTransport, opts ...Option) *Resolver {
	t.Helper()

	base := []Option{WithTransport(tr), WithLogger(zaptest.NewLogger(t))}
	r, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// quickOptions sends once and listens briefly on the real clock.
func quickOptions(protocols ...string) *ResolveOptions {
	o := NewResolveOptions(protocols...)
	o.Retries = 0
	o.RetryDelay = time.Second
	o.ScanTime = 50 * time.Millisecond
	return o
}
