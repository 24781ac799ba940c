package message

import (
	"net/netip"
	"strconv"

	"github.com/joshuafuller/zeroconf/internal/protocol"
)

// ResourceRecord is one entry of the answer, authority or additional
// section.
//
// RFC 1035 §3.2.1:
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                     NAME                      |
//	|                     TYPE                      |
//	|                     CLASS                     |
//	|                      TTL                      |
//	|                   RDLENGTH                    |
//	|                     RDATA                     |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//
// Data is never nil after Decode. Use the As* helpers for typed access.
type ResourceRecord struct {
	Name  string
	Type  protocol.RecordType
	Class protocol.Class

	// CacheFlush is the top bit of CLASS (RFC 6762 §10.2).
	CacheFlush bool

	TTL      uint32
	RDLength uint16
	Data     Record
}

// AsA returns the IPv4 address of an A record. ok is false for other types.
func (rr *ResourceRecord) AsA() (netip.Addr, bool) {
	a, ok := rr.Data.(*A)
	if !ok {
		return netip.Addr{}, false
	}
	return a.Address, true
}

// AsAAAA returns the IPv6 address of an AAAA record.
func (rr *ResourceRecord) AsAAAA() (netip.Addr, bool) {
	a, ok := rr.Data.(*AAAA)
	if !ok {
		return netip.Addr{}, false
	}
	return a.Address, true
}

// AsPTR returns the PTR target, or "" if rr is not a PTR record.
func (rr *ResourceRecord) AsPTR() string {
	if p, ok := rr.Data.(*PTR); ok {
		return p.Target
	}
	return ""
}

// AsSRV returns the SRV data, or nil if rr is not an SRV record.
func (rr *ResourceRecord) AsSRV() *SRV {
	if s, ok := rr.Data.(*SRV); ok {
		return s
	}
	return nil
}

// AsTXT returns the TXT strings, or nil if rr is not a TXT record.
func (rr *ResourceRecord) AsTXT() []string {
	if t, ok := rr.Data.(*TXT); ok {
		return t.Strings
	}
	return nil
}

// String renders rr in zone-file presentation format.
func (rr *ResourceRecord) String() string {
	return rr.Name + "\t" + strconv.FormatUint(uint64(rr.TTL), 10) + "\t" + rr.Class.String() + "\t" + rr.Type.String() + "\t" + rr.Data.String()
}

func parseResourceRecord(r *reader) (ResourceRecord, error) {
	name, err := r.readName()
	if err != nil {
		return ResourceRecord{}, err
	}

	fields, err := r.readUint16s(2)
	if err != nil {
		return ResourceRecord{}, err
	}
	ttl, err := r.readUint32()
	if err != nil {
		return ResourceRecord{}, err
	}
	rdlength, err := r.readUint16()
	if err != nil {
		return ResourceRecord{}, err
	}

	if int(rdlength) > r.remaining() {
		return ResourceRecord{}, r.fail("parse resource record", "rdlength %d exceeds remaining %d bytes", rdlength, r.remaining())
	}

	rrType := protocol.RecordType(fields[0])
	end := r.off + int(rdlength)
	data := decodeRecord(r.bounded(end), rrType, int(rdlength))
	r.off = end

	return ResourceRecord{
		Name:       name,
		Type:       rrType,
		Class:      protocol.Class(fields[1] &^ protocol.ClassTopBit),
		CacheFlush: fields[1]&protocol.ClassTopBit != 0,
		TTL:        ttl,
		RDLength:   rdlength,
		Data:       data,
	}, nil
}
