package message

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/joshuafuller/zeroconf/internal/protocol"
)

// Record is the decoded RDATA of a resource record.
//
// The concrete type is one of *A, *AAAA, *PTR, *SRV, *TXT or *Unknown.
type Record interface {
	Type() protocol.RecordType
	String() string
}

// A holds an IPv4 address (RFC 1035 §3.4.1).
type A struct {
	Address netip.Addr
}

// AAAA holds an IPv6 address (RFC 3596 §2.2).
type AAAA struct {
	Address netip.Addr
}

// PTR points at another domain name (RFC 1035 §3.3.12). In DNS-SD it maps
// a service type to a service instance (RFC 6763 §4.1).
type PTR struct {
	Target string
}

// SRV locates a service instance (RFC 2782).
type SRV struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   string
}

// TXT carries character-strings, typically DNS-SD key=value pairs
// (RFC 6763 §6).
type TXT struct {
	Strings []string
}

// Unknown keeps the raw RDATA of any type the codec does not interpret, and
// of known types whose RDATA failed to decode within its RDLENGTH.
type Unknown struct {
	RRType protocol.RecordType
	Data   []byte
}

func (*A) Type() protocol.RecordType    { return protocol.RecordTypeA }
func (*AAAA) Type() protocol.RecordType { return protocol.RecordTypeAAAA }
func (*PTR) Type() protocol.RecordType  { return protocol.RecordTypePTR }
func (*SRV) Type() protocol.RecordType  { return protocol.RecordTypeSRV }
func (*TXT) Type() protocol.RecordType  { return protocol.RecordTypeTXT }
func (u *Unknown) Type() protocol.RecordType {
	return u.RRType
}

func (a *A) String() string    { return a.Address.String() }
func (a *AAAA) String() string { return a.Address.String() }
func (p *PTR) String() string  { return p.Target }
func (s *SRV) String() string {
	return fmt.Sprintf("%d %d %d %s", s.Priority, s.Weight, s.Port, s.Target)
}
func (t *TXT) String() string {
	quoted := make([]string, len(t.Strings))
	for i, s := range t.Strings {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, " ")
}
func (u *Unknown) String() string {
	return fmt.Sprintf(`\# %d %x`, len(u.Data), u.Data)
}

type recordDecoder func(r *reader, length int) (Record, error)

var recordDecoders = map[protocol.RecordType]recordDecoder{
	protocol.RecordTypeA:    decodeA,
	protocol.RecordTypeAAAA: decodeAAAA,
	protocol.RecordTypePTR:  decodePTR,
	protocol.RecordTypeSRV:  decodeSRV,
	protocol.RecordTypeTXT:  decodeTXT,
}

// decodeRecord decodes RDATA from a reader bounded to exactly length bytes.
// It never fails: anything it cannot interpret becomes an *Unknown.
func decodeRecord(r *reader, rrType protocol.RecordType, length int) Record {
	start := r.off
	if decode, ok := recordDecoders[rrType]; ok {
		if rec, err := decode(r, length); err == nil && r.off == start+length {
			return rec
		}
		r.off = start
	}

	data, _ := r.readBytes(length)
	return &Unknown{RRType: rrType, Data: data}
}

func decodeA(r *reader, length int) (Record, error) {
	if length != 4 {
		return nil, r.fail("decode A", "rdlength %d, want 4", length)
	}
	b, err := r.readBytes(4)
	if err != nil {
		return nil, err
	}
	return &A{Address: netip.AddrFrom4([4]byte(b))}, nil
}

func decodeAAAA(r *reader, length int) (Record, error) {
	if length != 16 {
		return nil, r.fail("decode AAAA", "rdlength %d, want 16", length)
	}
	b, err := r.readBytes(16)
	if err != nil {
		return nil, err
	}
	return &AAAA{Address: netip.AddrFrom16([16]byte(b))}, nil
}

func decodePTR(r *reader, _ int) (Record, error) {
	target, err := r.readName()
	if err != nil {
		return nil, err
	}
	return &PTR{Target: target}, nil
}

func decodeSRV(r *reader, _ int) (Record, error) {
	fields, err := r.readUint16s(3)
	if err != nil {
		return nil, err
	}
	target, err := r.readName()
	if err != nil {
		return nil, err
	}
	return &SRV{Priority: fields[0], Weight: fields[1], Port: fields[2], Target: target}, nil
}

func decodeTXT(r *reader, length int) (Record, error) {
	end := r.off + length
	txt := &TXT{}
	for r.off < end {
		s, err := r.readCharacterString()
		if err != nil {
			return nil, err
		}
		txt.Strings = append(txt.Strings, s)
	}
	return txt, nil
}
