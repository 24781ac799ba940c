package zeroconf

import (
	"strconv"

	"github.com/joshuafuller/zeroconf/internal/message"
	"github.com/joshuafuller/zeroconf/internal/protocol"
)

// ScanQueryType selects the question type sent for every protocol.
//
// RFC 6763 §4.1: browsing for instances of a service type is a PTR query.
// Some responders only answer the full record set, which ANY requests.
type ScanQueryType int

const (
	// ScanQueryTypePtr sends PTR questions (type 12).
	ScanQueryTypePtr ScanQueryType = iota

	// ScanQueryTypeAny sends ANY questions (type 255).
	ScanQueryTypeAny
)

func (t ScanQueryType) valid() bool {
	return t == ScanQueryTypePtr || t == ScanQueryTypeAny
}

// RecordType returns the DNS QTYPE sent for t.
func (t ScanQueryType) RecordType() protocol.RecordType {
	if t == ScanQueryTypeAny {
		return protocol.RecordTypeANY
	}
	return protocol.RecordTypePTR
}

// String returns "Ptr" or "Any".
func (t ScanQueryType) String() string {
	switch t {
	case ScanQueryTypePtr:
		return "Ptr"
	case ScanQueryTypeAny:
		return "Any"
	default:
		return "ScanQueryType(" + strconv.Itoa(int(t)) + ")"
	}
}

// buildQuery encodes one IN-class question per protocol (RFC 6762 §5.2).
func buildQuery(o *Options) ([]byte, error) {
	req := message.NewRequest()
	for _, p := range o.protocols {
		req.AddQuestion(message.NewQuestion(p, o.ScanQueryType.RecordType(), protocol.ClassIN))
	}
	return message.Encode(req)
}
