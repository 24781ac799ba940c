package message

import (
	"time"

	"github.com/joshuafuller/zeroconf/internal/protocol"
)

// Minimum encoded sizes used to reject impossible section counts before
// allocating: a root name plus fixed fields.
const (
	minQuestionSize = 1 + 4
	minRecordSize   = 1 + 10
)

// Response is a decoded DNS message.
type Response struct {
	Header      Header
	Questions   []Question
	Answers     []ResourceRecord
	Authorities []ResourceRecord
	Additionals []ResourceRecord

	// Timestamp is when the message was decoded.
	Timestamp time.Time

	// MessageSize is the datagram length in bytes.
	MessageSize int

	// Error is the RCODE mnemonic when RCODE is not NoError, and "" otherwise.
	// Sections are still decoded for such messages.
	Error string
}

// Decode parses a DNS message.
//
// Decoding is all-or-nothing: any structural error in the header, a
// question, or a record envelope returns a *errors.WireFormatError and no
// Response. Unknown record types, and known types whose RDATA does not
// parse within its RDLENGTH, decode as *Unknown. Bytes after the last
// counted record are ignored.
func Decode(data []byte) (*Response, error) {
	return DecodeAt(data, time.Now())
}

// DecodeAt is Decode with an explicit timestamp.
func DecodeAt(data []byte, now time.Time) (*Response, error) {
	r := newReader(data)

	header, err := parseHeader(r)
	if err != nil {
		return nil, err
	}

	records := int(header.ANCount) + int(header.NSCount) + int(header.ARCount)
	if need := int(header.QDCount)*minQuestionSize + records*minRecordSize; need > r.remaining() {
		return nil, r.fail("parse message", "section counts need at least %d bytes, have %d", need, r.remaining())
	}

	resp := &Response{
		Header:      header,
		Timestamp:   now,
		MessageSize: len(data),
	}
	if header.RCode != protocol.RCodeNoError {
		resp.Error = header.RCode.String()
	}

	if header.QDCount > 0 {
		resp.Questions = make([]Question, 0, header.QDCount)
	}
	for i := 0; i < int(header.QDCount); i++ {
		q, err := parseQuestion(r)
		if err != nil {
			return nil, err
		}
		resp.Questions = append(resp.Questions, q)
	}

	if resp.Answers, err = parseSection(r, header.ANCount); err != nil {
		return nil, err
	}
	if resp.Authorities, err = parseSection(r, header.NSCount); err != nil {
		return nil, err
	}
	if resp.Additionals, err = parseSection(r, header.ARCount); err != nil {
		return nil, err
	}

	return resp, nil
}

func parseSection(r *reader, count uint16) ([]ResourceRecord, error) {
	if count == 0 {
		return nil, nil
	}
	rrs := make([]ResourceRecord, 0, count)
	for i := 0; i < int(count); i++ {
		rr, err := parseResourceRecord(r)
		if err != nil {
			return nil, err
		}
		rrs = append(rrs, rr)
	}
	return rrs, nil
}

// IsQueryResponse reports whether the QR flag is set.
func (m *Response) IsQueryResponse() bool {
	return m.Header.QR
}

// Records returns answers, authorities and additionals concatenated in
// that order.
func (m *Response) Records() []ResourceRecord {
	all := make([]ResourceRecord, 0, len(m.Answers)+len(m.Authorities)+len(m.Additionals))
	all = append(all, m.Answers...)
	all = append(all, m.Authorities...)
	return append(all, m.Additionals...)
}

// PTRAnswers returns the answer records that decoded as PTR.
func (m *Response) PTRAnswers() []ResourceRecord {
	var out []ResourceRecord
	for _, rr := range m.Answers {
		if _, ok := rr.Data.(*PTR); ok {
			out = append(out, rr)
		}
	}
	return out
}
