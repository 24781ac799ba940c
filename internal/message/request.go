package message

import (
	"github.com/joshuafuller/zeroconf/internal/errors"
	"github.com/joshuafuller/zeroconf/internal/protocol"
)

// Request is an outgoing mDNS query: a header plus a mutable question list.
//
// RFC 6762 §18: multicast queries carry ID 0 and opcode QUERY, with QR, AA,
// TC and RCODE all zero.
type Request struct {
	Header    Header
	Questions []Question
}

// NewRequest returns a standard query holding questions.
func NewRequest(questions ...Question) *Request {
	return &Request{
		Header:    Header{OpCode: protocol.OpCodeQuery},
		Questions: questions,
	}
}

// AddQuestion appends q to the question section.
func (r *Request) AddQuestion(q Question) {
	r.Questions = append(r.Questions, q)
}

// Encode serializes req into wire format. QDCOUNT is recomputed from the
// question list; the record counts are written as zero.
func Encode(req *Request) ([]byte, error) {
	if len(req.Questions) > 0xFFFF {
		return nil, &errors.ValidationError{
			Field:   "questions",
			Value:   len(req.Questions),
			Message: "more than 65535 questions",
		}
	}

	req.Header.QDCount = uint16(len(req.Questions))
	req.Header.ANCount, req.Header.NSCount, req.Header.ARCount = 0, 0, 0

	buf := make([]byte, 0, 512)
	buf = req.Header.appendTo(buf)

	var err error
	for _, q := range req.Questions {
		if buf, err = q.appendTo(buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
