package message

import (
	"encoding/binary"

	"github.com/joshuafuller/zeroconf/internal/protocol"
)

// Question is one entry of the question section (RFC 1035 §4.1.2).
type Question struct {
	Name  string
	Type  protocol.RecordType
	Class protocol.Class

	// UnicastResponse is the QU bit (RFC 6762 §5.4), carried in the top bit
	// of QCLASS on the wire.
	UnicastResponse bool
}

// NewQuestion returns a multicast (QM) question.
func NewQuestion(name string, qtype protocol.RecordType, class protocol.Class) Question {
	return Question{Name: name, Type: qtype, Class: class}
}

func (q Question) appendTo(b []byte) ([]byte, error) {
	name, err := EncodeName(q.Name)
	if err != nil {
		return nil, err
	}

	class := uint16(q.Class)
	if q.UnicastResponse {
		class |= protocol.ClassTopBit
	}

	b = append(b, name...)
	b = binary.BigEndian.AppendUint16(b, uint16(q.Type))
	return binary.BigEndian.AppendUint16(b, class), nil
}

func parseQuestion(r *reader) (Question, error) {
	name, err := r.readName()
	if err != nil {
		return Question{}, err
	}

	fields, err := r.readUint16s(2)
	if err != nil {
		return Question{}, err
	}

	return Question{
		Name:            name,
		Type:            protocol.RecordType(fields[0]),
		Class:           protocol.Class(fields[1] &^ protocol.ClassTopBit),
		UnicastResponse: fields[1]&protocol.ClassTopBit != 0,
	}, nil
}
