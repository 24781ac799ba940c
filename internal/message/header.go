package message

import (
	"encoding/binary"

	"github.com/joshuafuller/zeroconf/internal/protocol"
)

// Header is the fixed 12-byte DNS message header (RFC 1035 §4.1.1).
//
// RFC 6762 §18: in multicast queries ID is zero; responders set QR and AA.
type Header struct {
	ID                 uint16
	QR                 bool // response flag
	OpCode             protocol.OpCode
	Authoritative      bool
	Truncated          bool
	RecursionDesired   bool
	RecursionAvailable bool
	Z                  uint8
	RCode              protocol.RCode

	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// Flags packs the flag fields into the second header word.
func (h Header) Flags() uint16 {
	flags := protocol.FlagsFor(h.OpCode, h.Z, h.RCode)
	if h.QR {
		flags |= protocol.FlagQR
	}
	if h.Authoritative {
		flags |= protocol.FlagAA
	}
	if h.Truncated {
		flags |= protocol.FlagTC
	}
	if h.RecursionDesired {
		flags |= protocol.FlagRD
	}
	if h.RecursionAvailable {
		flags |= protocol.FlagRA
	}
	return flags
}

func (h Header) appendTo(b []byte) []byte {
	b = binary.BigEndian.AppendUint16(b, h.ID)
	b = binary.BigEndian.AppendUint16(b, h.Flags())
	b = binary.BigEndian.AppendUint16(b, h.QDCount)
	b = binary.BigEndian.AppendUint16(b, h.ANCount)
	b = binary.BigEndian.AppendUint16(b, h.NSCount)
	return binary.BigEndian.AppendUint16(b, h.ARCount)
}

func parseHeader(r *reader) (Header, error) {
	if r.remaining() < protocol.HeaderSize {
		return Header{}, r.fail("parse header", "message length %d shorter than %d-byte header", r.remaining(), protocol.HeaderSize)
	}

	words, err := r.readUint16s(6)
	if err != nil {
		return Header{}, err
	}

	flags := words[1]
	return Header{
		ID:                 words[0],
		QR:                 flags&protocol.FlagQR != 0,
		OpCode:             protocol.OpCodeFromFlags(flags),
		Authoritative:      flags&protocol.FlagAA != 0,
		Truncated:          flags&protocol.FlagTC != 0,
		RecursionDesired:   flags&protocol.FlagRD != 0,
		RecursionAvailable: flags&protocol.FlagRA != 0,
		Z:                  protocol.ZFromFlags(flags),
		RCode:              protocol.RCode(flags & protocol.RCodeMask),
		QDCount:            words[2],
		ANCount:            words[3],
		NSCount:            words[4],
		ARCount:            words[5],
	}, nil
}
