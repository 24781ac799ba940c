package message

import (
	"encoding/binary"
	"fmt"

	"github.com/joshuafuller/zeroconf/internal/errors"
)

// reader is a cursor over a DNS message.
//
// data always starts at the first byte of the message so compression
// pointers can be resolved; it may be truncated at the end to bound a
// record's RDATA (RFC 1035 §3.2.1 RDLENGTH).
type reader struct {
	data []byte
	off  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

// bounded returns a reader positioned at the current offset that cannot
// read past end.
func (r *reader) bounded(end int) *reader {
	return &reader{data: r.data[:end], off: r.off}
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) fail(operation, format string, args ...interface{}) error {
	return &errors.WireFormatError{
		Operation: operation,
		Offset:    r.off,
		Message:   fmt.Sprintf(format, args...),
	}
}

func (r *reader) need(operation string, n int) error {
	if r.remaining() < n {
		return r.fail(operation, "need %d bytes, have %d", n, r.remaining())
	}
	return nil
}

func (r *reader) readUint8() (uint8, error) {
	if err := r.need("read uint8", 1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

func (r *reader) readUint16() (uint16, error) {
	if err := r.need("read uint16", 2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

// readUint16s reads n consecutive network-order 16-bit integers.
func (r *reader) readUint16s(n int) ([]uint16, error) {
	if err := r.need("read uint16 sequence", 2*n); err != nil {
		return nil, err
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = binary.BigEndian.Uint16(r.data[r.off:])
		r.off += 2
	}
	return out, nil
}

func (r *reader) readUint32() (uint32, error) {
	if err := r.need("read uint32", 4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

// readBytes returns a copy so records never alias the datagram buffer.
func (r *reader) readBytes(n int) ([]byte, error) {
	if err := r.need("read bytes", n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.off:r.off+n])
	r.off += n
	return out, nil
}

func (r *reader) readName() (string, error) {
	name, next, err := ParseName(r.data, r.off)
	if err != nil {
		return "", err
	}
	r.off = next
	return name, nil
}

// readCharacterString reads a length-prefixed <character-string>
// (RFC 1035 §3.3).
func (r *reader) readCharacterString() (string, error) {
	length, err := r.readUint8()
	if err != nil {
		return "", err
	}
	if r.remaining() < int(length) {
		r.off--
		return "", r.fail("read character-string", "length %d exceeds remaining %d bytes", length, r.remaining()-1)
	}
	s := string(r.data[r.off : r.off+int(length)])
	r.off += int(length)
	return s, nil
}
