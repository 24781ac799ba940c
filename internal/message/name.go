// Package message implements the DNS wire format used by mDNS and DNS-SD
// (RFC 1035 §4, RFC 6762 §18, RFC 6763).
//
// Encode serializes a Request into a query datagram. Decode parses a
// datagram into a Response holding typed resource records (A, AAAA, PTR,
// SRV, TXT, and an opaque fallback for every other type). Both are pure
// functions with no I/O.
//
// Names are returned fully qualified with a trailing dot, the way they
// appear in zone files: "dev1._http._tcp.local.". The root name is ".".
package message

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/joshuafuller/zeroconf/internal/errors"
	"github.com/joshuafuller/zeroconf/internal/protocol"
)

const (
	labelTypeMask    = 0xC0
	labelTypeNormal  = 0x00
	labelTypePointer = 0xC0
	pointerMask      = 0x3FFF
)

// ParseName decodes the domain name that starts at offset, following
// compression pointers (RFC 1035 §4.1.4).
//
// It returns the dotted name and the offset of the first byte after the
// name in the original byte stream (after the first pointer, if any).
//
// Loop protection: every pointer must point strictly before the pointer
// itself, and a name may follow at most protocol.MaxCompressionJumps
// pointers. The expanded name may not exceed 255 bytes (RFC 1035 §3.1).
func ParseName(data []byte, offset int) (string, int, error) {
	if offset < 0 || offset >= len(data) {
		return "", 0, nameError(offset, "offset out of bounds (message length %d)", len(data))
	}

	var sb strings.Builder
	pos := offset
	next := -1
	jumps := 0
	wireLen := 0

	for {
		if pos >= len(data) {
			return "", 0, nameError(pos, "truncated name: missing terminating zero label")
		}

		length := int(data[pos])
		switch length & labelTypeMask {
		case labelTypeNormal:
			if length == 0 {
				if next < 0 {
					next = pos + 1
				}
				if sb.Len() == 0 {
					return ".", next, nil
				}
				return sb.String(), next, nil
			}

			if pos+1+length > len(data) {
				return "", 0, nameError(pos, "truncated label: length %d, %d bytes available", length, len(data)-pos-1)
			}

			wireLen += 1 + length
			if wireLen+1 > protocol.MaxNameLength {
				return "", 0, nameError(pos, "name length exceeds maximum 255 bytes per RFC 1035 §3.1")
			}

			sb.Write(data[pos+1 : pos+1+length])
			sb.WriteByte('.')
			pos += 1 + length

		case labelTypePointer:
			if pos+1 >= len(data) {
				return "", 0, nameError(pos, "truncated compression pointer")
			}

			target := int(binary.BigEndian.Uint16(data[pos:]) & pointerMask)
			if target >= pos {
				return "", 0, nameError(pos, "invalid compression pointer to offset %d: must point backward", target)
			}

			jumps++
			if jumps > protocol.MaxCompressionJumps {
				return "", 0, nameError(pos, "too many compression pointers (limit %d)", protocol.MaxCompressionJumps)
			}

			if next < 0 {
				next = pos + 2
			}
			pos = target

		default:
			// 0x40 and 0x80 prefixes are reserved (RFC 6891 §5), so any
			// length byte above 63 lands here.
			return "", 0, nameError(pos, "label length %d exceeds maximum 63 bytes per RFC 1035 §3.1", length)
		}
	}
}

func nameError(offset int, format string, args ...interface{}) error {
	return &errors.WireFormatError{
		Operation: "parse name",
		Offset:    offset,
		Message:   fmt.Sprintf(format, args...),
	}
}

// EncodeName encodes a domain name as uncompressed length-prefixed labels
// terminated by a zero-length label (RFC 1035 §3.1).
//
// The trailing dot is optional. Labels are restricted to letters, digits,
// hyphens and the DNS-SD underscore (RFC 6763 §7); hyphens may not start or
// end a label. Violations return a ValidationError.
func EncodeName(name string) ([]byte, error) {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return []byte{0x00}, nil
	}

	labels := strings.Split(name, ".")
	encoded := make([]byte, 0, len(name)+2)

	for _, label := range labels {
		if err := validateLabel(name, label); err != nil {
			return nil, err
		}
		encoded = append(encoded, byte(len(label)))
		encoded = append(encoded, label...)
	}
	encoded = append(encoded, 0x00)

	if len(encoded) > protocol.MaxNameLength {
		return nil, &errors.ValidationError{
			Field:   "name",
			Value:   name,
			Message: fmt.Sprintf("encoded length %d exceeds maximum 255 bytes per RFC 1035 §3.1", len(encoded)),
		}
	}

	return encoded, nil
}

func validateLabel(name, label string) error {
	invalid := func(format string, args ...interface{}) error {
		return &errors.ValidationError{Field: "name", Value: name, Message: fmt.Sprintf(format, args...)}
	}

	if label == "" {
		return invalid("empty label")
	}
	if len(label) > protocol.MaxLabelLength {
		return invalid("label %q exceeds maximum length 63 bytes per RFC 1035 §3.1", label)
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return invalid("label %q: hyphen cannot be first or last character", label)
	}

	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_':
		default:
			return invalid("label %q: invalid character %q at position %d", label, c, i)
		}
	}
	return nil
}
