// Package protocol defines the wire-level constants shared by the DNS codec,
// the multicast transport and the discovery client.
//
// RFC 1035 §3-§4: DNS message format
// RFC 6762 §5, §18: Multicast DNS addressing and header semantics
// RFC 6763 §9: Service type enumeration
package protocol

import "fmt"

// mDNS addressing per RFC 6762 §5.
const (
	// Port is the UDP port used by all mDNS traffic.
	Port = 5353

	// MulticastAddrIPv4 is the IPv4 link-local mDNS group.
	MulticastAddrIPv4 = "224.0.0.251"

	// MulticastAddrIPv6 is the IPv6 link-local mDNS group.
	MulticastAddrIPv6 = "ff02::fb"
)

// BrowseDomainsProtocol is the DNS-SD meta-query name that enumerates every
// service type advertised on the link (RFC 6763 §9).
const BrowseDomainsProtocol = "_services._dns-sd._udp.local."

// Message layout limits per RFC 1035 §2.3.4 and §4.1.
const (
	// HeaderSize is the fixed length of a DNS message header.
	HeaderSize = 12

	// MaxLabelLength is the maximum length of a single label.
	MaxLabelLength = 63

	// MaxNameLength is the maximum wire length of an encoded domain name.
	MaxNameLength = 255

	// MaxMessageSize is the largest mDNS datagram we accept (RFC 6762 §17).
	MaxMessageSize = 9000

	// MaxCompressionJumps bounds how many compression pointers a single
	// name may follow before it is rejected as a loop.
	MaxCompressionJumps = 126
)

// TTL defaults per RFC 6762 §10.
const (
	// TTLService is the recommended TTL for PTR, SRV and TXT records.
	TTLService uint32 = 120

	// TTLHostname is the recommended TTL for A and AAAA records.
	TTLHostname uint32 = 4500
)

// Header flag masks per RFC 1035 §4.1.1.
const (
	FlagQR     uint16 = 0x8000
	FlagAA     uint16 = 0x0400
	FlagTC     uint16 = 0x0200
	FlagRD     uint16 = 0x0100
	FlagRA     uint16 = 0x0080
	OpCodeMask uint16 = 0x7800
	ZMask      uint16 = 0x0070
	RCodeMask  uint16 = 0x000F

	opCodeShift = 11
	zShift      = 4
)

// OpCodeFromFlags extracts the opcode from a header flags word.
func OpCodeFromFlags(flags uint16) OpCode {
	return OpCode((flags & OpCodeMask) >> opCodeShift)
}

// ZFromFlags extracts the reserved Z bits from a header flags word.
func ZFromFlags(flags uint16) uint8 {
	return uint8((flags & ZMask) >> zShift)
}

// FlagsFor packs an opcode, reserved bits and rcode into their flag positions.
func FlagsFor(op OpCode, z uint8, rc RCode) uint16 {
	return uint16(op)<<opCodeShift&OpCodeMask | uint16(z)<<zShift&ZMask | uint16(rc)&RCodeMask
}

// RecordType is a DNS TYPE or QTYPE value (RFC 1035 §3.2.2, §3.2.3).
type RecordType uint16

// Record types understood by the codec. RecordTypeANY is only valid in questions.
const (
	RecordTypeA    RecordType = 1
	RecordTypePTR  RecordType = 12
	RecordTypeTXT  RecordType = 16
	RecordTypeAAAA RecordType = 28
	RecordTypeSRV  RecordType = 33
	RecordTypeANY  RecordType = 255
)

var recordTypeNames = map[RecordType]string{
	RecordTypeA:    "A",
	RecordTypePTR:  "PTR",
	RecordTypeTXT:  "TXT",
	RecordTypeAAAA: "AAAA",
	RecordTypeSRV:  "SRV",
	RecordTypeANY:  "ANY",
}

// String returns the mnemonic for known types and TYPEnnn otherwise (RFC 3597 §5).
func (t RecordType) String() string {
	if name, ok := recordTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TYPE%d", uint16(t))
}

// Class is a DNS CLASS value with the mDNS top bit already removed.
type Class uint16

const (
	// ClassIN is the Internet class.
	ClassIN Class = 1

	// ClassANY matches every class in questions.
	ClassANY Class = 255

	// ClassTopBit is the cache-flush bit on resource records (RFC 6762 §10.2)
	// and the unicast-response bit on questions (RFC 6762 §5.4).
	ClassTopBit uint16 = 0x8000
)

// String returns the mnemonic for known classes.
func (c Class) String() string {
	switch c {
	case ClassIN:
		return "IN"
	case ClassANY:
		return "ANY"
	default:
		return fmt.Sprintf("CLASS%d", uint16(c))
	}
}

// OpCode is the kind of query in a message header.
type OpCode uint8

const (
	OpCodeQuery  OpCode = 0
	OpCodeIQuery OpCode = 1
	OpCodeStatus OpCode = 2
	OpCodeNotify OpCode = 4
	OpCodeUpdate OpCode = 5
)

// RCode is a response code (RFC 1035 §4.1.1, RFC 2136 §2.2).
type RCode uint8

const (
	RCodeNoError  RCode = 0
	RCodeFormErr  RCode = 1
	RCodeServFail RCode = 2
	RCodeNXDomain RCode = 3
	RCodeNotImp   RCode = 4
	RCodeRefused  RCode = 5
	RCodeYXDomain RCode = 6
	RCodeYXRRSet  RCode = 7
	RCodeNXRRSet  RCode = 8
	RCodeNotAuth  RCode = 9
	RCodeNotZone  RCode = 10
)

var rcodeNames = [...]string{
	RCodeNoError:  "NoError",
	RCodeFormErr:  "FormErr",
	RCodeServFail: "ServFail",
	RCodeNXDomain: "NXDomain",
	RCodeNotImp:   "NotImp",
	RCodeRefused:  "Refused",
	RCodeYXDomain: "YXDomain",
	RCodeYXRRSet:  "YXRRSet",
	RCodeNXRRSet:  "NXRRSet",
	RCodeNotAuth:  "NotAuth",
	RCodeNotZone:  "NotZone",
}

// String returns the symbolic name of the response code.
func (r RCode) String() string {
	if int(r) < len(rcodeNames) {
		return rcodeNames[r]
	}
	return fmt.Sprintf("RCode%d", uint8(r))
}
