package records

import (
	"time"

	"github.com/joshuafuller/zeroconf/internal/protocol"
)

// RecordTTL tracks how long a received record stays valid.
//
// RFC 6762 §10: a record is valid for TTL seconds after it was received.
type RecordTTL struct {
	RecordType protocol.RecordType
	TTL        uint32
	CreatedAt  time.Time
}

// NewRecordTTL starts the TTL clock now.
func NewRecordTTL(recordType protocol.RecordType, ttl uint32) *RecordTTL {
	return NewRecordTTLAt(recordType, ttl, time.Now())
}

// NewRecordTTLAt starts the TTL clock at receivedAt.
func NewRecordTTLAt(recordType protocol.RecordType, ttl uint32, receivedAt time.Time) *RecordTTL {
	return &RecordTTL{RecordType: recordType, TTL: ttl, CreatedAt: receivedAt}
}

// GetRemainingTTL returns the whole seconds left, or 0 once expired.
func (r *RecordTTL) GetRemainingTTL() uint32 {
	return r.RemainingAt(time.Now())
}

// RemainingAt returns the whole seconds left at now.
func (r *RecordTTL) RemainingAt(now time.Time) uint32 {
	elapsed := now.Sub(r.CreatedAt)
	if elapsed < 0 {
		return r.TTL
	}
	secs := uint64(elapsed / time.Second)
	if secs >= uint64(r.TTL) {
		return 0
	}
	return r.TTL - uint32(secs)
}

// IsExpired reports whether the TTL has run out.
func (r *RecordTTL) IsExpired() bool {
	return r.ExpiredAt(time.Now())
}

// ExpiredAt reports whether the TTL has run out at now.
func (r *RecordTTL) ExpiredAt(now time.Time) bool {
	return r.RemainingAt(now) == 0
}
