package records

import (
	"testing"
	"time"

	"github.com/joshuafuller/zeroconf/internal/protocol"
)

// TestTTL_GetRemainingTTL tests remaining TTL calculation.
//
// RFC 6762 §10: TTL values decrease over time
func TestTTL_GetRemainingTTL(t *testing.T) {
	tests := []struct {
		name       string
		ttl        uint32
		elapsed    time.Duration
		wantRemain uint32
	}{
		{
			name:       "fresh record - no time elapsed",
			ttl:        protocol.TTLHostname, // 4500 seconds
			elapsed:    0,
			wantRemain: 4500,
		},
		{
			name:       "half TTL elapsed",
			ttl:        protocol.TTLService, // 120 seconds
			elapsed:    60 * time.Second,
			wantRemain: 60,
		},
		{
			name:       "almost expired",
			ttl:        protocol.TTLService, // 120 seconds
			elapsed:    119 * time.Second,
			wantRemain: 1,
		},
		{
			name:       "fully elapsed returns 0",
			ttl:        protocol.TTLService, // 120 seconds
			elapsed:    120 * time.Second,
			wantRemain: 0,
		},
		{
			name:       "over-elapsed returns 0",
			ttl:        protocol.TTLService, // 120 seconds
			elapsed:    200 * time.Second,
			wantRemain: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create a record with a specific TTL
			record := &RecordTTL{
				TTL:       tt.ttl,
				CreatedAt: time.Now().Add(-tt.elapsed), // Simulate elapsed time
			}

			gotRemain := record.GetRemainingTTL()
			if gotRemain != tt.wantRemain {
				t.Errorf("GetRemainingTTL() = %d, want %d (ttl=%d, elapsed=%v)",
					gotRemain, tt.wantRemain, tt.ttl, tt.elapsed)
			}
		})
	}
}

// TestTTL_IsExpired tests expiration checking.
//
// RFC 6762 §10: Records expire when TTL reaches zero
func TestTTL_IsExpired(t *testing.T) {
	tests := []struct {
		name        string
		ttl         uint32
		elapsed     time.Duration
		wantExpired bool
	}{
		{
			name:        "fresh record not expired",
			ttl:         protocol.TTLService,
			elapsed:     0,
			wantExpired: false,
		},
		{
			name:        "half TTL not expired",
			ttl:         protocol.TTLService, // 120 seconds
			elapsed:     60 * time.Second,
			wantExpired: false,
		},
		{
			name:        "one second before expiry not expired",
			ttl:         protocol.TTLService, // 120 seconds
			elapsed:     119 * time.Second,
			wantExpired: false,
		},
		{
			name:        "exactly at TTL is expired",
			ttl:         protocol.TTLService, // 120 seconds
			elapsed:     120 * time.Second,
			wantExpired: true,
		},
		{
			name:        "past TTL is expired",
			ttl:         protocol.TTLService, // 120 seconds
			elapsed:     200 * time.Second,
			wantExpired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := &RecordTTL{
				TTL:       tt.ttl,
				CreatedAt: time.Now().Add(-tt.elapsed),
			}

			gotExpired := record.IsExpired()
			if gotExpired != tt.wantExpired {
				t.Errorf("IsExpired() = %v, want %v (ttl=%d, elapsed=%v)",
					gotExpired, tt.wantExpired, tt.ttl, tt.elapsed)
			}
		})
	}
}

// TestTTL_CreatedAtTimestamp tests that records store the time they were received.
func TestTTL_CreatedAtTimestamp(t *testing.T) {
	before := time.Now()
	time.Sleep(10 * time.Millisecond) // Small delay to ensure timestamp precision

	record := NewRecordTTL(protocol.RecordTypeA, protocol.TTLHostname)

	time.Sleep(10 * time.Millisecond)
	after := time.Now()

	if record.CreatedAt.Before(before) {
		t.Errorf("CreatedAt %v is before record creation %v", record.CreatedAt, before)
	}

	if record.CreatedAt.After(after) {
		t.Errorf("CreatedAt %v is after record creation %v", record.CreatedAt, after)
	}
}

// TestTTL_RecommendedValues validates the RFC 6762 §10 TTL constants.
func TestTTL_RecommendedValues(t *testing.T) {
	// RFC 6762 §10: Hostname records use 4500 seconds (75 minutes)
	if protocol.TTLHostname != 4500 {
		t.Errorf("protocol.TTLHostname = %d, want 4500 (RFC 6762 §10: 75 minutes)",
			protocol.TTLHostname)
	}

	// RFC 6762 §10: Service discovery records use 120 seconds (2 minutes)
	if protocol.TTLService != 120 {
		t.Errorf("protocol.TTLService = %d, want 120 (RFC 6762 §10: 2 minutes)",
			protocol.TTLService)
	}
}

func TestTTL_RemainingAtFixedClock(t *testing.T) {
	received := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	record := NewRecordTTLAt(protocol.RecordTypeSRV, 120, received)

	if got := record.RemainingAt(received.Add(-time.Minute)); got != 120 {
		t.Errorf("RemainingAt(before receipt) = %d, want 120", got)
	}
	if got := record.RemainingAt(received.Add(90*time.Second + 500*time.Millisecond)); got != 30 {
		t.Errorf("RemainingAt(+90.5s) = %d, want 30", got)
	}
	if !record.ExpiredAt(received.Add(2 * time.Minute)) {
		t.Error("ExpiredAt(+120s) = false, want true")
	}
}
