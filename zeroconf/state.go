package zeroconf

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joshuafuller/zeroconf/internal/errors"
)

// State is the phase of one discovery operation.
type State int

const (
	StateIdle State = iota
	StateLocking
	StateSending
	StateDraining
	StateListening
	StateCompleted
	StateCancelled
	StateFailed
)

var stateNames = [...]string{
	StateIdle:      "idle",
	StateLocking:   "locking",
	StateSending:   "sending",
	StateDraining:  "draining",
	StateListening: "listening",
	StateCompleted: "completed",
	StateCancelled: "cancelled",
	StateFailed:    "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// operation tracks one Resolve, BrowseDomains or ListenForAnnouncements call.
type operation struct {
	id      string
	kind    string
	log     *zap.Logger
	metrics *metrics

	mu    sync.Mutex
	state State
}

func newOperation(kind string, log *zap.Logger, m *metrics) *operation {
	id := uuid.NewString()
	return &operation{
		id:      id,
		kind:    kind,
		log:     log.With(zap.String("op", id), zap.String("operation", kind)),
		metrics: m,
		state:   StateIdle,
	}
}

// transition moves to next. Terminal states are final.
func (o *operation) transition(next State) bool {
	o.mu.Lock()
	prev := o.state
	if prev.Terminal() || prev == next {
		o.mu.Unlock()
		return false
	}
	o.state = next
	o.mu.Unlock()

	o.log.Debug("state transition", zap.Stringer("from", prev), zap.Stringer("to", next))
	return true
}

func (o *operation) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *operation) completed(matches int) {
	if o.transition(StateCompleted) {
		o.metrics.operations.WithLabelValues(o.kind, outcomeCompleted).Inc()
		o.log.Debug("operation completed", zap.Int("matches", matches))
	}
}

func (o *operation) cancelled(err error) error {
	if o.transition(StateCancelled) {
		o.metrics.operations.WithLabelValues(o.kind, outcomeCancelled).Inc()
	}
	return errors.Cancelled(o.kind, err)
}

func (o *operation) failed(err error) error {
	if o.transition(StateFailed) {
		o.metrics.operations.WithLabelValues(o.kind, outcomeFailed).Inc()
		o.log.Debug("operation failed", zap.Error(err))
	}
	return err
}
