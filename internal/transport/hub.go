package transport

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/joshuafuller/zeroconf/internal/errors"
)

// hub fans inbound packets out to the active Listen calls.
type hub struct {
	mu     sync.Mutex
	subs   map[uint64]*subscription
	nextID uint64
	done   chan struct{}
	closed bool
}

type subscription struct {
	id      uint64
	mu      sync.Mutex // serializes handler calls and guards active
	active  bool
	handler Handler
}

func newHub() *hub {
	return &hub{
		subs: make(map[uint64]*subscription),
		done: make(chan struct{}),
	}
}

func (s *subscription) deliver(p Packet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false
	}
	s.handler(p)
	return true
}

func (h *hub) subscribe(handler Handler) (*subscription, error) {
	if handler == nil {
		return nil, &errors.ValidationError{Field: "handler", Message: "handler cannot be nil"}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, errClosed("listen")
	}

	h.nextID++
	sub := &subscription{id: h.nextID, active: true, handler: handler}
	h.subs[sub.id] = sub
	return sub, nil
}

// unsubscribe removes sub and waits for an in-flight handler call to finish.
func (h *hub) unsubscribe(sub *subscription) {
	h.mu.Lock()
	delete(h.subs, sub.id)
	h.mu.Unlock()

	sub.mu.Lock()
	sub.active = false
	sub.mu.Unlock()
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// dispatch delivers p to every subscriber and returns how many received it.
func (h *hub) dispatch(p Packet) int {
	h.mu.Lock()
	subs := make([]*subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	delivered := 0
	for _, sub := range subs {
		if sub.deliver(p) {
			delivered++
		}
	}
	return delivered
}

// listen runs a full subscribe/wait/unsubscribe cycle. The window starts
// before the subscription goes live. ready, if non-nil, runs once it is.
func (h *hub) listen(ctx context.Context, clk clock.Clock, duration time.Duration, handler Handler, ready func(*subscription)) error {
	var expired <-chan time.Time
	if duration > 0 {
		timer := clk.Timer(duration)
		defer timer.Stop()
		expired = timer.C
	}

	sub, err := h.subscribe(handler)
	if err != nil {
		return err
	}
	defer h.unsubscribe(sub)

	if ready != nil {
		ready(sub)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-expired:
		return nil
	case <-h.done:
		return errClosed("listen")
	}
}

// close ends every pending wait. It reports false if the hub was already
// closed.
func (h *hub) close() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.closed = true
	close(h.done)
	return true
}

func (h *hub) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func errClosed(operation string) error {
	return &errors.NetworkError{
		Operation: operation,
		Err:       errTransportClosed,
		Details:   "transport closed",
	}
}
