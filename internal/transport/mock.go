package transport

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/joshuafuller/zeroconf/internal/errors"
)

// SendCall records one MockTransport.Send invocation.
type SendCall struct {
	Packet   []byte
	Adapters []Adapter
	At       time.Time
}

// Responder produces the packets a simulated network answers a query with.
type Responder func(query []byte, adapters []Adapter) []Packet

// MockTransport is an in-memory Transport for tests.
//
// Packets passed to Deliver, or produced by the Responder after a Send,
// reach every active Listen call. Packets that arrive while nobody is
// listening are queued and handed to the next Listen call.
type MockTransport struct {
	clock clock.Clock
	hub   *hub

	mu        sync.Mutex
	adapters  []Adapter
	sendCalls []SendCall
	pending   []Packet
	failing   map[string]error
	responder Responder
	closeErr  error
	closed    bool
}

var _ Transport = (*MockTransport)(nil)

// NewMockTransport returns a mock exposing adapters.
func NewMockTransport(adapters ...Adapter) *MockTransport {
	return &MockTransport{
		clock:    clock.New(),
		hub:      newHub(),
		adapters: adapters,
		failing:  make(map[string]error),
	}
}

// SetClock replaces the clock that bounds Listen windows.
func (m *MockTransport) SetClock(clk clock.Clock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = clk
}

// SetResponder installs r to answer every subsequent Send.
func (m *MockTransport) SetResponder(r Responder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responder = r
}

// FailAdapter makes sends on the named adapter fail with err.
func (m *MockTransport) FailAdapter(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[name] = err
}

// SetCloseError makes Close return err.
func (m *MockTransport) SetCloseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeErr = err
}

// Send records the call, fails the adapters marked with FailAdapter, and
// delivers whatever the Responder returns.
func (m *MockTransport) Send(ctx context.Context, packet []byte, adapters []Adapter) error {
	if err := ctx.Err(); err != nil {
		return &errors.NetworkError{Operation: "send query", Err: err, Details: "context canceled before send"}
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errClosed("send query")
	}
	if len(adapters) == 0 {
		adapters = m.adapters
	}
	m.sendCalls = append(m.sendCalls, SendCall{
		Packet:   append([]byte(nil), packet...),
		Adapters: append([]Adapter(nil), adapters...),
		At:       m.clock.Now(),
	})

	var errs error
	for _, adapter := range adapters {
		if err, ok := m.failing[adapter.Name]; ok {
			errs = multierr.Append(errs, &errors.NetworkError{Operation: "send query", Adapter: adapter.Name, Err: err})
		}
	}
	responder := m.responder
	m.mu.Unlock()

	if responder != nil {
		for _, p := range responder(packet, adapters) {
			m.Deliver(p)
		}
	}
	return errs
}

// Listen implements Transport.
func (m *MockTransport) Listen(ctx context.Context, duration time.Duration, handler Handler, ready func()) error {
	m.mu.Lock()
	clk := m.clock
	m.mu.Unlock()

	return m.hub.listen(ctx, clk, duration, handler, func(sub *subscription) {
		m.mu.Lock()
		queued := m.pending
		m.pending = nil
		m.mu.Unlock()

		for _, p := range queued {
			sub.deliver(p)
		}
		if ready != nil {
			ready()
		}
	})
}

// Deliver injects an inbound datagram.
func (m *MockTransport) Deliver(p Packet) {
	m.mu.Lock()
	if m.hub.count() == 0 {
		m.pending = append(m.pending, p)
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.hub.dispatch(p)
}

// Listeners returns the number of active Listen calls.
func (m *MockTransport) Listeners() int {
	return m.hub.count()
}

// SendCalls returns a copy of every recorded Send.
func (m *MockTransport) SendCalls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SendCall(nil), m.sendCalls...)
}

// Adapters implements Transport.
func (m *MockTransport) Adapters() ([]Adapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Adapter(nil), m.adapters...), nil
}

// Close ends all Listen calls.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.closed = true
	err := m.closeErr
	m.mu.Unlock()

	if !m.hub.close() {
		return errClosed("close socket")
	}
	return err
}
