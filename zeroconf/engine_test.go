package zeroconf

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuafuller/zeroconf/internal/transport"
)

// immediateTransport answers every Send synchronously, delivering the reply
// only to a handler that is subscribed at that moment. Replies sent while
// nobody listens are dropped, as they are on a multicast socket.
type immediateTransport struct {
	adapter Adapter
	reply   Packet

	mu      sync.Mutex
	handler transport.Handler
	dropped int
}

func (d *immediateTransport) Adapters() ([]Adapter, error) { return []Adapter{d.adapter}, nil }

func (d *immediateTransport) Close() error { return nil }

func (d *immediateTransport) Send(_ context.Context, _ []byte, _ []Adapter) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handler == nil {
		d.dropped++
		return nil
	}
	d.handler(d.reply)
	return nil
}

func (d *immediateTransport) Listen(ctx context.Context, duration time.Duration, handler transport.Handler, ready func()) error {
	d.mu.Lock()
	d.handler = handler
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.handler = nil
		d.mu.Unlock()
	}()

	if ready != nil {
		ready()
	}

	var expired <-chan time.Time
	if duration > 0 {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-expired:
		return nil
	}
}

func (d *immediateTransport) droppedReplies() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

func TestResolve_ImmediateAnswerIsNotLost(t *testing.T) {
	tr := &immediateTransport{
		adapter: eth0,
		reply:   packetFrom(eth0, "192.168.1.5", dev1Response(t, 120)),
	}
	r := newTestResolver(t, tr)

	opts := quickOptions("_http._tcp.local.")
	opts.ScanTime = 5 * time.Millisecond

	for i := 0; i < 100; i++ {
		hosts, err := r.Resolve(context.Background(), opts, nil)
		require.NoError(t, err)
		require.Len(t, hosts, 1, "attempt %d", i)
		assert.Equal(t, "dev1", hosts[0].DisplayName())
	}
	assert.Zero(t, tr.droppedReplies(), "every query went out with the handler subscribed")
}
