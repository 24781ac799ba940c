package zeroconf

import (
	"context"

	"go.uber.org/zap"

	"github.com/joshuafuller/zeroconf/internal/errors"
	"github.com/joshuafuller/zeroconf/internal/message"
)

// ListenForAnnouncements passes every response heard on the link to callback
// until ctx ends. It never sends queries and does not take the QueryLock.
//
// It returns a *CancelledError when ctx ends, or the transport's error if
// listening fails.
func (r *Resolver) ListenForAnnouncements(ctx context.Context, callback func(ServiceAnnouncement)) error {
	if callback == nil {
		return &errors.ValidationError{Field: "callback", Message: "callback cannot be nil"}
	}

	adapters, err := r.transport.Adapters()
	if err != nil {
		return err
	}
	byIndex := make(map[int]Adapter, len(adapters))
	for _, a := range adapters {
		byIndex[a.Index] = a
	}

	op := newOperation("listen", r.log, r.metrics)
	op.transition(StateListening)

	err = r.transport.Listen(ctx, 0, func(p Packet) {
		r.metrics.packets.Inc()

		resp, err := message.DecodeAt(p.Data, r.clock.Now())
		if err != nil {
			r.metrics.decodeFailures.Inc()
			op.log.Debug("dropping undecodable packet", zap.String("source", p.SourceAddress()), zap.Error(err))
			return
		}
		if !resp.IsQueryResponse() {
			return
		}

		adapter := p.Adapter
		if len(adapter.Addresses) == 0 {
			if known, ok := byIndex[adapter.Index]; ok {
				adapter = known
			}
		}

		host := assembleHost(resp, p.SourceAddress(), nil)
		announcement, err := NewServiceAnnouncement(adapterInformation(adapter), host)
		if err != nil {
			return
		}
		r.metrics.matches.WithLabelValues(op.kind).Inc()
		callback(announcement)
	}, nil)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return op.cancelled(ctxErr)
	}
	if err != nil {
		return op.failed(err)
	}
	op.completed(0)
	return nil
}
