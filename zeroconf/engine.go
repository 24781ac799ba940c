package zeroconf

import (
	"context"
	goerrors "errors"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joshuafuller/zeroconf/internal/errors"
	"github.com/joshuafuller/zeroconf/internal/message"
)

// match is one accepted response.
type match struct {
	key      string
	source   string
	adapter  Adapter
	response *message.Response
}

// collector is the in-progress match map shared by the receive path.
type collector struct {
	mu      sync.Mutex
	matches map[string]match
	closed  bool
}

func newCollector() *collector {
	return &collector{matches: make(map[string]match)}
}

// add stores m, replacing an earlier match with the same key. It reports
// false once the collector is closed.
func (c *collector) add(m match) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.matches[m.key] = m
	return true
}

func (c *collector) close() map[string]match {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.matches
}

// resolveInternal sends the query for opts and collects matching responses
// until the scan window closes.
//
// onMatch runs on the receive path for every accepted response, in arrival
// order. The returned map is keyed by "<source>:<display name>".
func (r *Resolver) resolveInternal(ctx context.Context, kind string, opts *Options, onMatch func(match)) (map[string]match, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	query, err := buildQuery(opts)
	if err != nil {
		return nil, err
	}
	adapters, err := r.selectAdapters(opts.Adapters)
	if err != nil {
		return nil, err
	}

	op := newOperation(kind, r.log, r.metrics)
	op.log.Debug("starting discovery",
		zap.Strings("protocols", opts.protocols),
		zap.Stringer("query_type", opts.ScanQueryType),
		zap.Duration("scan_time", opts.ScanTime),
		zap.Int("retries", opts.Retries),
		zap.Int("adapters", len(adapters)))

	if !opts.AllowOverlappedQueries {
		op.transition(StateLocking)
		if err := r.lock.Lock(ctx); err != nil {
			return nil, op.cancelled(err)
		}
		defer r.lock.Unlock()
	}
	if err := ctx.Err(); err != nil {
		return nil, op.cancelled(err)
	}

	scanCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(scanCtx)

	c := newCollector()
	handler := r.matchHandler(gctx, op, opts.protocols, c, onMatch)

	// Nothing is sent before the handler is subscribed.
	listening := make(chan struct{})
	g.Go(func() error {
		defer stop()
		return r.transport.Listen(gctx, opts.ScanTime, handler, func() { close(listening) })
	})
	g.Go(func() error {
		select {
		case <-listening:
		case <-gctx.Done():
			return nil
		}
		op.transition(StateSending)
		r.sendLoop(gctx, op, query, adapters, opts)
		if gctx.Err() == nil {
			op.transition(StateDraining)
		}
		return nil
	})

	listenErr := g.Wait()
	matches := c.close()

	if err := ctx.Err(); err != nil {
		return nil, op.cancelled(err)
	}
	if listenErr != nil && !goerrors.Is(listenErr, context.Canceled) {
		return nil, op.failed(listenErr)
	}
	op.completed(len(matches))
	return matches, nil
}

// matchHandler decodes inbound packets and feeds matching responses to c.
func (r *Resolver) matchHandler(ctx context.Context, op *operation, protocols []string, c *collector, onMatch func(match)) func(Packet) {
	return func(p Packet) {
		if ctx.Err() != nil {
			return
		}
		r.metrics.packets.Inc()

		source := p.SourceAddress()
		resp, err := message.DecodeAt(p.Data, r.clock.Now())
		if err != nil {
			r.metrics.decodeFailures.Inc()
			op.log.Debug("dropping undecodable packet", zap.String("source", source), zap.Error(err))
			return
		}
		if !resp.IsQueryResponse() {
			return
		}

		rr, ok := matchRecord(resp, protocols)
		if !ok {
			return
		}
		name := displayName(&rr)
		if name == "" {
			op.log.Debug("dropping response without display name", zap.String("source", source))
			return
		}

		m := match{key: source + ":" + name, source: source, adapter: p.Adapter, response: resp}
		if !c.add(m) {
			return
		}
		r.metrics.matches.WithLabelValues(op.kind).Inc()
		op.log.Debug("matched response",
			zap.String("key", m.key),
			zap.String("adapter", p.Adapter.Name),
			zap.Int("bytes", len(p.Data)))

		if onMatch != nil {
			onMatch(m)
		}
	}
}

// sendLoop sends query once, then again every RetryDelay up to Retries
// times, stopping early when ctx ends.
func (r *Resolver) sendLoop(ctx context.Context, op *operation, query []byte, adapters []Adapter, opts *Options) {
	ticker := r.clock.Ticker(opts.RetryDelay)
	defer ticker.Stop()

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return
		}
		r.sendAll(ctx, op, query, adapters, attempt)
		if attempt >= opts.Retries {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// sendAll sends query on every adapter concurrently. Failures are logged and
// counted; they never stop the operation.
func (r *Resolver) sendAll(ctx context.Context, op *operation, query []byte, adapters []Adapter, attempt int) {
	var (
		mu   sync.Mutex
		errs error
		g    errgroup.Group
	)
	for _, a := range adapters {
		g.Go(func() error {
			if err := r.transport.Send(ctx, query, []Adapter{a}); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if failed := len(multierr.Errors(errs)); failed > 0 {
		r.metrics.sendFailures.Add(float64(failed))
		op.log.Warn("query send failed",
			zap.Int("attempt", attempt),
			zap.Int("failed", failed),
			zap.Int("adapters", len(adapters)),
			zap.Error(errs))
		return
	}
	op.log.Debug("query sent", zap.Int("attempt", attempt), zap.Int("adapters", len(adapters)))
}

// selectAdapters resolves names against the transport's adapters. No names
// selects all of them.
func (r *Resolver) selectAdapters(names []string) ([]Adapter, error) {
	all, err := r.transport.Adapters()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, &errors.NetworkError{Operation: "select adapters", Details: "no network adapters available"}
	}
	if len(names) == 0 {
		return all, nil
	}

	selected := make([]Adapter, 0, len(names))
	for _, name := range names {
		found := false
		for _, a := range all {
			if a.Name == name {
				selected = append(selected, a)
				found = true
				break
			}
		}
		if !found {
			return nil, &errors.ValidationError{Field: "adapters", Value: name, Message: "no such adapter"}
		}
	}
	return selected, nil
}
