package zeroconf

import (
	goerrors "errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "zeroconf"

// Operation outcomes used as the "outcome" label.
const (
	outcomeCompleted = "completed"
	outcomeCancelled = "cancelled"
	outcomeFailed    = "failed"
)

type metrics struct {
	packets        prometheus.Counter
	decodeFailures prometheus.Counter
	sendFailures   prometheus.Counter
	matches        *prometheus.CounterVec
	operations     *prometheus.CounterVec
}

// newMetrics builds the collectors and registers them with reg. A nil reg
// leaves them unregistered. Collectors already registered by another
// Resolver on the same registry are shared.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		packets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "packets_received_total",
			Help:      "Datagrams received while a discovery operation was listening.",
		}),
		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "decode_failures_total",
			Help:      "Datagrams dropped because they were not valid DNS messages.",
		}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "send_failures_total",
			Help:      "Per-adapter query sends that failed.",
		}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "matches_total",
			Help:      "Responses accepted as matches, by operation.",
		}, []string{"operation"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "Finished discovery operations, by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.packets, err = register(reg, m.packets); err != nil {
		return nil, err
	}
	if m.decodeFailures, err = register(reg, m.decodeFailures); err != nil {
		return nil, err
	}
	if m.sendFailures, err = register(reg, m.sendFailures); err != nil {
		return nil, err
	}
	if m.matches, err = register(reg, m.matches); err != nil {
		return nil, err
	}
	if m.operations, err = register(reg, m.operations); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if goerrors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
