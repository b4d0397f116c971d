package debounce

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Edge label values used by Metrics.
const (
	EdgeLeading  = "leading"
	EdgeTrailing = "trailing"
	EdgeMaxWait  = "max_wait"
	EdgeFlush    = "flush"
)

// Metrics holds the Prometheus collectors shared by any number of debouncers.
// Debouncers are told apart by the "name" label, see WithName.
//
// A nil *Metrics records nothing.
type Metrics struct {
	calls       *prometheus.CounterVec
	invocations *prometheus.CounterVec
	errors      *prometheus.CounterVec
	cancels     *prometheus.CounterVec
}

// NewMetrics creates the debounce collectors under namespace and registers
// them with reg. A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "debounce",
			Name:      "calls_total",
			Help:      "Calls made to debounced functions.",
		}, []string{"name"}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "debounce",
			Name:      "invocations_total",
			Help:      "Invocations of debounced functions, by edge.",
		}, []string{"name", "edge"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "debounce",
			Name:      "errors_total",
			Help:      "Failed invocations of debounced functions, by edge.",
		}, []string{"name", "edge"}),
		cancels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "debounce",
			Name:      "cancels_total",
			Help:      "Cancellations of debounced functions.",
		}, []string{"name"}),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{
		m.calls, m.invocations, m.errors, m.cancels,
	} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "error registering debounce metrics")
		}
	}

	return m, nil
}

func (m *Metrics) call(name string) {
	if m != nil {
		m.calls.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) invoke(name, edge string) {
	if m != nil {
		m.invocations.WithLabelValues(name, edge).Inc()
	}
}

func (m *Metrics) fail(name, edge string) {
	if m != nil {
		m.errors.WithLabelValues(name, edge).Inc()
	}
}

func (m *Metrics) cancel(name string) {
	if m != nil {
		m.cancels.WithLabelValues(name).Inc()
	}
}
