package spf

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors updated by a Checker.
type Metrics struct {
	verdicts *prometheus.CounterVec
	errors   *prometheus.CounterVec
	hops     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		verdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spf",
				Subsystem: "check",
				Name:      "verdicts_total",
				Help:      "Number of evaluations that produced a verdict, by verdict",
			},
			[]string{"verdict"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spf",
				Subsystem: "check",
				Name:      "errors_total",
				Help:      "Number of evaluations aborted by an error, by error kind",
			},
			[]string{"kind"},
		),
		hops: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "spf",
				Subsystem: "check",
				Name:      "hops",
				Help:      "Number of policy fetches per evaluation",
				Buckets:   []float64{1, 2, 3, 4, 6, 8, 10, 15, 20},
			},
		),
	}

	for _, c := range []prometheus.Collector{m.verdicts, m.errors, m.hops} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(o Outcome) {
	if m == nil {
		return
	}
	if o.Err != nil {
		m.errors.WithLabelValues(string(o.ErrorKind)).Inc()
	} else {
		m.verdicts.WithLabelValues(string(o.Verdict)).Inc()
	}
	m.hops.Observe(float64(o.Hops))
}
