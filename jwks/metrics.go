package jwks

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcomes recorded by the jwks_refresh_total counter.
const (
	RefreshFetched     = "fetched"
	RefreshSharedCache = "shared_cache"
	RefreshFailed      = "failed"
)

type metrics struct {
	refreshes *prometheus.CounterVec
	keys      prometheus.Gauge
}

// newMetrics builds the resolver collectors and registers them on reg when
// it is not nil. Collectors already registered by another resolver are reused.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jwks",
			Name:      "refresh_total",
			Help:      "Key set refresh attempts by outcome.",
		}, []string{"result"}),
		keys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "jwks",
			Name:      "keys",
			Help:      "Number of keys in the current key set.",
		}),
	}

	if reg == nil {
		return m, nil
	}

	if err := reg.Register(m.refreshes); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		m.refreshes = already.ExistingCollector.(*prometheus.CounterVec)
	}

	if err := reg.Register(m.keys); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		m.keys = already.ExistingCollector.(prometheus.Gauge)
	}

	return m, nil
}

func (m *metrics) refreshed(result string, keys int) {
	m.refreshes.WithLabelValues(result).Inc()
	if result != RefreshFailed {
		m.keys.Set(float64(keys))
	}
}
