package jwtgrpc

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultExcluded      = "excluded"
	resultAnonymous     = "anonymous"
	resultAuthenticated = "authenticated"
	resultRejected      = "rejected"
	resultError         = "error"
)

type metrics struct {
	requests *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jwt",
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "gRPC calls seen by the JWT interceptor by method and outcome.",
		}, []string{"method", "result"}),
	}

	if reg == nil {
		return m, nil
	}
	if err := reg.Register(m.requests); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		m.requests = already.ExistingCollector.(*prometheus.CounterVec)
	}
	return m, nil
}

func (m *metrics) observe(method, result string) {
	m.requests.WithLabelValues(method, result).Inc()
}
