package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup outcomes.
const (
	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheError   = "error"
	CacheCorrupt = "corrupt"
)

// CacheMetrics counts lookups and writes per cache family.
type CacheMetrics struct {
	lookups *prometheus.CounterVec
	writes  *prometheus.CounterVec
}

// NewCacheMetrics registers cache collectors with reg. A collector that is
// already registered is reused.
func NewCacheMetrics(reg prometheus.Registerer) (*CacheMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	lookups, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contacts",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups by family and outcome.",
	}, []string{"family", "result"}))
	if err != nil {
		return nil, err
	}

	writes, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contacts",
		Subsystem: "cache",
		Name:      "writes_total",
		Help:      "Cache writes by family and outcome.",
	}, []string{"family", "result"}))
	if err != nil {
		return nil, err
	}

	return &CacheMetrics{lookups: lookups, writes: writes}, nil
}

// ObserveLookup records a lookup outcome. Safe on a nil receiver.
func (m *CacheMetrics) ObserveLookup(family, result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(family, result).Inc()
}

// ObserveWrite records a write outcome. Safe on a nil receiver.
func (m *CacheMetrics) ObserveWrite(family string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = CacheError
	}
	m.writes.WithLabelValues(family, result).Inc()
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}
