package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the Prometheus collectors of the tracker.
type Metrics struct {
	PersistTotal        *prometheus.CounterVec
	PersistDroppedTotal prometheus.Counter
	AnalysisRunsTotal   *prometheus.CounterVec
	ReloadsTotal        prometheus.Counter
	ActiveSessions      prometheus.Gauge
	RateLimitedTotal    *prometheus.CounterVec
}

// New registers the collectors once per process and returns them.
//
// Metrics:
//   - kanso_persist_total{result} - history write-backs by "ok" or "error"
//   - kanso_persist_dropped_total - write-backs dropped because the queue was full
//   - kanso_analysis_runs_total{period} - analysis computations
//   - kanso_history_reloads_total - sessions replaced by a change notification
//   - kanso_active_sessions - sessions held in memory
//   - kanso_rate_limited_total{scope} - requests rejected by the rate limiter, "auth" or "user"
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			PersistTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "kanso_persist_total",
					Help: "History write-backs by result",
				},
				[]string{"result"},
			),
			PersistDroppedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "kanso_persist_dropped_total",
				Help: "History write-backs dropped because the queue was full",
			}),
			AnalysisRunsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "kanso_analysis_runs_total",
					Help: "Analysis computations by period",
				},
				[]string{"period"},
			),
			ReloadsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "kanso_history_reloads_total",
				Help: "Sessions replaced by a change notification",
			}),
			ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "kanso_active_sessions",
				Help: "Tracker sessions held in memory",
			}),
			RateLimitedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "kanso_rate_limited_total",
					Help: "Requests rejected by the rate limiter by scope",
				},
				[]string{"scope"},
			),
		}
	})
	return globalMetrics
}
