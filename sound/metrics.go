// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds engine statistics.
type Metrics struct {
	decodes   prometheus.Counter
	failures  prometheus.Counter
	cacheHits prometheus.Counter
	active    prometheus.Gauge
}

// NewMetrics creates the engine collectors and registers them with reg. A
// nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		decodes: f.NewCounter(prometheus.CounterOpts{
			Name: "audgraph_decodes_total",
			Help: "Total number of buffers decoded",
		}),
		failures: f.NewCounter(prometheus.CounterOpts{
			Name: "audgraph_decode_failures_total",
			Help: "Total number of failed buffer loads",
		}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "audgraph_buffer_cache_hits_total",
			Help: "Buffer requests answered from the decoded buffer cache",
		}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Name: "audgraph_active_playbacks",
			Help: "Playbacks currently alive",
		}),
	}
}
