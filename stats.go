package cuculiform

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/raulk/clock"
	"go.uber.org/atomic"
)

const statsReportInterval = 10 * time.Second

// Stats counts filter operations since construction. The counters are atomic
// so the background reporter (and any external reader) can observe them while
// the owning goroutine mutates the filter.
type Stats struct {
	Inserts       atomic.Uint64
	FailedInserts atomic.Uint64
	Relocations   atomic.Uint64
	Lookups       atomic.Uint64
	Hits          atomic.Uint64
	Erases        atomic.Uint64

	// SentinelRemaps counts fingerprints that truncated to the reserved
	// all-zero sentinel and were remapped to one. Diagnostic only.
	SentinelRemaps atomic.Uint64
}

var stats = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "cuckoo_filter_stats",
	Help: "Stats about performance of cuckoo filters",
}, []string{"metric", "name"})

var sentinelRemaps = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cuckoo_filter_sentinel_remaps",
	Help: "Fingerprints that collided with the empty-slot sentinel and were remapped",
}, []string{"name"})

func (f *Filter[T]) reportStats(c clock.Clock) {
	ticker := c.Ticker(statsReportInterval)
	for range ticker.C {
		f.publishStats()
	}
}

func (f *Filter[T]) publishStats() {
	name := f.name
	stats.WithLabelValues("inserts", name).Set(float64(f.stats.Inserts.Load()))
	stats.WithLabelValues("failed_inserts", name).Set(float64(f.stats.FailedInserts.Load()))
	stats.WithLabelValues("relocations", name).Set(float64(f.stats.Relocations.Load()))
	stats.WithLabelValues("lookups", name).Set(float64(f.stats.Lookups.Load()))
	stats.WithLabelValues("hits", name).Set(float64(f.stats.Hits.Load()))
	stats.WithLabelValues("erases", name).Set(float64(f.stats.Erases.Load()))
	stats.WithLabelValues("size", name).Set(float64(f.size.Load()))
	stats.WithLabelValues("load_factor", name).Set(f.LoadFactor())
	stats.WithLabelValues("memory_bytes", name).Set(float64(f.MemoryUsage()))
}
