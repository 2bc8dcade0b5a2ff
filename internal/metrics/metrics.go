// Package metrics provides Prometheus metrics for font uploads and font
// group changes.
package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload results.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	// UploadsTotal counts font upload attempts by result.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fontgroup_uploads_total",
		Help: "Total number of font upload attempts, by result.",
	}, []string{"result"})

	// UploadBytes observes accepted font file sizes.
	UploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fontgroup_upload_bytes",
		Help:    "Size of accepted font uploads in bytes.",
		Buckets: prometheus.ExponentialBuckets(16<<10, 2, 10),
	})

	// GroupMutationsTotal counts font group writes by action and result.
	GroupMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fontgroup_group_mutations_total",
		Help: "Total number of font group create/update/delete requests, by action and result.",
	}, []string{"action", "result"})

	// FontsStored tracks the number of fonts in the catalog.
	FontsStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fontgroup_fonts_stored",
		Help: "Number of fonts currently stored.",
	})
)

type hubFuncs struct {
	clients func() int
	dropped func() int64
}

var (
	hubStats atomic.Pointer[hubFuncs]
	hubOnce  sync.Once

	wsClients prometheus.GaugeFunc
	wsDropped prometheus.CounterFunc
)

// WatchHub exports the websocket client count and dropped message count.
// The most recently watched hub is the one reported.
func WatchHub(clients func() int, dropped func() int64) {
	hubStats.Store(&hubFuncs{clients: clients, dropped: dropped})
	hubOnce.Do(func() {
		wsClients = promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "fontgroup_websocket_clients",
			Help: "Number of connected admin pages.",
		}, func() float64 {
			return float64(hubStats.Load().clients())
		})
		wsDropped = promauto.NewCounterFunc(prometheus.CounterOpts{
			Name: "fontgroup_websocket_dropped_total",
			Help: "Change notifications skipped because a page's buffer was full.",
		}, func() float64 {
			return float64(hubStats.Load().dropped())
		})
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
