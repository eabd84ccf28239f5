// Package metrics exposes Prometheus collectors for the HTTP surface and the
// image pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventboard"

// Registry holds every collector of the service
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

var (
	// ImageIngestTotal counts ingest attempts by result: ok, missing, io_error
	ImageIngestTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_ingest_total",
			Help:      "Image uploads processed, by result",
		},
		[]string{"result"},
	)

	// ImageIngestBytes records the size of ingested uploads
	ImageIngestBytes = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_ingest_bytes",
			Help:      "Size of ingested image uploads in bytes",
			// 1KB .. 10MB
			Buckets: []float64{1e3, 1e4, 1e5, 5e5, 1e6, 5e6, 1e7},
		},
	)

	// ChangesBroadcast counts change notices sent to live clients
	ChangesBroadcast = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changes_broadcast_total",
			Help:      "Change notices delivered to WebSocket clients, by type",
		},
		[]string{"type"},
	)

	// WebSocketClients tracks connected change-feed clients
	WebSocketClients = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Currently connected change-feed clients",
		},
	)
)

// Handler serves the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
