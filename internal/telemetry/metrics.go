package telemetry

import (
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsEstablished counts primary relay sessions established
	// over the process lifetime.
	ConnectionsEstablished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octoeverywhere_relay_connections_established_total",
		Help: "Number of primary relay sessions established.",
	})

	// UpdateRequiredEvents counts update-mandated warnings from the relay.
	UpdateRequiredEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octoeverywhere_relay_update_required_total",
		Help: "Number of times the relay mandated a plugin update.",
	})

	// Heartbeats counts heartbeat process runs.
	Heartbeats = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octoeverywhere_heartbeats_total",
		Help: "Number of heartbeat runs.",
	})
)

// NewMetricsServer builds the debug HTTP server with the prometheus
// registry and pprof handlers. Served on localhost only; this is an
// operator diagnostics surface, not part of the relay path.
func NewMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))
	mux.Handle("/debug/pprof/", http.HandlerFunc(pprof.Index))
	mux.Handle("/debug/pprof/profile", http.HandlerFunc(pprof.Profile))
	mux.Handle("/debug/pprof/trace", http.HandlerFunc(pprof.Trace))
	mux.Handle("/debug/pprof/symbol", http.HandlerFunc(pprof.Symbol))
	mux.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	mux.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))

	return &http.Server{Addr: addr, Handler: mux}
}
