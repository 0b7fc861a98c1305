package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "emwa"

type monitorMetrics struct {
	reg *prometheus.Registry
	// Smoothed throughput per link in Mbit/s
	throughput *prometheus.GaugeVec
	// Samples rejected because their timestamp went backwards
	staleSamples prometheus.Counter
}

func newMonitorMetrics(reg *prometheus.Registry) *monitorMetrics {
	m := &monitorMetrics{
		reg: reg,
		throughput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "link_throughput_mbps",
			Help:      "Time-weighted moving average of link throughput in Mbit/s",
		}, []string{"link"}),
		staleSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stale_samples_total",
			Help:      "Number of link samples rejected as out of order",
		}),
	}
	reg.MustRegister(m.throughput)
	reg.MustRegister(m.staleSamples)
	return m
}

type metricsServer struct {
	cancel context.CancelFunc
	stopCh chan struct{}
}

// serve exposes the registry on addr at /metrics until shutdown is called.
func (m *monitorMetrics) serve(ctx context.Context, addr string) *metricsServer {
	ctx, cancel := context.WithCancel(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Metrics server shutdown", "err", err)
		}
	}()

	ms := &metricsServer{
		cancel: cancel,
		stopCh: make(chan struct{}),
	}
	go func() {
		defer close(ms.stopCh)

		log.Info("Serving metrics", "addr", addr, "path", "/metrics")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server error", "err", err)
		}
	}()
	return ms
}

func (ms *metricsServer) shutdown() {
	ms.cancel()
	<-ms.stopCh
}
