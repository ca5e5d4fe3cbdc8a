package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics aggregates the server's instrumentation. All setters are called
// from the game loop; prometheus collectors are internally synchronized so
// the scrape handler can run concurrently.
type Metrics struct {
	registry *prometheus.Registry

	Sessions      prometheus.Gauge
	Players       prometheus.Gauge
	Objects       prometheus.Gauge
	ActiveEffects prometheus.Gauge

	PacketsIn      prometheus.Counter
	PacketsOut     prometheus.Counter
	PacketsDropped prometheus.Counter
	CastsTotal     *prometheus.CounterVec
	HarvestTotal   prometheus.Counter

	TickDuration prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "world_sessions",
			Help: "Connected sessions, bound or not.",
		}),
		Players: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "world_players",
			Help: "Players currently in the world.",
		}),
		Objects: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "world_objects",
			Help: "Resource objects, active or depleted.",
		}),
		ActiveEffects: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "world_active_effects",
			Help: "Timed spell effects currently active.",
		}),
		PacketsIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "world_packets_in_total",
			Help: "Client frames dispatched to handlers.",
		}),
		PacketsOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "world_packets_out_total",
			Help: "Server frames flushed to write loops.",
		}),
		PacketsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "world_packets_dropped_total",
			Help: "Client frames dropped before reaching a handler.",
		}),
		CastsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "world_casts_total",
			Help: "Spell cast attempts by outcome.",
		}, []string{"result"}),
		HarvestTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "world_harvests_total",
			Help: "Harvest attempts handled.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "world_tick_duration_seconds",
			Help:    "Wall time spent per game tick.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
	reg.MustRegister(
		m.Sessions, m.Players, m.Objects, m.ActiveEffects,
		m.PacketsIn, m.PacketsOut, m.PacketsDropped, m.CastsTotal, m.HarvestTotal,
		m.TickDuration,
	)
	return m
}

// Serve exposes /metrics until ctx is cancelled. Runs its own goroutine for
// shutdown; the caller runs Serve itself in a goroutine.
func (m *Metrics) Serve(ctx context.Context, addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listener started", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics listener failed", zap.Error(err))
	}
}
