// Package exporter serves poll-round telemetry as prometheus metrics.
// It keeps no history; every gauge reflects the latest round only.
package exporter

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dantesync/dsyncmon/pkg/dsync"
)

const defaultInterval = 5 * time.Second

type Exporter struct {
	poller     *dsync.Poller
	reference  string
	sampleRate int
	interval   time.Duration

	registry *prometheus.Registry

	hostUp             *prometheus.GaugeVec
	hostLocked         *prometheus.GaugeVec
	hostDriftUsPerSec  *prometheus.GaugeVec
	hostDriftSamples   *prometheus.GaugeVec
	hostQualityTier    *prometheus.GaugeVec
	hostRTTMicros      *prometheus.GaugeVec
	fleetVerdict       prometheus.Gauge
	fleetMaxDrift      prometheus.Gauge
	fleetHostsOnline   prometheus.Gauge
	fleetHostsTotal    prometheus.Gauge
	roundsTotal        prometheus.Counter
	roundDurationHisto prometheus.Histogram
}

func New(poller *dsync.Poller, reference string, sampleRateHz int) *Exporter {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	exporter := &Exporter{
		poller:     poller,
		reference:  reference,
		sampleRate: sampleRateHz,
		interval:   defaultInterval,
		registry:   registry,

		hostUp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dsyncmon_host_up",
			Help: "1 if the host answered the last time query.",
		}, []string{"host"}),
		hostLocked: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dsyncmon_host_locked",
			Help: "1 if the host's servo reports frequency lock.",
		}, []string{"host"}),
		hostDriftUsPerSec: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dsyncmon_host_drift_us_per_sec",
			Help: "Signed smoothed clock drift rate in microseconds per second.",
		}, []string{"host"}),
		hostDriftSamples: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dsyncmon_host_drift_samples_per_sec",
			Help: "Drift rate as audio samples of error per second at the configured rate.",
		}, []string{"host"}),
		hostQualityTier: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dsyncmon_host_quality_tier",
			Help: "Quality tier: 0 sample-locked, 1 good, 2 marginal, 3 drifting, 4 offline.",
		}, []string{"host"}),
		hostRTTMicros: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dsyncmon_host_rtt_microseconds",
			Help: "Round-trip time of the last query in microseconds.",
		}, []string{"host"}),
		fleetVerdict: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dsyncmon_fleet_verdict",
			Help: "Fleet verdict: 0 sample-locked, 1 frequency-locked, 2 degraded, 3 not synced.",
		}),
		fleetMaxDrift: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dsyncmon_fleet_max_drift_us_per_sec",
			Help: "Largest absolute drift rate among online hosts.",
		}),
		fleetHostsOnline: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dsyncmon_fleet_hosts_online",
			Help: "Hosts that answered the last poll round.",
		}),
		fleetHostsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dsyncmon_fleet_hosts_total",
			Help: "Configured hosts.",
		}),
		roundsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "dsyncmon_poll_rounds_total",
			Help: "Completed poll rounds since startup.",
		}),
		roundDurationHisto: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dsyncmon_poll_round_duration_seconds",
			Help:    "Wall time of one full poll round.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	return exporter
}

// ListenAndServe polls on an interval and serves /metrics until the
// server fails. The first round runs before the listener accepts, so a
// scrape never sees unset gauges.
func (e *Exporter) ListenAndServe(addr string) error {
	e.observeRound(e.poller.Poll())

	go func() {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for range ticker.C {
			start := time.Now()
			outcomes := e.poller.Poll()
			e.roundDurationHisto.Observe(time.Since(start).Seconds())
			e.observeRound(outcomes)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}

func (e *Exporter) observeRound(outcomes []dsync.QueryOutcome) {
	for _, outcome := range outcomes {
		host := outcome.Target.Name
		tier := dsync.ClassifyOutcome(outcome, e.sampleRate)
		e.hostQualityTier.WithLabelValues(host).Set(float64(tier))

		if !outcome.Online() {
			e.hostUp.WithLabelValues(host).Set(0)
			e.hostLocked.WithLabelValues(host).Set(0)
			continue
		}

		sample := outcome.Sample
		e.hostUp.WithLabelValues(host).Set(1)
		e.hostLocked.WithLabelValues(host).Set(boolGauge(sample.IsLocked))
		e.hostDriftUsPerSec.WithLabelValues(host).Set(sample.DriftRateUsPerSec)
		e.hostDriftSamples.WithLabelValues(host).Set(
			dsync.DriftSamplesPerSec(sample.DriftRateUsPerSec, e.sampleRate))
		e.hostRTTMicros.WithLabelValues(host).Set(outcome.RTTUs)
	}

	verdict := dsync.Aggregate(outcomes, e.reference, e.sampleRate)
	e.fleetVerdict.Set(float64(verdict.Tier))
	e.fleetMaxDrift.Set(verdict.MaxDriftUsPerSec)
	e.fleetHostsOnline.Set(float64(verdict.Online))
	e.fleetHostsTotal.Set(float64(verdict.Total))
	e.roundsTotal.Inc()
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
