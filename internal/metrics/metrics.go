// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package metrics wraps the Prometheus collectors of the sync engine.
//
// Every Record method is safe to call on a nil *Collector, which is how
// components run without instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultNotFound = "not_found"
	ResultHit      = "hit"
	ResultMiss     = "miss"
)

// Tier label values.
const (
	TierMemory  = "memory"
	TierDisk    = "disk"
	TierNetwork = "network"
	TierMiss    = "miss"
)

// Collector holds the engine collectors on a private registry.
type Collector struct {
	registry *prometheus.Registry

	snapshotFetches  *prometheus.CounterVec
	snapshotLatency  prometheus.Histogram
	decodeErrors     *prometheus.CounterVec
	mergeOutcomes    *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	persistFailures  *prometheus.CounterVec
	imageLookups     *prometheus.CounterVec
	imageDownloads   *prometheus.CounterVec
	imageEvictions   prometheus.Counter
	imageResident    prometheus.Gauge
	imageCost        prometheus.Gauge
	analyticsLookups *prometheus.CounterVec
}

// NewCollector creates the collectors under namespace ("tally_sync" when
// empty) and registers them.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "tally_sync"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.snapshotFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "fetches_total",
			Help:      "Total number of delta snapshot fetches by result.",
		},
		[]string{"result"},
	)

	c.snapshotLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of delta snapshot fetches.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)

	c.decodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "decode_errors_total",
			Help:      "Snapshot keys that were delivered but failed to decode.",
		},
		[]string{"field"},
	)

	c.mergeOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "merge_outcomes_total",
			Help:      "Weekly progress merge outcomes.",
		},
		[]string{"outcome"},
	)

	c.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Domain cache lookups by domain and result.",
		},
		[]string{"domain", "result"},
	)

	c.persistFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "persist_failures_total",
			Help:      "Failed write-through persistence attempts by domain.",
		},
		[]string{"domain"},
	)

	c.imageLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "image",
			Name:      "lookups_total",
			Help:      "Image lookups by the tier that answered.",
		},
		[]string{"tier"},
	)

	c.imageDownloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "image",
			Name:      "downloads_total",
			Help:      "Image downloads by result.",
		},
		[]string{"result"},
	)

	c.imageEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "image",
			Name:      "evictions_total",
			Help:      "Images evicted from the memory tier.",
		},
	)

	c.imageResident = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "image",
			Name:      "resident_entries",
			Help:      "Images currently resident in memory.",
		},
	)

	c.imageCost = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "image",
			Name:      "resident_cost_bytes",
			Help:      "Cumulative cost of images resident in memory.",
		},
	)

	c.analyticsLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "lookups_total",
			Help:      "Recipient analytics lookups by the tier that answered.",
		},
		[]string{"tier"},
	)

	c.registry.MustRegister(
		c.snapshotFetches,
		c.snapshotLatency,
		c.decodeErrors,
		c.mergeOutcomes,
		c.cacheLookups,
		c.persistFailures,
		c.imageLookups,
		c.imageDownloads,
		c.imageEvictions,
		c.imageResident,
		c.imageCost,
		c.analyticsLookups,
		collectors.NewGoCollector(),
	)

	return c
}

// Registry returns the registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler exposing the registered metrics.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordSnapshotFetch records one delta fetch and its duration.
func (c *Collector) RecordSnapshotFetch(duration time.Duration, err error) {
	if c == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	c.snapshotFetches.WithLabelValues(result).Inc()
	c.snapshotLatency.Observe(duration.Seconds())
}

// RecordDecodeError records a malformed snapshot key.
func (c *Collector) RecordDecodeError(field string) {
	if c == nil {
		return
	}
	c.decodeErrors.WithLabelValues(field).Inc()
}

// RecordMergeOutcome records one weekly progress merge decision.
func (c *Collector) RecordMergeOutcome(outcome string) {
	if c == nil {
		return
	}
	c.mergeOutcomes.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup records a domain cache read.
func (c *Collector) RecordCacheLookup(domain string, hit bool) {
	if c == nil {
		return
	}
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	c.cacheLookups.WithLabelValues(domain, result).Inc()
}

// RecordPersistFailure records a failed write-through.
func (c *Collector) RecordPersistFailure(domain string) {
	if c == nil {
		return
	}
	c.persistFailures.WithLabelValues(domain).Inc()
}

// RecordImageLookup records which tier answered an image lookup.
func (c *Collector) RecordImageLookup(tier string) {
	if c == nil {
		return
	}
	c.imageLookups.WithLabelValues(tier).Inc()
}

// RecordImageDownload records the result of one image download attempt chain.
func (c *Collector) RecordImageDownload(result string) {
	if c == nil {
		return
	}
	c.imageDownloads.WithLabelValues(result).Inc()
}

// RecordImageEviction records one memory-tier eviction.
func (c *Collector) RecordImageEviction() {
	if c == nil {
		return
	}
	c.imageEvictions.Inc()
}

// SetImageResidency publishes the current memory-tier occupancy.
func (c *Collector) SetImageResidency(entries, cost int) {
	if c == nil {
		return
	}
	c.imageResident.Set(float64(entries))
	c.imageCost.Set(float64(cost))
}

// RecordAnalyticsLookup records which tier answered an analytics read.
func (c *Collector) RecordAnalyticsLookup(tier string) {
	if c == nil {
		return
	}
	c.analyticsLookups.WithLabelValues(tier).Inc()
}
