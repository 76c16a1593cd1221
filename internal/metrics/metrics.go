// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics exposes prometheus counters for the MDB decode service.
package metrics // import "github.com/go-lpc/mdb/internal/metrics"

import (
	"net/http"
	"time"

	"github.com/go-lpc/mdb/decode"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mdb"

// Metrics holds the collectors of a decode service.
type Metrics struct {
	reg *prometheus.Registry

	captures    prometheus.Counter
	failures    prometheus.Counter
	samples     prometheus.Counter
	frames      prometheus.Counter
	blocks      prometheus.Counter
	annotations *prometheus.CounterVec // category, field
	duration    prometheus.Histogram
	last        prometheus.Gauge // unix time of the last decoded capture
}

// New creates the collectors and registers them in a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		reg: reg,
		captures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captures_total",
			Help:      "Number of decoded captures.",
		}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_failures_total",
			Help:      "Number of captures that could not be loaded.",
		}),
		samples: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Number of decoded samples.",
		}),
		frames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Number of demodulated frames.",
		}),
		blocks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_total",
			Help:      "Number of assembled blocks.",
		}),
		annotations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_total",
			Help:      "Number of emitted annotations.",
		}, []string{"category", "field"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decode_duration_seconds",
			Help:      "Time spent decoding a capture.",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 10),
		}),
		last: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_capture_timestamp_seconds",
			Help:      "Unix time of the last decoded capture.",
		}),
	}
}

// Observe records the outcome of decoding a capture of n samples.
func (m *Metrics) Observe(res decode.Result, n int, dt time.Duration) {
	m.captures.Inc()
	m.samples.Add(float64(n))
	m.frames.Add(float64(len(res.Scan.Frames)))
	m.blocks.Add(float64(len(res.Blocks)))
	for _, ann := range res.Annotations {
		m.annotations.WithLabelValues(ann.Category.String(), ann.Field.String()).Inc()
	}
	m.duration.Observe(dt.Seconds())
	m.last.SetToCurrentTime()
}

// Failed records a capture that could not be decoded.
func (m *Metrics) Failed() {
	m.failures.Inc()
}

// Handler returns the HTTP handler exposing the collected metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
