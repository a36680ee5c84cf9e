// Package timeline downsamples the dense duration series into aligned
// chart-ready arrays.
package timeline

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/loadscope/loadreport/telemetry"
)

const (
	// DefaultStride keeps every 5th sorted point.
	DefaultStride = 5
	// DefaultWindow is the number of points around a sample over which its
	// error rate is computed.
	DefaultWindow = 50

	labelLayout = "15:04:05"
)

// Sample is one downsampled timeline entry.
type Sample struct {
	Label          string
	ResponseTimeMs float64
	ErrorRatePct   float64
	VUs            int
}

// Sampler produces aligned series at a fixed stride. The zero value is not
// usable; construct with New.
type Sampler struct {
	stride int
	window int
}

// New returns a Sampler; non-positive arguments fall back to the defaults.
func New(stride, window int) Sampler {
	if stride <= 0 {
		stride = DefaultStride
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return Sampler{stride: stride, window: window}
}

// Sample downsamples the duration series. Durations are re-sorted by
// timestamp first since arrival order is not chronological; gauges keep
// their own cadence and are matched per sample. Output is deterministic
// given identical input order and stride.
func (s Sampler) Sample(durations, gauges []telemetry.Point) []Sample {
	if len(durations) == 0 {
		return nil
	}

	sorted := make([]telemetry.Point, len(durations))
	copy(sorted, durations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	half := s.window / 2
	samples := make([]Sample, 0, (len(sorted)+s.stride-1)/s.stride)
	for i, point := range sorted {
		if i%s.stride != 0 {
			continue
		}
		samples = append(samples, Sample{
			Label:          point.Timestamp.Format(labelLayout),
			ResponseTimeMs: round2(point.Value),
			ErrorRatePct:   round2(windowErrorRate(sorted, i, half)),
			VUs:            matchVUs(gauges, point),
		})
	}
	return samples
}

// windowErrorRate computes the error percentage over a symmetric window of
// points around index i, clipped at the sequence bounds. A point counts as
// an error when its status tag starts with 4 or 5.
func windowErrorRate(sorted []telemetry.Point, i, half int) float64 {
	start := i - half
	if start < 0 {
		start = 0
	}
	end := i + half
	if end > len(sorted) {
		end = len(sorted)
	}
	window := sorted[start:end]
	if len(window) == 0 {
		return 0
	}
	errs := 0
	for _, p := range window {
		status := p.Tag("status", "200")
		if strings.HasPrefix(status, "4") || strings.HasPrefix(status, "5") {
			errs++
		}
	}
	return float64(errs) / float64(len(window)) * 100
}

// matchVUs returns the gauge value at the point's exact timestamp when one
// exists, otherwise the gauge sample with minimum absolute time distance.
// Gauge cardinality is far smaller than duration cardinality, so the linear
// scan is fine.
func matchVUs(gauges []telemetry.Point, point telemetry.Point) int {
	if len(gauges) == 0 {
		return 0
	}
	for _, g := range gauges {
		if g.Timestamp.Equal(point.Timestamp) {
			return int(g.Value)
		}
	}
	best := gauges[0]
	bestDist := absDuration(gauges[0].Timestamp.Sub(point.Timestamp))
	for _, g := range gauges[1:] {
		if d := absDuration(g.Timestamp.Sub(point.Timestamp)); d < bestDist {
			best, bestDist = g, d
		}
	}
	return int(best.Value)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// round2 rounds half to even, so exact .xx5 values match the chart data
// produced by earlier tooling.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
