// Package report assembles the computed numbers and arrays handed to the
// report renderer.
package report

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/pkg/errors"

	"github.com/loadscope/loadreport/config"
	"github.com/loadscope/loadreport/endpoint"
	"github.com/loadscope/loadreport/stats"
	"github.com/loadscope/loadreport/telemetry"
	"github.com/loadscope/loadreport/threshold"
	"github.com/loadscope/loadreport/timeline"
)

// ErrNoData means no valid duration points survived parsing; there is
// nothing to report on.
var ErrNoData = errors.New("no duration samples to report")

// EndpointRow is one line of the per-endpoint table.
type EndpointRow struct {
	Name            string
	Count           int
	Errors          int
	AvgMs           float64
	P95Ms           float64
	MinMs           float64
	MaxMs           float64
	ThresholdMs     *float64
	ThresholdPassed bool
	SuccessRate     float64
	Status          threshold.Status
}

// Series holds the aligned timeline arrays consumed by the charts.
type Series struct {
	Labels          []string
	ResponseTimesMs []float64
	ErrorRatesPct   []float64
	VUs             []int
}

// Distribution holds the per-endpoint request distribution arrays.
type Distribution struct {
	Names      []string
	AvgTimesMs []float64
	Counts     []int
}

// LatencyBar is one bar of the response-time distribution histogram.
type LatencyBar struct {
	FromMs int64
	ToMs   int64
	Count  int64
}

// Summary is the full payload handed to the renderer.
type Summary struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time

	TotalRequests int
	ErrorCount    int
	ErrorRatePct  float64
	AvgMs         float64
	MinMs         float64
	MaxMs         float64
	P50Ms         float64
	P95Ms         float64
	P99Ms         float64
	PeakVUs       int

	Endpoints    []EndpointRow
	Timeline     Series
	Distribution Distribution
	LatencyBars  []LatencyBar

	SkippedRecords uint64
}

// Builder runs the offline pipeline: resolve, aggregate, evaluate, sample.
type Builder struct {
	cfg     *config.Config
	sampler timeline.Sampler
}

// NewBuilder returns a Builder over the given configuration with default
// sampling parameters.
func NewBuilder(cfg *config.Config) *Builder {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Builder{cfg: cfg, sampler: timeline.New(0, 0)}
}

// Build computes the Summary for one closed telemetry batch. It returns
// ErrNoData when the batch has no duration points.
func (b *Builder) Build(batch *telemetry.Batch) (*Summary, error) {
	if batch == nil || len(batch.Durations) == 0 {
		return nil, ErrNoData
	}

	resolver := endpoint.NewResolver(b.cfg.Endpoints)
	set := stats.NewSet()
	hist := newLatencyHistogram(batch.Durations)
	for _, p := range batch.Durations {
		set.Observe(resolver.Resolve(p.Tags), p.Value, p.IsError())
	}

	perEndpoint, global := set.Finalize()
	evaluator := threshold.NewEvaluator(b.cfg.Endpoints)

	rows := make([]EndpointRow, 0, len(perEndpoint))
	dist := Distribution{}
	for _, label := range set.Labels() {
		sum := perEndpoint[label]
		verdict := evaluator.Evaluate(label, sum.P95)
		successRate := float64(sum.Count-sum.Errors) / float64(sum.Count) * 100
		rows = append(rows, EndpointRow{
			Name:            label,
			Count:           sum.Count,
			Errors:          sum.Errors,
			AvgMs:           sum.Mean,
			P95Ms:           sum.P95,
			MinMs:           sum.Min,
			MaxMs:           sum.Max,
			ThresholdMs:     verdict.ThresholdMs,
			ThresholdPassed: verdict.Passed,
			SuccessRate:     successRate,
			Status:          threshold.Classify(successRate, verdict.Passed),
		})
		dist.Names = append(dist.Names, label)
		dist.AvgTimesMs = append(dist.AvgTimesMs, sum.Mean)
		dist.Counts = append(dist.Counts, sum.Count)
	}

	samples := b.sampler.Sample(batch.Durations, batch.Gauges)
	series := Series{
		Labels:          make([]string, 0, len(samples)),
		ResponseTimesMs: make([]float64, 0, len(samples)),
		ErrorRatesPct:   make([]float64, 0, len(samples)),
		VUs:             make([]int, 0, len(samples)),
	}
	for _, s := range samples {
		series.Labels = append(series.Labels, s.Label)
		series.ResponseTimesMs = append(series.ResponseTimesMs, s.ResponseTimeMs)
		series.ErrorRatesPct = append(series.ErrorRatesPct, s.ErrorRatePct)
		series.VUs = append(series.VUs, s.VUs)
	}

	return &Summary{
		Title:          b.cfg.ReportTitle,
		Subtitle:       b.cfg.ReportSubtitle,
		GeneratedAt:    time.Now(),
		TotalRequests:  global.Count,
		ErrorCount:     global.Errors,
		ErrorRatePct:   global.ErrorRate,
		AvgMs:          global.Mean,
		MinMs:          global.Min,
		MaxMs:          global.Max,
		P50Ms:          global.P50,
		P95Ms:          global.P95,
		P99Ms:          global.P99,
		PeakVUs:        peakVUs(batch.Gauges),
		Endpoints:      rows,
		Timeline:       series,
		Distribution:   dist,
		LatencyBars:    hist,
		SkippedRecords: batch.Skipped,
	}, nil
}

// newLatencyHistogram records all durations into an HdrHistogram and
// exports the non-empty bars for the distribution chart. The histogram is
// only for visualization; the report percentiles come from stats, whose
// estimator is fixed.
func newLatencyHistogram(durations []telemetry.Point) []LatencyBar {
	maxMs := int64(1)
	for _, p := range durations {
		if v := int64(p.Value); v > maxMs {
			maxMs = v
		}
	}
	h := hdrhistogram.New(1, maxMs, 3)
	for _, p := range durations {
		v := int64(p.Value)
		if v < 1 {
			v = 1
		}
		_ = h.RecordValue(v)
	}

	var bars []LatencyBar
	for _, bar := range h.Distribution() {
		if bar.Count == 0 {
			continue
		}
		bars = append(bars, LatencyBar{FromMs: bar.From, ToMs: bar.To, Count: bar.Count})
	}
	return bars
}

func peakVUs(gauges []telemetry.Point) int {
	peak := 0
	for _, g := range gauges {
		if v := int(g.Value); v > peak {
			peak = v
		}
	}
	return peak
}
