package timeline

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/loadscope/loadreport/telemetry"
)

func durationPoint(ts time.Time, value float64, status string) telemetry.Point {
	return telemetry.Point{
		Kind:      telemetry.Duration,
		Timestamp: ts,
		Value:     value,
		Tags:      map[string]string{"status": status},
	}
}

func gaugePoint(ts time.Time, vus float64) telemetry.Point {
	return telemetry.Point{Kind: telemetry.Gauge, Timestamp: ts, Value: vus}
}

func TestSampleCountAndOrdering(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		n           int
		wantSamples int
	}{
		{n: 1, wantSamples: 1},
		{n: 4, wantSamples: 1},
		{n: 5, wantSamples: 1},
		{n: 6, wantSamples: 2},
		{n: 100, wantSamples: 20},
		{n: 101, wantSamples: 21},
	}
	for _, c := range cases {
		var durations []telemetry.Point
		for i := 0; i < c.n; i++ {
			durations = append(durations, durationPoint(base.Add(time.Duration(i)*time.Second), 100, "200"))
		}
		got := New(0, 0).Sample(durations, nil)
		if len(got) != c.wantSamples {
			t.Errorf("n=%d: samples = %d, want %d", c.n, len(got), c.wantSamples)
			continue
		}
		for i := 1; i < len(got); i++ {
			if got[i].Label < got[i-1].Label {
				t.Errorf("n=%d: labels not non-decreasing: %q before %q", c.n, got[i-1].Label, got[i].Label)
			}
		}
	}
}

func TestSampleResortsByTimestamp(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	// Arrival order is reversed chronological order.
	durations := []telemetry.Point{
		durationPoint(base.Add(2*time.Second), 300, "200"),
		durationPoint(base.Add(1*time.Second), 200, "200"),
		durationPoint(base, 100, "200"),
	}
	got := New(1, 0).Sample(durations, nil)
	want := []float64{100, 200, 300}
	for i, s := range got {
		if s.ResponseTimeMs != want[i] {
			t.Errorf("sample %d: response = %v, want %v", i, s.ResponseTimeMs, want[i])
		}
	}
}

func TestWindowErrorRate(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	// 10 points, every other one a 500: with a window wider than the
	// series the rate at every sample is 50%.
	var durations []telemetry.Point
	for i := 0; i < 10; i++ {
		status := "200"
		if i%2 == 1 {
			status = "500"
		}
		durations = append(durations, durationPoint(base.Add(time.Duration(i)*time.Second), 100, status))
	}
	got := New(1, 50).Sample(durations, nil)
	for i, s := range got {
		if s.ErrorRatePct != 50 {
			t.Errorf("sample %d: error rate = %v, want 50", i, s.ErrorRatePct)
		}
	}

	// Narrow window: a sample adjacent to only successes sees 0.
	durations = []telemetry.Point{
		durationPoint(base, 100, "200"),
		durationPoint(base.Add(1*time.Second), 100, "200"),
		durationPoint(base.Add(2*time.Second), 100, "404"),
	}
	got = New(1, 2).Sample(durations, nil)
	// window of 2 => indices [i-1, i+1) clipped at the bounds
	if got[0].ErrorRatePct != 0 {
		t.Errorf("first sample error rate = %v, want 0", got[0].ErrorRatePct)
	}
	if got[2].ErrorRatePct != 50 {
		t.Errorf("last sample error rate = %v, want 50", got[2].ErrorRatePct)
	}
}

func TestResponseTimeRoundsHalfToEven(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	// Tie values chosen to be exactly representable in binary.
	cases := []struct {
		value float64
		want  float64
	}{
		{value: 12.125, want: 12.12},
		{value: 12.375, want: 12.38},
		{value: 12.625, want: 12.62},
		{value: 12.875, want: 12.88},
		{value: 12.34, want: 12.34},
	}
	for _, c := range cases {
		got := New(1, 0).Sample([]telemetry.Point{durationPoint(base, c.value, "200")}, nil)
		if got[0].ResponseTimeMs != c.want {
			t.Errorf("value %v: rounded = %v, want %v", c.value, got[0].ResponseTimeMs, c.want)
		}
	}
}

func TestVUsMatching(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	gauges := []telemetry.Point{
		gaugePoint(base, 10),
		gaugePoint(base.Add(10*time.Second), 50),
		gaugePoint(base.Add(20*time.Second), 100),
	}
	cases := []struct {
		desc string
		ts   time.Time
		want int
	}{
		{desc: "exact match", ts: base.Add(10 * time.Second), want: 50},
		{desc: "nearest below", ts: base.Add(12 * time.Second), want: 50},
		{desc: "nearest above", ts: base.Add(19 * time.Second), want: 100},
		{desc: "before first", ts: base.Add(-30 * time.Second), want: 10},
	}
	for _, c := range cases {
		got := New(1, 0).Sample([]telemetry.Point{durationPoint(c.ts, 100, "200")}, gauges)
		if got[0].VUs != c.want {
			t.Errorf("%s: vus = %d, want %d", c.desc, got[0].VUs, c.want)
		}
	}

	// No gauges at all.
	got := New(1, 0).Sample([]telemetry.Point{durationPoint(base, 100, "200")}, nil)
	if got[0].VUs != 0 {
		t.Errorf("vus without gauges = %d, want 0", got[0].VUs)
	}
}

func TestSampleDeterminism(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var durations, gauges []telemetry.Point
	for i := 0; i < 37; i++ {
		status := "200"
		if i%7 == 0 {
			status = "503"
		}
		durations = append(durations, durationPoint(base.Add(time.Duration(i*3)*time.Second), float64(50+i), status))
	}
	for i := 0; i < 5; i++ {
		gauges = append(gauges, gaugePoint(base.Add(time.Duration(i*20)*time.Second), float64(i*10)))
	}
	s := New(0, 0)
	first := s.Sample(durations, gauges)
	second := s.Sample(durations, gauges)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("sampling not deterministic:\n%s", diff)
	}
}

func TestSampleEmptyInput(t *testing.T) {
	if got := New(0, 0).Sample(nil, nil); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}
