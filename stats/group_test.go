package stats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func seq(n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i + 1)
	}
	return vals
}

func TestPercentileBoundaries(t *testing.T) {
	cases := []struct {
		desc string
		vals []float64
		fn   func([]float64) float64
		want float64
	}{
		{desc: "p95 of 1..20", vals: seq(20), fn: Percentile95, want: 19.95},
		{desc: "p99 of 1..100", vals: seq(100), fn: Percentile99, want: 99.99},
	}
	for _, c := range cases {
		if got := c.fn(c.vals); got != c.want {
			t.Errorf("%s: got %v, want %v", c.desc, got, c.want)
		}
	}
}

func TestSmallSampleFallback(t *testing.T) {
	// Under 20 samples p95 must equal max; under 100 samples p99 must
	// equal max.
	for n := 1; n < 20; n++ {
		vals := seq(n)
		if got := Percentile95(vals); got != vals[n-1] {
			t.Errorf("p95 with %d samples = %v, want max %v", n, got, vals[n-1])
		}
	}
	for n := 1; n < 100; n++ {
		vals := seq(n)
		if got := Percentile99(vals); got != vals[n-1] {
			t.Errorf("p99 with %d samples = %v, want max %v", n, got, vals[n-1])
		}
	}
}

func TestSummaryOrderingInvariants(t *testing.T) {
	samples := [][]float64{
		seq(1),
		seq(5),
		seq(19),
		seq(20),
		seq(99),
		seq(100),
		seq(1000),
		{5, 5, 5, 5},
		{0.1, 900, 3.5, 42, 42, 17},
	}
	for _, vals := range samples {
		g := NewGroup(len(vals))
		for _, v := range vals {
			g.Push(v, false)
		}
		s := g.Finalize()
		if !(s.P50 <= s.P95 && s.P95 <= s.P99 && s.P99 <= s.Max) {
			t.Errorf("n=%d: percentile ordering violated: p50=%v p95=%v p99=%v max=%v",
				len(vals), s.P50, s.P95, s.P99, s.Max)
		}
		if !(s.Min <= s.Mean && s.Mean <= s.Max) {
			t.Errorf("n=%d: mean out of range: min=%v mean=%v max=%v",
				len(vals), s.Min, s.Mean, s.Max)
		}
	}
}

func TestFinalizeEmptyGroup(t *testing.T) {
	var g Group
	s := g.Finalize()
	if s.Count != 0 || s.ErrorRate != 0 {
		t.Errorf("empty group: %+v", s)
	}
}

// Scenario: five requests on one endpoint, one server error, no threshold
// configured.
func TestFinalizeScenario(t *testing.T) {
	g := &Group{}
	durations := []struct {
		value float64
		isErr bool
	}{
		{100, false}, {120, false}, {110, false}, {5000, true}, {130, false},
	}
	for _, d := range durations {
		g.Push(d.value, d.isErr)
	}
	s := g.Finalize()
	if s.Count != 5 {
		t.Errorf("count = %d, want 5", s.Count)
	}
	if s.Errors != 1 {
		t.Errorf("errors = %d, want 1", s.Errors)
	}
	if s.ErrorRate != 20.0 {
		t.Errorf("error rate = %v, want 20.0", s.ErrorRate)
	}
	// Five samples is under the p95 floor, so p95 falls back to max.
	if s.P95 != 5000 || s.Max != 5000 {
		t.Errorf("p95 = %v, max = %v, want 5000 for both", s.P95, s.Max)
	}
}

func TestSetSumInvariants(t *testing.T) {
	s := NewSet()
	s.Observe("A", 100, false)
	s.Observe("A", 200, true)
	s.Observe("B", 300, false)
	s.Observe("C", 400, true)
	s.Observe("B", 150, false)

	perEndpoint, global := s.Finalize()

	totalCount, totalErrors := 0, 0
	for _, sum := range perEndpoint {
		totalCount += sum.Count
		totalErrors += sum.Errors
	}
	if totalCount != global.Count {
		t.Errorf("sum of endpoint counts %d != global count %d", totalCount, global.Count)
	}
	if totalErrors != global.Errors {
		t.Errorf("sum of endpoint errors %d != global errors %d", totalErrors, global.Errors)
	}
	if want := []string{"A", "B", "C"}; !cmp.Equal(s.Labels(), want) {
		t.Errorf("labels = %v, want %v", s.Labels(), want)
	}
}

func TestReplayDeterminism(t *testing.T) {
	observe := func() (map[string]Summary, Summary) {
		s := NewSet()
		for i, v := range []float64{12, 99, 4, 250, 31, 31, 8} {
			s.Observe([]string{"A", "B"}[i%2], v, i%3 == 0)
		}
		return s.Finalize()
	}
	per1, glob1 := observe()
	per2, glob2 := observe()
	if diff := cmp.Diff(per1, per2); diff != "" {
		t.Errorf("per-endpoint summaries differ between replays:\n%s", diff)
	}
	if diff := cmp.Diff(glob1, glob2); diff != "" {
		t.Errorf("global summaries differ between replays:\n%s", diff)
	}
}
