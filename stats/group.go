// Package stats accumulates duration samples per endpoint and globally and
// computes the descriptive statistics for the report.
package stats

import "sort"

// Group collects the duration samples of one endpoint (or the whole run).
// Values keep insertion order so replaying the same stream yields the same
// group byte for byte; sorting happens on a copy at finalize time.
type Group struct {
	Values []float64
	Errors int
}

// NewGroup returns a Group with an initial capacity hint.
func NewGroup(sizeHint int) *Group {
	return &Group{Values: make([]float64, 0, sizeHint)}
}

// Push records one observed duration.
func (g *Group) Push(value float64, isError bool) {
	g.Values = append(g.Values, value)
	if isError {
		g.Errors++
	}
}

// Count returns the number of recorded samples.
func (g *Group) Count() int { return len(g.Values) }

// Summary holds the finalized statistics of a Group.
type Summary struct {
	Count     int
	Errors    int
	ErrorRate float64
	Mean      float64
	Min       float64
	Max       float64
	P50       float64
	P95       float64
	P99       float64
}

// Finalize computes the group's statistics in a single pass over the closed
// sample set. An empty group yields the zero Summary.
func (g *Group) Finalize() Summary {
	n := len(g.Values)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, g.Values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range g.Values {
		sum += v
	}

	return Summary{
		Count:     n,
		Errors:    g.Errors,
		ErrorRate: float64(g.Errors) / float64(n) * 100,
		Mean:      sum / float64(n),
		Min:       sorted[0],
		Max:       sorted[n-1],
		P50:       median(sorted),
		P95:       Percentile95(sorted),
		P99:       Percentile99(sorted),
	}
}
