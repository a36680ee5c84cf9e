package stats

// Quantile estimation partitions the sorted sample into n equal-probability
// intervals and interpolates the requested boundary. Below the minimum
// sample size the estimate degrades to max(sample) on purpose: the existing
// thresholds were calibrated against that fallback, so a "better" small-
// sample estimator would silently change pass/fail verdicts.

const (
	p95MinSamples = 20
	p99MinSamples = 100
)

// Percentile95 returns the 95th percentile of an ascending-sorted,
// non-empty sample.
func Percentile95(sorted []float64) float64 {
	if len(sorted) < p95MinSamples {
		return sorted[len(sorted)-1]
	}
	return boundary(sorted, 20, 19)
}

// Percentile99 returns the 99th percentile of an ascending-sorted,
// non-empty sample.
func Percentile99(sorted []float64) float64 {
	if len(sorted) < p99MinSamples {
		return sorted[len(sorted)-1]
	}
	return boundary(sorted, 100, 99)
}

// boundary returns the i-th of the n-1 cut points that split the sample
// into n equal-probability intervals (exclusive method: positions are
// (len+1)*i/n with linear interpolation between neighbors).
func boundary(sorted []float64, n, i int) float64 {
	ln := len(sorted)
	m := ln + 1
	j := i * m / n
	if j < 1 {
		j = 1
	}
	if j > ln-1 {
		j = ln - 1
	}
	delta := float64(i*m - j*n)
	return (sorted[j-1]*(float64(n)-delta) + sorted[j]*delta) / float64(n)
}

// median returns the middle value of an ascending-sorted, non-empty sample,
// averaging the two middle values for even sizes.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
