package report

import (
	"fmt"
	"io"
)

// WriteSummary prints the run totals and the per-endpoint table as text,
// with endpoint names padded to a common width.
func WriteSummary(w io.Writer, s *Summary) error {
	_, err := fmt.Fprintf(w,
		"%s\nrequests: %d, errors: %d (%.1f%%), peak VUs: %d\n"+
			"latency ms: mean %.1f, min %.1f, max %.1f, p50 %.1f, p95 %.1f, p99 %.1f\n"+
			"skipped records: %d\n",
		s.Title, s.TotalRequests, s.ErrorCount, s.ErrorRatePct, s.PeakVUs,
		s.AvgMs, s.MinMs, s.MaxMs, s.P50Ms, s.P95Ms, s.P99Ms,
		s.SkippedRecords)
	if err != nil {
		return err
	}

	maxNameLength := 0
	for _, row := range s.Endpoints {
		if len(row.Name) > maxNameLength {
			maxNameLength = len(row.Name)
		}
	}
	for _, row := range s.Endpoints {
		padded := row.Name
		for len(padded) < maxNameLength {
			padded += " "
		}
		thresholdStr := "n/a"
		if row.ThresholdMs != nil {
			thresholdStr = fmt.Sprintf("%.0fms", *row.ThresholdMs)
		}
		_, err = fmt.Fprintf(w,
			"%s: %6d reqs, avg %8.1fms, p95 %8.1fms (threshold %s), min/max %.1f/%.1fms, success %5.1f%%, %s\n",
			padded, row.Count, row.AvgMs, row.P95Ms, thresholdStr,
			row.MinMs, row.MaxMs, row.SuccessRate, row.Status)
		if err != nil {
			return err
		}
	}
	return nil
}
