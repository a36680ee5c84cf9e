// Package threshold holds the latency-threshold and status-classification
// policy. The lookup chain and the derived defaults encode business policy,
// so they live here as an injectable evaluator instead of inside the
// aggregation core.
package threshold

import (
	"strings"

	"github.com/loadscope/loadreport/config"
)

// Status classifies an endpoint's health in the report.
type Status string

const (
	StatusExcellent      Status = "excellent"
	StatusGood           Status = "good"
	StatusNeedsAttention Status = "needs attention"
)

// Derived default thresholds, in milliseconds, applied to configured
// endpoints that carry no explicit threshold_ms.
const (
	defaultDashboardMs      = 1500
	defaultStudentListMs    = 2500
	defaultStudentDetailsMs = 1500
	defaultCourseMs         = 5000
	defaultMs               = 2000
)

// Evaluator resolves per-endpoint thresholds. Only endpoints declared in
// the configuration get a threshold; labels produced by tag or URL fallback
// have none and always pass.
type Evaluator struct {
	thresholds map[string]float64
}

// NewEvaluator builds the threshold table from configured endpoints:
// explicit threshold_ms first, derived default otherwise.
func NewEvaluator(endpoints []config.Endpoint) *Evaluator {
	t := make(map[string]float64, len(endpoints))
	for _, ep := range endpoints {
		if ep.ThresholdMs != nil {
			t[ep.Name] = *ep.ThresholdMs
			continue
		}
		t[ep.Name] = DerivedDefault(ep.Name)
	}
	return &Evaluator{thresholds: t}
}

// DerivedDefault returns the fallback threshold for an endpoint name,
// chosen by case-insensitive substring checks in priority order.
func DerivedDefault(name string) float64 {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "dashboard"):
		return defaultDashboardMs
	case strings.Contains(lower, "student") && strings.Contains(lower, "list"):
		return defaultStudentListMs
	case strings.Contains(lower, "student") && strings.Contains(lower, "details"):
		return defaultStudentDetailsMs
	case strings.Contains(lower, "course"):
		return defaultCourseMs
	default:
		return defaultMs
	}
}

// Verdict is the threshold evaluation of one endpoint.
type Verdict struct {
	// ThresholdMs is nil when the endpoint has no configured threshold.
	ThresholdMs *float64
	Passed      bool
}

// Evaluate compares an endpoint's p95 against its threshold. Endpoints
// without a threshold pass unconditionally.
func (e *Evaluator) Evaluate(name string, p95 float64) Verdict {
	ms, ok := e.thresholds[name]
	if !ok {
		return Verdict{Passed: true}
	}
	return Verdict{ThresholdMs: &ms, Passed: p95 <= ms}
}

// Classify maps success rate and threshold compliance to a status label.
func Classify(successRate float64, thresholdPassed bool) Status {
	switch {
	case successRate >= 95 && thresholdPassed:
		return StatusExcellent
	case successRate >= 90 && thresholdPassed:
		return StatusGood
	default:
		return StatusNeedsAttention
	}
}
