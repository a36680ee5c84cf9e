package tracker

import (
	"regexp"
	"strconv"
	"strings"
)

// The load generator emits free-text progress lines such as
//
//	running (1m30s), 342/500 VUs, 12500 complete and 0 interrupted iterations
//
// Scraping text like this is fragile, so every pattern lives in its own
// matcher that can be tested without a process behind it. More than one
// matcher may fire on the same line; each returns only its own delta.

var (
	vusPairRe     = regexp.MustCompile(`(\d+)/(\d+)\s+VUs`)
	vusSingleRe   = regexp.MustCompile(`(\d+)\s+VUs`)
	percentRe     = regexp.MustCompile(`(\d+)%`)
	runningTimeRe = regexp.MustCompile(`running\s+\(([^)]+)\)`)
)

// matchVUsPair recognizes the "current/target VUs" form.
func matchVUsPair(line string) (current, target int, ok bool) {
	m := vusPairRe.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, false
	}
	current, _ = strconv.Atoi(m[1])
	target, _ = strconv.Atoi(m[2])
	return current, target, true
}

// matchVUsSingle recognizes a bare "N VUs" count. Callers must suppress it
// on lines where matchVUsPair already fired: the pair form also contains a
// bare count and would double-report.
func matchVUsSingle(line string) (current int, ok bool) {
	m := vusSingleRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	current, _ = strconv.Atoi(m[1])
	return current, true
}

// matchPercent recognizes a progress percentage anywhere in the line.
func matchPercent(line string) (percent int, ok bool) {
	m := percentRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	percent, _ = strconv.Atoi(m[1])
	return percent, true
}

// matchRunningTime recognizes the "running (<duration>)" form.
func matchRunningTime(line string) (duration string, ok bool) {
	m := runningTimeRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Phase is a stage-transition hint found in the output.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseRampUp
	PhaseRampDown
	PhaseSteady
)

// matchPhase recognizes stage-transition messages, case-insensitively.
// Checks are ordered and exclusive; a line reports at most one phase.
func matchPhase(line string) Phase {
	lower := strings.ToLower(strings.TrimSpace(line))
	switch {
	case strings.Contains(lower, "ramping up"):
		return PhaseRampUp
	case strings.Contains(lower, "ramping down"):
		return PhaseRampDown
	case strings.Contains(lower, "staying at"):
		return PhaseSteady
	default:
		return PhaseNone
	}
}
