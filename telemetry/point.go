package telemetry

import (
	"strconv"
	"time"
)

// Kind identifies which metric a Point carries.
type Kind int

const (
	// Gauge is a virtual-user count sample.
	Gauge Kind = iota
	// Duration is an HTTP request duration sample in milliseconds.
	Duration
)

// Point is one telemetry sample. It is immutable once parsed.
type Point struct {
	Kind      Kind
	Timestamp time.Time
	Value     float64
	Tags      map[string]string
}

// Tag returns the named tag or def when the tag is absent or empty.
func (p Point) Tag(name, def string) string {
	if v, ok := p.Tags[name]; ok && v != "" {
		return v
	}
	return def
}

// IsError reports whether the point's status tag is a numeric HTTP status
// of 400 or above. A missing or non-numeric status counts as success.
func (p Point) IsError() bool {
	code, err := strconv.Atoi(p.Tag("status", "200"))
	if err != nil {
		return false
	}
	return code >= 400
}
