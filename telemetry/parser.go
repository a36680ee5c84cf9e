package telemetry

import (
	"bufio"
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
)

const (
	metricVUs      = "vus"
	metricDuration = "http_req_duration"

	recordTypePoint = "Point"

	// defaultReadSize is the buffer size for reading telemetry files.
	defaultReadSize = 4 << 20 // 4 MB
)

// record is the wire shape of one k6 NDJSON line. Fields not needed for
// analysis are ignored by the decoder.
type record struct {
	Type   string `json:"type"`
	Metric string `json:"metric"`
	Data   struct {
		Time  time.Time         `json:"time"`
		Value float64           `json:"value"`
		Tags  map[string]string `json:"tags"`
	} `json:"data"`
}

// Batch holds the usable points of one telemetry stream in arrival order.
type Batch struct {
	Durations []Point
	Gauges    []Point
	// Skipped counts lines that were not a recognized record: malformed
	// JSON, unrelated metrics, and non-positive duration values.
	Skipped uint64
}

// Parser turns raw telemetry lines into Points. Lines that do not parse as
// one of the two recognized record kinds are dropped and tallied, never
// surfaced as errors; production streams always carry unrelated records.
type Parser struct {
	skipped uint64
}

// Skipped returns the number of lines dropped so far.
func (p *Parser) Skipped() uint64 { return p.skipped }

// ParseLine decodes a single line. ok is false for any line that should be
// ignored.
func (p *Parser) ParseLine(line []byte) (Point, bool) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		p.skipped++
		return Point{}, false
	}
	if rec.Type != recordTypePoint {
		p.skipped++
		return Point{}, false
	}
	switch rec.Metric {
	case metricVUs:
		return Point{
			Kind:      Gauge,
			Timestamp: rec.Data.Time,
			Value:     rec.Data.Value,
			Tags:      rec.Data.Tags,
		}, true
	case metricDuration:
		if rec.Data.Value <= 0 {
			p.skipped++
			return Point{}, false
		}
		return Point{
			Kind:      Duration,
			Timestamp: rec.Data.Time,
			Value:     rec.Data.Value,
			Tags:      rec.Data.Tags,
		}, true
	default:
		p.skipped++
		return Point{}, false
	}
}

// ReadBatch consumes a whole newline-delimited telemetry stream. The only
// error it can return is a read failure; bad records are counted in
// Batch.Skipped.
func ReadBatch(r io.Reader) (*Batch, error) {
	var p Parser
	batch := &Batch{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), defaultReadSize)
	for sc.Scan() {
		point, ok := p.ParseLine(sc.Bytes())
		if !ok {
			continue
		}
		switch point.Kind {
		case Gauge:
			batch.Gauges = append(batch.Gauges, point)
		case Duration:
			batch.Durations = append(batch.Durations, point)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading telemetry stream")
	}
	batch.Skipped = p.Skipped()
	return batch, nil
}
