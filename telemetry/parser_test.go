package telemetry

import (
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		desc      string
		line      string
		wantOK    bool
		wantKind  Kind
		wantValue float64
	}{
		{
			desc:      "vus gauge",
			line:      `{"type":"Point","metric":"vus","data":{"time":"2024-05-01T10:00:00Z","value":42}}`,
			wantOK:    true,
			wantKind:  Gauge,
			wantValue: 42,
		},
		{
			desc:      "http duration",
			line:      `{"type":"Point","metric":"http_req_duration","data":{"time":"2024-05-01T10:00:01Z","value":123.45,"tags":{"url":"http://x/api","status":"200","method":"GET"}}}`,
			wantOK:    true,
			wantKind:  Duration,
			wantValue: 123.45,
		},
		{
			desc:   "zero duration dropped",
			line:   `{"type":"Point","metric":"http_req_duration","data":{"time":"2024-05-01T10:00:01Z","value":0}}`,
			wantOK: false,
		},
		{
			desc:   "negative duration dropped",
			line:   `{"type":"Point","metric":"http_req_duration","data":{"time":"2024-05-01T10:00:01Z","value":-5}}`,
			wantOK: false,
		},
		{
			desc:   "unrelated metric dropped",
			line:   `{"type":"Point","metric":"http_reqs","data":{"time":"2024-05-01T10:00:01Z","value":1}}`,
			wantOK: false,
		},
		{
			desc:   "non-point record dropped",
			line:   `{"type":"Metric","metric":"http_req_duration","data":{}}`,
			wantOK: false,
		},
		{
			desc:   "malformed json dropped",
			line:   `{"type":"Point",`,
			wantOK: false,
		},
		{
			desc:   "empty line dropped",
			line:   ``,
			wantOK: false,
		},
	}
	for _, c := range cases {
		var p Parser
		got, ok := p.ParseLine([]byte(c.line))
		if ok != c.wantOK {
			t.Errorf("%s: ok = %v, want %v", c.desc, ok, c.wantOK)
			continue
		}
		if !ok {
			if p.Skipped() != 1 {
				t.Errorf("%s: skipped = %d, want 1", c.desc, p.Skipped())
			}
			continue
		}
		if got.Kind != c.wantKind {
			t.Errorf("%s: kind = %v, want %v", c.desc, got.Kind, c.wantKind)
		}
		if got.Value != c.wantValue {
			t.Errorf("%s: value = %v, want %v", c.desc, got.Value, c.wantValue)
		}
	}
}

func TestReadBatch(t *testing.T) {
	stream := strings.Join([]string{
		`{"type":"Point","metric":"vus","data":{"time":"2024-05-01T10:00:00Z","value":10}}`,
		`garbage that is not json`,
		`{"type":"Point","metric":"http_req_duration","data":{"time":"2024-05-01T10:00:01Z","value":100,"tags":{"status":"200"}}}`,
		`{"type":"Point","metric":"http_req_duration","data":{"time":"2024-05-01T10:00:02Z","value":250,"tags":{"status":"500"}}}`,
		`{"type":"Point","metric":"iteration_duration","data":{"time":"2024-05-01T10:00:02Z","value":1}}`,
		`{"type":"Point","metric":"http_req_duration","data":{"time":"2024-05-01T10:00:03Z","value":-1}}`,
	}, "\n")

	batch, err := ReadBatch(strings.NewReader(stream))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Durations) != 2 {
		t.Errorf("durations = %d, want 2", len(batch.Durations))
	}
	if len(batch.Gauges) != 1 {
		t.Errorf("gauges = %d, want 1", len(batch.Gauges))
	}
	if batch.Skipped != 3 {
		t.Errorf("skipped = %d, want 3", batch.Skipped)
	}
}

func TestPointIsError(t *testing.T) {
	cases := []struct {
		desc   string
		status string
		want   bool
	}{
		{desc: "ok", status: "200", want: false},
		{desc: "client error", status: "404", want: true},
		{desc: "server error", status: "500", want: true},
		{desc: "boundary", status: "400", want: true},
		{desc: "missing defaults to success", status: "", want: false},
		{desc: "non-numeric defaults to success", status: "abc", want: false},
	}
	for _, c := range cases {
		p := Point{Kind: Duration, Tags: map[string]string{}}
		if c.status != "" {
			p.Tags["status"] = c.status
		}
		if got := p.IsError(); got != c.want {
			t.Errorf("%s: IsError() = %v, want %v", c.desc, got, c.want)
		}
	}
}
