// Package statusapi serves run-progress snapshots to pollers as JSON.
// It is deliberately tiny: one read-only endpoint. Uploading configs and
// serving rendered reports belong to the web frontend, not here.
package statusapi

import (
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/loadscope/loadreport/status"
	"github.com/loadscope/loadreport/tracker"
)

const (
	routePrefix = "/api/runs/"
	routeSuffix = "/status"
)

// runStatus is the wire shape of one snapshot.
type runStatus struct {
	ID                string `json:"id"`
	Filename          string `json:"filename"`
	SubmittedAt       string `json:"submitted_at"`
	Status            string `json:"status"`
	Stage             string `json:"stage"`
	CurrentVUs        int    `json:"vus"`
	TargetVUs         int    `json:"target_vus"`
	ProgressPercent   int    `json:"progress_percent"`
	RunningTime       string `json:"running_time,omitempty"`
	StageIndex        int    `json:"current_stage"`
	TotalStages       int    `json:"total_stages"`
	ThresholdsCrossed bool   `json:"thresholds_crossed,omitempty"`
	ReportFile        string `json:"report_file,omitempty"`
	Error             string `json:"error,omitempty"`
}

// Server answers GET /api/runs/{id}/status from a status store.
type Server struct {
	store *status.Store
	log   *logrus.Entry
}

// New returns a Server over the given store.
func New(store *status.Store) *Server {
	return &Server{store: store, log: logrus.WithField("component", "statusapi")}
}

// Handler is the fasthttp request handler.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	if !ctx.IsGet() || !strings.HasPrefix(path, routePrefix) || !strings.HasSuffix(path, routeSuffix) {
		writeError(ctx, fasthttp.StatusNotFound, "not found")
		return
	}
	id := strings.TrimSuffix(strings.TrimPrefix(path, routePrefix), routeSuffix)
	snap, ok := s.store.Get(id)
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, "run not found")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, toWire(snap))
}

// ListenAndServe blocks serving the status API on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.log.WithField("addr", addr).Info("status API listening")
	return fasthttp.ListenAndServe(addr, s.Handler)
}

func toWire(snap status.Snapshot) runStatus {
	p := snap.Progress
	out := runStatus{
		ID:                snap.ID,
		Filename:          snap.Filename,
		SubmittedAt:       snap.SubmittedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Status:            string(p.Status),
		Stage:             p.PhaseLabel,
		CurrentVUs:        p.CurrentVUs,
		TargetVUs:         p.TargetVUs,
		ProgressPercent:   p.ProgressPercent,
		RunningTime:       p.RunningTime,
		StageIndex:        p.StageIndex,
		TotalStages:       p.TotalStages,
		ThresholdsCrossed: p.ThresholdsCrossed,
		ReportFile:        p.ReportFile,
	}
	if p.Status == tracker.StatusFailed {
		out.Error = p.Diagnostic
	}
	return out
}

func writeJSON(ctx *fasthttp.RequestCtx, code int, v interface{}) {
	ctx.SetStatusCode(code)
	ctx.SetContentType("application/json; charset=utf-8")
	_ = json.NewEncoder(ctx).Encode(v)
}

func writeError(ctx *fasthttp.RequestCtx, code int, msg string) {
	writeJSON(ctx, code, map[string]string{"error": msg})
}
