// Package runner executes the load-generation process for one run, feeds
// its combined output to the run's tracker line by line, and enforces the
// wall-clock ceiling.
package runner

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/loadscope/loadreport/tracker"
)

const (
	// DefaultTimeout is the hard wall-clock ceiling for one run.
	DefaultTimeout = 5 * time.Minute
	// maxOutputLine bounds one line of process output. k6 summary lines
	// can far exceed the bufio default.
	maxOutputLine = 4 << 20 // 4 MB
)

// ErrTimeout marks a run aborted by the wall-clock ceiling.
var ErrTimeout = errors.New("load process timed out")

// Config describes one process run.
type Config struct {
	// Argv is the full command line; Argv[0] is the binary.
	Argv []string
	// Dir is the working directory; empty means inherited.
	Dir string
	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration
	// TelemetryPath, when set, must exist after a successful exit; the
	// process contract says the telemetry file is on disk by then.
	TelemetryPath string
	// GenerateReport, when set, runs after a successful exit and returns
	// the report file name. Its failure fails the run: a completed run
	// without a report has no user-visible value.
	GenerateReport func() (string, error)
}

// Run executes the process to completion and drives the tracker through
// its terminal transition. The combined output is consumed synchronously;
// on timeout the whole process group is killed and reaped, never left
// running. The returned error reports why a run failed; a nil error means
// the tracker ended completed.
func Run(cfg Config, t *tracker.Tracker) error {
	if len(cfg.Argv) == 0 {
		t.Fail("no command configured")
		return errors.New("runner: empty argv")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log := logrus.WithField("component", "runner")

	cmd := exec.Command(cfg.Argv[0], cfg.Argv[1:]...)
	cmd.Dir = cfg.Dir
	// The process gets its own group so a timeout kill reaches any
	// children it spawned.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	pr, pw, err := os.Pipe()
	if err != nil {
		t.Fail("could not create output pipe: " + err.Error())
		return errors.Wrap(err, "runner: output pipe")
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	t.Start()
	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		t.Fail("could not start load process: " + err.Error())
		return errors.Wrap(err, "runner: start")
	}
	// The child holds its own copy of the write end now.
	pw.Close()
	log.WithField("pid", cmd.Process.Pid).Debug("load process started")

	timedOut := atomic.NewBool(false)
	pgid := cmd.Process.Pid
	watchdog := time.AfterFunc(timeout, func() {
		timedOut.Store(true)
		// Negative pid addresses the process group.
		syscall.Kill(-pgid, syscall.SIGKILL)
	})

	// Synchronous line loop; ends at EOF once the process (and its
	// children) release the pipe. Sized like the telemetry reader so one
	// oversized line cannot abort the scan mid-run.
	sc := bufio.NewScanner(pr)
	sc.Buffer(make([]byte, 64*1024), maxOutputLine)
	for sc.Scan() {
		t.Consume(sc.Text())
	}
	if scanErr := sc.Err(); scanErr != nil {
		// Closing the pipe here would SIGPIPE the child; keep draining
		// until it exits and let the exit code decide the run.
		log.WithError(scanErr).Warn("stopped parsing process output")
		io.Copy(io.Discard, pr)
	}
	pr.Close()

	waitErr := cmd.Wait()
	watchdog.Stop()

	if timedOut.Load() {
		t.Fail(ErrTimeout.Error())
		return ErrTimeout
	}

	exitCode := cmd.ProcessState.ExitCode()
	if exitCode != 0 && exitCode != tracker.SentinelExitCode {
		t.FinishExit(exitCode)
		return errors.Errorf("runner: load process exited with code %d", exitCode)
	}
	if waitErr != nil && exitCode != tracker.SentinelExitCode {
		t.Fail("load process wait failed: " + waitErr.Error())
		return errors.Wrap(waitErr, "runner: wait")
	}

	if cfg.TelemetryPath != "" {
		if _, err := os.Stat(cfg.TelemetryPath); err != nil {
			t.Fail("telemetry file missing after run: " + err.Error())
			return errors.Wrapf(err, "runner: telemetry file %s", cfg.TelemetryPath)
		}
	}

	if cfg.GenerateReport != nil {
		name, err := cfg.GenerateReport()
		if err != nil {
			t.Fail("report generation failed: " + err.Error())
			return errors.Wrap(err, "runner: report generation")
		}
		t.SetReportFile(name)
	}

	t.FinishExit(exitCode)
	return nil
}
