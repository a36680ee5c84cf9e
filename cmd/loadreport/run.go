package main

import (
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/loadscope/loadreport/config"
	"github.com/loadscope/loadreport/runner"
	"github.com/loadscope/loadreport/status"
	"github.com/loadscope/loadreport/statusapi"
)

const (
	scriptFlag  = "script"
	k6Flag      = "k6-binary"
	workdirFlag = "workdir"
	timeoutFlag = "timeout"
	stagesFlag  = "stages"
	listenFlag  = "listen"
)

func initRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:              "run",
		Short:            "Execute a k6 script and build the report from its telemetry",
		PersistentPreRun: initViperConfig,
		Run:              runRun,
	}
	cmd.PersistentFlags().AddFlagSet(runFlags())
	return cmd
}

func runFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("", pflag.ContinueOnError)
	fs.String(scriptFlag, "loadtest.js", "k6 script to execute")
	fs.String(k6Flag, "k6", "k6 binary to invoke")
	fs.String(workdirFlag, "", "working directory for the k6 process")
	fs.String(telemetryFlag, "k6-results.json", "telemetry file the k6 process writes")
	fs.String(endpointsFlag, "endpoints.json", "endpoint configuration file")
	fs.String(outFlag, "", "report file to write (default derived from the report title)")
	fs.Duration(timeoutFlag, runner.DefaultTimeout, "hard wall-clock ceiling for the k6 process")
	fs.Int(stagesFlag, 0, "total load stages in the script (0 uses the default)")
	fs.String(listenFlag, "", "address for the status API (empty disables it)")
	return fs
}

func runRun(cmd *cobra.Command, _ []string) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		logrus.WithError(err).Fatal("could not bind run flags")
	}

	script := viper.GetString(scriptFlag)
	telemetryPath := viper.GetString(telemetryFlag)
	endpointsPath := viper.GetString(endpointsFlag)

	// The run path requires a usable endpoint configuration when one is
	// present; the report path alone tolerates the default fallback.
	if cfg, err := config.Load(endpointsPath); err != nil {
		logrus.WithError(err).Warn("using default endpoint configuration")
	} else if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid endpoint configuration")
	}

	store := status.NewStore()
	run := store.Create(filepath.Base(script), viper.GetInt(stagesFlag))

	if addr := viper.GetString(listenFlag); addr != "" {
		srv := statusapi.New(store)
		go func() {
			if err := srv.ListenAndServe(addr); err != nil {
				logrus.WithError(err).Error("status API stopped")
			}
		}()
		logrus.WithField("addr", addr).Info("status API listening")
	}

	summaryPath := strings.TrimSuffix(telemetryPath, filepath.Ext(telemetryPath)) + "-summary.json"
	rcfg := runner.Config{
		Argv: []string{
			viper.GetString(k6Flag), "run",
			"--summary-export=" + summaryPath,
			"--out", "json=" + telemetryPath,
			script,
		},
		Dir:           viper.GetString(workdirFlag),
		Timeout:       viper.GetDuration(timeoutFlag),
		TelemetryPath: telemetryPath,
		GenerateReport: func() (string, error) {
			return buildReport(telemetryPath, viper.GetString(endpointsFlag), viper.GetString(outFlag))
		},
	}

	logrus.WithFields(logrus.Fields{"run": run.ID, "script": script}).Info("starting load test")
	err := runner.Run(rcfg, run.Tracker())
	snap := run.Tracker().Snapshot()
	logrus.WithFields(logrus.Fields{
		"run":    run.ID,
		"status": snap.Status,
		"report": snap.ReportFile,
	}).Info("run finished")
	if err != nil {
		logrus.WithError(err).Fatal("run failed")
	}
}
