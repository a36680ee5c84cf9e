package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/loadscope/loadreport/config"
	"github.com/loadscope/loadreport/report"
	"github.com/loadscope/loadreport/telemetry"
)

const (
	telemetryFlag = "telemetry"
	endpointsFlag = "endpoints"
	outFlag       = "out"
)

func initReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:              "report",
		Short:            "Build a report from an existing k6 telemetry file",
		PersistentPreRun: initViperConfig,
		Run:              runReport,
	}
	cmd.PersistentFlags().AddFlagSet(reportFlags())
	return cmd
}

func reportFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("", pflag.ContinueOnError)
	fs.String(telemetryFlag, "k6-results.json", "k6 JSON-lines telemetry file to analyze")
	fs.String(endpointsFlag, "endpoints.json", "endpoint configuration file")
	fs.String(outFlag, "", "report file to write (default derived from the report title)")
	return fs
}

func runReport(cmd *cobra.Command, _ []string) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		logrus.WithError(err).Fatal("could not bind report flags")
	}
	out, err := buildReport(
		viper.GetString(telemetryFlag),
		viper.GetString(endpointsFlag),
		viper.GetString(outFlag),
	)
	if err != nil {
		logrus.WithError(err).Fatal("report failed")
	}
	logrus.WithField("file", out).Info("report written")
}

// buildReport runs the offline pipeline over one telemetry file, writes the
// report payload and prints the text summary. It returns the written file
// name.
func buildReport(telemetryPath, endpointsPath, out string) (string, error) {
	cfg, err := config.Load(endpointsPath)
	if err != nil {
		logrus.WithError(err).Warn("using default endpoint configuration")
	}

	f, err := os.Open(telemetryPath)
	if err != nil {
		return "", errors.Wrap(err, "open telemetry file")
	}
	defer f.Close()

	batch, err := telemetry.ReadBatch(f)
	if err != nil {
		return "", errors.Wrap(err, "read telemetry")
	}

	summary, err := report.NewBuilder(cfg).Build(batch)
	if err != nil {
		return "", err
	}

	if out == "" {
		out = report.FileName(summary.Title, time.Now(), ".json")
	}
	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode report")
	}
	if err := os.WriteFile(out, payload, 0644); err != nil {
		return "", errors.Wrap(err, "write report")
	}

	if err := report.WriteSummary(os.Stdout, summary); err != nil {
		return "", err
	}
	return out, nil
}
