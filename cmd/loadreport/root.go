package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/loadscope/loadreport/internal/utils"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "loadreport",
		Short: "Run k6 load tests and build reports from their telemetry",
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./loadreport.yaml)")
	rootCmd.AddCommand(initReportCmd())
	rootCmd.AddCommand(initRunCmd())
}

// initViperConfig runs as each subcommand's PersistentPreRun so that only
// the flags of the executed command end up bound in viper.
func initViperConfig(cmd *cobra.Command, _ []string) {
	if err := utils.SetupConfigFile(cfgFile, cmd.Flags()); err != nil {
		logrus.WithError(err).Fatal("could not read config file")
	}
}
