// Package utils carries small helpers shared by the commands.
package utils

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SetupConfigFile wires the optional config-file support: flags stay the
// source of truth while a ./loadreport.yaml (or the file named by
// cfgFile) supplies defaults under the same keys.
func SetupConfigFile(cfgFile string, flags *pflag.FlagSet) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("loadreport")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.BindPFlags(flags); err != nil {
		return err
	}

	if err := viper.ReadInConfig(); err != nil {
		// Ignore error if config file not found.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return nil
}
