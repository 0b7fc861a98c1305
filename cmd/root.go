package cmd

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "EMWA"

var rootCmd = &cobra.Command{
	Use:           "emwa",
	Short:         "Exponential moving averages over regular and irregular series",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := newViper(cmd.Flags())
		if err != nil {
			return err
		}

		log.SetOutput(os.Stderr)
		if v.GetBool("debug") {
			log.SetLevel(log.DebugLevel)
			return nil
		}
		logLevel, err := log.ParseLevel(v.GetString("loglevel"))
		if err != nil {
			return errors.Wrap(err, "Failed to parse log level")
		}
		log.SetLevel(logLevel)
		return nil
	},
}

// newViper binds fs to a viper instance that also reads EMWA_* environment
// variables, so --metrics-addr can be given as EMWA_METRICS_ADDR.
func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(err, "Failed to bind flags")
	}
	return v, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func init() {
	// Debug mode
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug mode")
	// log level
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Log level (debug, info, warn, error, fatal)")

	rootCmd.AddCommand(demoCmd, seriesCmd, monitorCmd)
}
