package app

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/testbridge/instrumentation-bridge/internal/logging"
)

const defaultConfigFile = "instrumentation-bridge.yml"

func makeInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [<config-file>]",
		Short: "Write the current configuration to a config file",
		Long: `Write the current configuration, including defaults, flags and
environment, to a config file. An existing file is not overwritten.`,
		RunE: runInit,
		Args: cobra.MaximumNArgs(1),
	}

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	log := viper.Get("logger").(logging.Logger)

	filename := defaultConfigFile
	if len(args) == 1 {
		filename = args[0]
	}

	// The logger is runtime state, not configuration.
	logger := viper.Get("logger")
	viper.Set("logger", nil)
	defer viper.Set("logger", logger)

	if err := viper.SafeWriteConfigAs(filename); err != nil {
		return errors.Wrapf(err, "failed to write config file %s", filename)
	}
	log.Infof("Config written to %s", filename)
	fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", filename)
	return nil
}
