package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/testbridge/instrumentation-bridge/internal/logging"
)

const (
	exitCodeNormal = 0
	exitCodeError  = 1
)

func Execute(version string, stdout, stderr io.Writer) int {
	return execute(version, os.Args[1:], os.Stdin, stdout, stderr)
}

func execute(version string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	log := logging.MustGetLogger()
	viper.Set("logger", log)

	// Initialize config
	viper.SetConfigName("instrumentation-bridge")        // name of config file (without extension)
	viper.AddConfigPath("/etc/instrumentation-bridge/")  // path to look for the config file in
	viper.AddConfigPath("$HOME/.instrumentation-bridge") // call multiple times to add many search paths
	viper.AddConfigPath(".")                             // optionally look for config in the working directory
	viper.SetEnvPrefix("INSTRUMENTATION_BRIDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Read config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Errorf("Error processing config file: %v", err)
			return exitCodeError
		}
	}

	var logfile io.Closer
	rootCmd := makeRootCmd(version, stdin, &logfile)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SilenceUsage = true

	err := rootCmd.Execute()
	if logfile != nil {
		_ = logfile.Close()
	}
	if err != nil {
		prefixedUserError(stderr, "error: %v", err)
		return exitCodeError
	}

	return exitCodeNormal
}

func setDefaults() {
	viper.SetDefault("loglevel", "WARNING")
	viper.SetDefault("logfile", "")
	viper.SetDefault("logfile-max-size", 100)
	viper.SetDefault("logfile-max-backups", 3)
	viper.SetDefault("logfile-max-age", 28)
	viper.SetDefault("logfile-compress", false)
}

func makeRootCmd(version string, stdin io.Reader, logfile *io.Closer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "instrumentation-bridge",
		Short: "Report a Go test run in the instrumentation status protocol and forward it to a collector",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetLevel(viper.GetString("loglevel"))
			if filename := viper.GetString("logfile"); filename != "" {
				*logfile = logging.SetOutputFile(filename, logging.FileOptions{
					MaxSize:    viper.GetInt("logfile-max-size"),
					MaxBackups: viper.GetInt("logfile-max-backups"),
					MaxAge:     viper.GetInt("logfile-max-age"),
					Compress:   viper.GetBool("logfile-compress"),
				})
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		SilenceErrors: true,
		Version:       version,
	}

	rootCmd.InitDefaultVersionFlag()

	rootCmd.PersistentFlags().String("loglevel", "WARNING", "Set the desired level of logging (one of: CRITICAL, ERROR, WARNING, NOTICE, INFO, DEBUG).")
	_ = viper.BindPFlag("loglevel", rootCmd.PersistentFlags().Lookup("loglevel"))

	rootCmd.PersistentFlags().String("logfile", "", "Write log messages to this file instead of stderr. The file is rotated by size.")
	_ = viper.BindPFlag("logfile", rootCmd.PersistentFlags().Lookup("logfile"))

	rootCmd.AddCommand(makeRunCmd(stdin))
	rootCmd.AddCommand(makeInitCmd())
	rootCmd.AddCommand(makeVersionCmd(version))

	return rootCmd
}

// prefixedUserError prints an error message to w and prefixes it
// with the name of the program file (e.g. "instrumentation-bridge:
// something bad happened.").
func prefixedUserError(w io.Writer, format string, a ...interface{}) {
	basename := filepath.Base(os.Args[0])
	message := fmt.Sprintf(format, a...)
	if strings.HasSuffix(message, "\n") {
		fmt.Fprintf(w, "%s: %s", basename, message)
	} else {
		fmt.Fprintf(w, "%s: %s\n", basename, message)
	}
}
