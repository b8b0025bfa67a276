package app

import (
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/testbridge/instrumentation-bridge/internal/app/bridge"
	"github.com/testbridge/instrumentation-bridge/internal/forwarder"
	"github.com/testbridge/instrumentation-bridge/internal/logging"
)

func makeRunCmd(stdin io.Reader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [<flags>]",
		Short: "Report a test run read from go test -json output",
		Long: `Report a test run read from go test -json output.

The test output is read from stdin, from --input or from the standard
output of --command. The status protocol is written to stdout, the
run summary to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, stdin)
		},
		Args: validateRunArgs,
	}

	cmd.Flags().String("endpoint", "", "URL of the collector every lifecycle event is POSTed to. Events are not forwarded if empty.")
	_ = viper.BindPFlag("endpoint", cmd.Flags().Lookup("endpoint"))

	cmd.Flags().Duration("forward-timeout", forwarder.DefaultTimeout, "Timeout of a single attempt to forward an event.")
	_ = viper.BindPFlag("forward.timeout", cmd.Flags().Lookup("forward-timeout"))

	cmd.Flags().Int("forward-workers", forwarder.DefaultWorkers, "Maximum number of events forwarded concurrently.")
	_ = viper.BindPFlag("forward.workers", cmd.Flags().Lookup("forward-workers"))

	cmd.Flags().Int("forward-queue-size", forwarder.DefaultQueueSize, "Maximum number of events waiting for a worker. Events are dropped while the queue is full.")
	_ = viper.BindPFlag("forward.queue-size", cmd.Flags().Lookup("forward-queue-size"))

	cmd.Flags().Duration("forward-jitter", 0, "Delay every forwarded event by a random duration up to this value.")
	_ = viper.BindPFlag("forward.jitter", cmd.Flags().Lookup("forward-jitter"))

	cmd.Flags().Duration("drain-timeout", 5*time.Second, "Time to wait for pending events to be forwarded before exiting.")
	_ = viper.BindPFlag("drain-timeout", cmd.Flags().Lookup("drain-timeout"))

	cmd.Flags().String("format", bridge.FormatInstrumentation, "Format of the status protocol (one of: instrumentation, json).")
	_ = viper.BindPFlag("format", cmd.Flags().Lookup("format"))

	cmd.Flags().StringP("input", "i", "-", "File with go test -json output, - for stdin.")
	_ = viper.BindPFlag("input", cmd.Flags().Lookup("input"))

	cmd.Flags().BoolP("follow", "f", false, "Keep reading --input as it grows, until --num-tests tests completed or the process is interrupted.")
	_ = viper.BindPFlag("follow", cmd.Flags().Lookup("follow"))

	cmd.Flags().Bool("follow-poll", false, "Poll --input for changes instead of using file system notifications.")
	_ = viper.BindPFlag("follow-poll", cmd.Flags().Lookup("follow-poll"))

	cmd.Flags().StringP("command", "c", "", "Run this command and read its standard output, e.g. \"go test -json ./...\".")
	_ = viper.BindPFlag("command", cmd.Flags().Lookup("command"))

	cmd.Flags().StringSlice("ignore", nil, "Report tests matching this pattern (<package>#<test>, ** supported) as ignored.")
	_ = viper.BindPFlag("ignore", cmd.Flags().Lookup("ignore"))

	cmd.Flags().Int("num-tests", 0, "Number of tests announced at run start. Counted from --input if not set.")
	_ = viper.BindPFlag("num-tests", cmd.Flags().Lookup("num-tests"))

	return cmd
}

func runRun(cmd *cobra.Command, stdin io.Reader) error {
	b := bridge.New(
		bridge.Config{
			Endpoint:       viper.GetString("endpoint"),
			ForwardTimeout: viper.GetDuration("forward.timeout"),
			ForwardWorkers: viper.GetInt("forward.workers"),
			ForwardQueue:   viper.GetInt("forward.queue-size"),
			ForwardJitter:  viper.GetDuration("forward.jitter"),
			DrainTimeout:   viper.GetDuration("drain-timeout"),
			Format:         viper.GetString("format"),
			Input:          viper.GetString("input"),
			Follow:         viper.GetBool("follow"),
			FollowPoll:     viper.GetBool("follow-poll"),
			Command:        viper.GetString("command"),
			Ignore:         viper.GetStringSlice("ignore"),
			NumTests:       viper.GetInt("num-tests"),
		},
		stdin,
		cmd.OutOrStdout(),
		cmd.ErrOrStderr(),
		viper.Get("logger").(logging.Logger),
	)

	return b.Run(cmd.Context())
}

func validateRunArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errors.New("unexpected arguments, try --help")
	}
	if viper.GetBool("follow") && viper.GetString("command") != "" {
		return errors.New("--follow and --command are mutually exclusive, try --help")
	}
	if viper.GetBool("follow") && (viper.GetString("input") == "" || viper.GetString("input") == "-") {
		return errors.New("--follow requires --input to name a file, try --help")
	}
	return nil
}
