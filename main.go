package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("morse")
	}
}

func newRootCmd() *cobra.Command {
	var pretty bool
	rootCmd := &cobra.Command{
		Use:          "morse",
		Short:        "Morse memory game: repeat the blinking sequence with short and long presses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if pretty {
				log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "human readable logs instead of JSON")

	rootCmd.AddCommand(
		newServeCmd(),
		newDemoCmd(),
		newTokenCmd(),
	)
	return rootCmd
}

// setLogLevel applies LOG_LEVEL; unknown values keep the current level.
func setLogLevel(level string) {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", level).Msg("unknown log level")
	}
}
