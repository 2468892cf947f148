package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/jsphweid/pianodiff/config"
	"github.com/jsphweid/pianodiff/constants"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// cfg is loaded before any subcommand runs.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "pianodiff",
	Short: "Compares piano attempts against a reference",
	Long: `pianodiff aligns a recorded MIDI attempt with a reference performance
and reports missing, extra and wrong notes plus timing and duration problems
per measure and beat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a missing .env is fine
		_ = godotenv.Load()

		level, err := logrus.ParseLevel(constants.GetLogLevel())
		if err != nil {
			return err
		}
		logrus.SetLevel(level)

		loaded, err := config.LoadDefault()
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the CLI until the command finishes or an interrupt arrives.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}
