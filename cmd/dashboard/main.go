package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"impactdash/internal"
	"impactdash/internal/config"
)

var (
	// Global flags
	verbose bool
	envFile string
	timeout time.Duration

	logger *internal.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Impact Factory startup dashboard",
	Long: `dashboard serves the Impact Factory startup dashboard API: startup data from
static JSON files, a chatbot over that data, the news feed and the newsletter sign-up.

The remaining commands are maintenance helpers for the same data and configuration.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			config.LoadDotEnv(envFile)
		} else {
			config.LoadDotEnv()
		}

		level := internal.ParseLogLevel(os.Getenv("LOG_LEVEL"))
		if verbose {
			level = internal.LogLevelDebug
		}
		logger = internal.NewLogger(level)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load this .env file instead of .env.local and .env")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Timeout for one-shot commands")

	rootCmd.AddCommand(
		newServeCmd(),
		newHashPasswordCmd(),
		newCheckEnvCmd(),
		newAskCmd(),
		newStartupsCmd(),
		newClassifySectorsCmd(),
		newUsageCmd(),
		newPruneQuotaCmd(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
