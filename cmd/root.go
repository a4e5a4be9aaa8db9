package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "adscript",
	Short: "Generate short video ad scripts with several LLM providers",
	Long: `Adscript turns a product brief into ready-to-read video ad scripts.
Each brief is sent to OpenAI, Claude and Gemini in parallel; scripts shorter
than the target length for the chosen duration get one refinement pass.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogger()
	}
}

func Execute() error {
	return rootCmd.Execute()
}

// Logs go to stderr so `generate --json` keeps stdout machine-readable.
func setupLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
