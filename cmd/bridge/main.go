package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agent-bridge/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "bridge",
	Short: "agent-bridge - file-based control bridge for an external agent",
	Long: `agent-bridge lets an external agent drive the simulation through two JSON files:
a command batch the agent writes and a state snapshot the bridge rewrites every tick.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init()
		if logLevel != "" || logFormat != "" {
			logger.Configure(coalesce(logLevel, os.Getenv("LOG_LEVEL")), coalesce(logFormat, os.Getenv("LOG_FORMAT")), os.Stderr)
		}
	},
}

var (
	exchangeDir string
	logLevel    string
	logFormat   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&exchangeDir, "dir", ".", "Directory holding the command and state files")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (overrides LOG_FORMAT)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(versionCmd)
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
