package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prepforge",
	Short: "LLM-backed exam content generation service",
	Long: "PrepForge generates structured exam-prep content (learning paths, " +
		"MCQ questions, sketch prompts) through LLM workflows exposed as " +
		"synchronous and queued HTTP endpoints.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides the default search path)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite job database (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
