// Command gemma runs the Gemma onboarding assistant server: a Gemini
// conversation loop, tool dispatch, browser automation and the HTTP
// surface the workspace frontend talks to.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	workspace  string
	noBrowser  bool
	noSpeech   bool
)

var rootCmd = &cobra.Command{
	Use:   "gemma",
	Short: "Gemma - conversational nonprofit formation assistant",
	Long: `Gemma walks a founder through forming a Texas 501(c)(3): mission,
name, board, state and federal filings, then branding and promotion.

The model never mutates workspace state directly; it requests tool
calls and emits text directives, and the turn controller reconciles
both into the conversation state.

Run without arguments to start the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Gemma server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("gemma 1.0.0")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "gemma.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().BoolVar(&noBrowser, "no-browser", false, "disable browser automation")
	rootCmd.PersistentFlags().BoolVar(&noSpeech, "no-speech", false, "disable text-to-speech")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// A missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
