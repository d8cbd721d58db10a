package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "carelog-ai-bridge",
	Short: "Turns free-text care messages into care-log backend entries",
	Long: `carelog-ai-bridge reads messages like "Samar drank 120ml formula",
classifies and extracts them with a language model, and records the result
in the care-log backend on behalf of the sending parent.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Log in and push one message through the pipeline",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check a running server's /ping endpoint",
	RunE:  runHealthcheck,
}

var (
	askEmail    string
	askPassword string
	askJSON     bool

	healthURL string
)

func init() {
	askCmd.Flags().StringVar(&askEmail, "email", os.Getenv("CARELOG_EMAIL"), "account email")
	askCmd.Flags().StringVar(&askPassword, "password", os.Getenv("CARELOG_PASSWORD"), "account password")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full result as JSON")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	healthcheckCmd.Flags().StringVar(&healthURL, "url", "http://127.0.0.1:"+port+"/ping", "endpoint to check")

	rootCmd.AddCommand(serveCmd, askCmd, healthcheckCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
