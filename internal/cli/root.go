package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "guestgate",
	Short: "Request security pipeline for a guest-facing AI concierge",
	Long:  "Sits between untrusted guest input and the model: rate limiting, brute-force lockout, prompt-injection screening, SSRF-guarded calendar fetches, and post-generation output filtering.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
