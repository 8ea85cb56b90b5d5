package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hostling/guestgate/internal/config"
	"github.com/hostling/guestgate/internal/fetchguard"
)

var checkURLFetch bool

func init() {
	rootCmd.AddCommand(checkURLCmd)
	checkURLCmd.Flags().BoolVar(&checkURLFetch, "fetch", false, "Actually fetch the URL after validation")
}

var checkURLCmd = &cobra.Command{
	Use:   "check-url <url>",
	Short: "Run the SSRF guard against a URL",
	Long:  "Validates a URL the way the calendar sync path would: scheme, literal hostname rules, and DNS re-validation. With --fetch, performs the full bounded fetch.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckURL,
}

func runCheckURL(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	fetcher := fetchguard.New(cfg.Fetch)
	ctx := context.Background()

	if !checkURLFetch {
		if err := fetcher.Validate(ctx, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "BLOCKED: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("OK: URL passes validation")
		return nil
	}

	resp, err := fetcher.Fetch(ctx, args[0], nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "BLOCKED: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK: HTTP %d, %d bytes from %s\n", resp.Status, len(resp.Body), resp.FinalURL)
	return nil
}
