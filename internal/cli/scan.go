package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hostling/guestgate/internal/outfilter"
	"github.com/hostling/guestgate/internal/sanitize"
)

var scanOutput bool

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanOutput, "output", false, "Scan as model output (output filter) instead of guest input (sanitizer)")
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run text from stdin through the input or output firewall",
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	text := string(raw)

	if scanOutput {
		res := outfilter.Filter(text)
		if res.WasFiltered {
			fmt.Fprintf(os.Stderr, "FILTERED (%s)\n", res.Reason)
		}
		fmt.Println(res.Filtered)
		return nil
	}

	res := sanitize.Sanitize(text)
	if res.Rejected {
		if res.InjectionDetected {
			fmt.Fprintln(os.Stderr, "REJECTED: injection detected")
		} else {
			fmt.Fprintln(os.Stderr, "REJECTED: invalid input")
		}
		os.Exit(1)
	}
	if res.WasModified {
		fmt.Fprintln(os.Stderr, "modified during sanitization")
	}
	fmt.Println(res.Sanitized)
	return nil
}
