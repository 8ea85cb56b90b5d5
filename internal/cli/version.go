package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the guestgate version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}
