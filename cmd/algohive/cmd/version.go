package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the algohive CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("algohive version %s\n", version)
		fmt.Println("Trading strategy performance metrics engine")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
