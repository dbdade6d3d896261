package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at release time.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the jobradar version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("jobradar", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
