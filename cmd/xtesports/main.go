package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Version: "indev",
	Use:     "xtesports",
	Short:   "Runs the XT Esports tournament registration site",
}

func main() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(createAdminCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
