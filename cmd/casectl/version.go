package main

import (
	"github.com/spf13/cobra"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("casectl version %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
