package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/schemable"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of schemable",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "schemable version %s\n", schemable.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
