package main

import (
	"fmt"
	"strings"

	"github.com/nexsupply/nexi"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of nexi",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "nexi version %s\n", strings.TrimSpace(nexi.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
