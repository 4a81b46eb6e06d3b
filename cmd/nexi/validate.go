package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nexsupply/nexi/pkg/compliance"
	"github.com/nexsupply/nexi/pkg/flow"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a flow definition and a blacklist dataset",
	Long: `Parses the flow file (or the embedded sourcing graph) and reports broken
transitions, conditions and unreachable nodes. With --blacklist, the
dataset is parsed as well.`,
	Run: func(cmd *cobra.Command, args []string) {
		flowPath, _ := cmd.Flags().GetString("flow")
		blacklistPath, _ := cmd.Flags().GetString("blacklist")
		if err := runValidate(cmd.OutOrStdout(), flowPath, blacklistPath); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("flow", "", "Flow definition file (defaults to the embedded sourcing graph)")
	validateCmd.Flags().String("blacklist", "", "Blacklist dataset (.json or .csv)")
}

func runValidate(w io.Writer, flowPath, blacklistPath string) error {
	g, err := loadGraph(flowPath)
	if err != nil {
		return err
	}
	if err := flow.Validate(g); err != nil {
		return err
	}
	for _, id := range flow.Unreachable(g) {
		fmt.Fprintf(w, "warning: node %q is unreachable from %q\n", id, g.Start())
	}
	fmt.Fprintf(w, "Graph is valid: %d nodes, start %q\n", len(g.IDs()), g.Start())

	if blacklistPath == "" {
		return nil
	}
	entries, err := compliance.LoadFile(blacklistPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Blacklist is valid: %d entries\n", len(entries))
	return nil
}
