package main

import (
	"fmt"
	"os"

	"github.com/nexsupply/nexi/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [flow.yaml]",
	Short: "Export the question graph as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the question graph. With
--conversation, the path of a stored conversation is highlighted.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		g, err := loadGraph(path)
		if err != nil {
			fmt.Printf("Error loading graph: %v\n", err)
			os.Exit(1)
		}

		var overlay *graph.Overlay
		if id, _ := cmd.Flags().GetString("conversation"); id != "" {
			cfg, logger, err := setup(cmd)
			if err != nil {
				fmt.Printf("Error loading configuration: %v\n", err)
				os.Exit(1)
			}
			st, err := openStorage(cmd.Context(), cfg, logger)
			if err != nil {
				fmt.Printf("Error opening storage: %v\n", err)
				os.Exit(1)
			}
			defer st.Close()

			state, err := st.store.Load(cmd.Context(), id)
			if err != nil {
				fmt.Printf("Error loading conversation '%s': %v\n", id, err)
				os.Exit(1)
			}
			overlay = graph.OverlayFor(state)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("conversation", "", "Highlight the path of a stored conversation")
}
