package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var conversationCmd = &cobra.Command{
	Use:     "conversation",
	Aliases: []string{"conv"},
	Short:   "Manage stored conversations",
	Long:    `List, inspect, and remove conversations in the configured store.`,
}

var conversationLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored conversations",
	Run: func(cmd *cobra.Command, args []string) {
		st := mustStorage(cmd)
		defer st.Close()

		ids, err := st.store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing conversations: %v\n", err)
			os.Exit(1)
		}
		if len(ids) == 0 {
			fmt.Println("No conversations found.")
			return
		}
		fmt.Println("Conversations:")
		for _, id := range ids {
			fmt.Println("- " + id)
		}
	},
}

var conversationInspectCmd = &cobra.Command{
	Use:   "inspect <conversation-id>",
	Short: "Print the state of a conversation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := mustStorage(cmd)
		defer st.Close()

		state, err := st.store.Load(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("Error loading conversation '%s': %v\n", args[0], err)
			os.Exit(1)
		}
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling state: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	},
}

var conversationRmCmd = &cobra.Command{
	Use:   "rm <conversation-id>...",
	Short: "Remove one or more conversations",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := mustStorage(cmd)
		defer st.Close()

		hasError := false
		for _, id := range args {
			if err := st.store.Delete(cmd.Context(), id); err != nil {
				fmt.Printf("Error removing '%s': %v\n", id, err)
				hasError = true
			} else {
				fmt.Printf("Removed conversation '%s'\n", id)
			}
		}
		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(conversationCmd)
	conversationCmd.AddCommand(conversationLsCmd)
	conversationCmd.AddCommand(conversationInspectCmd)
	conversationCmd.AddCommand(conversationRmCmd)
}

// mustStorage opens the configured store. In-memory storage is empty in a
// fresh process, so these commands are only useful against Redis.
func mustStorage(cmd *cobra.Command) *storage {
	cfg, logger, err := setup(cmd)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Redis.Enabled() {
		logger.Warn("NEXI_REDIS_ADDR is not set, listing an empty in-memory store")
	}
	st, err := openStorage(cmd.Context(), cfg, logger)
	if err != nil {
		fmt.Printf("Error opening storage: %v\n", err)
		os.Exit(1)
	}
	return st
}
