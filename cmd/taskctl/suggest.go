package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [task title]",
	Short: "Suggest subtasks for a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	subtasks, err := c.SuggestSubtasks(cmd.Context(), accessToken, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), map[string][]string{"subtasks": subtasks})
	}
	printSubtasks(cmd.OutOrStdout(), subtasks)
	return nil
}

func printSubtasks(w io.Writer, subtasks []string) {
	for _, s := range subtasks {
		fmt.Fprintf(w, "- %s\n", s)
	}
}
