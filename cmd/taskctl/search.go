package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"task-search-backend/internal/client"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find your tasks by meaning",
	Long: `Search ranks your tasks by semantic similarity to the query.
At most five tasks with a similarity of 0.7 or more are returned.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	res, err := c.SmartSearch(cmd.Context(), accessToken, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	printResults(cmd.OutOrStdout(), res)
	return nil
}

func printResults(w io.Writer, res client.SearchResult) {
	if len(res.Results) == 0 {
		fmt.Fprintf(w, "No tasks match %q\n", res.Query)
		return
	}

	fmt.Fprintf(w, "Tasks matching %q:\n", res.Query)
	for i, t := range res.Results {
		fmt.Fprintf(w, "%d. %s [%s, %s] %.0f%%\n", i+1, t.Title, t.Priority, t.Status, t.Similarity*100)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
