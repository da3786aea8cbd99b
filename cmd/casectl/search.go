package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	consultancy "github.com/maryamnawas03/consultancy-AI-agent/pkg/sdk"
)

var (
	searchMode string
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Rank cases for a query",
	Long: `Ranks the corpus for a query and prints the matching cases with scores.
Modes: hybrid (default), semantic, lexical, vector.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", consultancy.ModeHybrid, "search mode")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	c, err := openClient(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	results, err := c.Search(cmd.Context(), args[0],
		consultancy.Mode(searchMode), consultancy.TopK(searchTopK))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i := range results {
		r := &results[i]
		cmd.Printf("  [%d] %s  %s (%.3f, %s)\n", i+1, r.Case.ID, r.Case.Title, r.Score, r.Method)
		if r.Case.Tags != "" {
			cmd.Printf("      Tags: %s\n", r.Case.Tags)
		}
	}
	return nil
}
