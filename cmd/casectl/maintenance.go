package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Re-embed the corpus, replacing the cached matrix",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Reindex(cmd.Context()); err != nil {
			return fmt.Errorf("reindex failed: %w", err)
		}
		cmd.Printf("Re-embedded %d cases\n", c.Len())
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load the corpus into the Qdrant collection",
	Long: `Chunks every case, embeds the chunks and upserts them into the
collection configured under vectordb. Points get fresh ids, so running
ingest twice duplicates the collection contents.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		rep, err := c.Ingest(cmd.Context())
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		cmd.Printf("Ingested %d cases as %d chunks (%d dimensions)\n", rep.Cases, rep.Chunks, rep.Dimensions)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(ingestCmd)
}
