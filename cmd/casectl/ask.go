package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	consultancy "github.com/maryamnawas03/consultancy-AI-agent/pkg/sdk"
)

var askMode string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the closest cases",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		var opts []consultancy.SearchOption
		if askMode != "" {
			opts = append(opts, consultancy.Mode(askMode))
		}
		ans, err := c.Chat(cmd.Context(), "casectl", strings.Join(args, " "), opts...)
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}

		cmd.Println(ans.Text)
		cmd.Println()
		cmd.Printf("method=%s mode=%s trade=%s best_score=%.3f low_confidence=%t\n",
			ans.Method, ans.SearchMode, ans.Trade, ans.BestScore, ans.LowConfidence)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "", "search mode (default hybrid)")
	rootCmd.AddCommand(askCmd)
}
