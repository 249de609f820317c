package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/voxgate/voxgate/internal/observability"
	"github.com/voxgate/voxgate/internal/output"
)

var (
	historyLimit  int
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent transcription history",
	Long: `Show the most recent transcription requests recorded by the server.

Requires the history store to be enabled (store.enabled: true).`,
	Run: func(cmd *cobra.Command, args []string) {
		format, err := output.ParseFormat(historyOutput)
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Invalid output format", err)
			return
		}

		if historyLimit < 1 || historyLimit > 500 {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Limit must be between 1 and 500",
				fmt.Errorf("limit %d out of range", historyLimit))
			return
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to open history store", err)
			return
		}
		defer func() { _ = db.Close() }()

		records, err := db.RecentTranscriptions(cmd.Context(), historyLimit)
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Failed to read history", err)
			return
		}

		rendered, err := output.FormatHistory(format, records)
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Failed to render history", err)
			return
		}

		fmt.Println(rendered)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum records to show (1-500)")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "table", "output format (table, json)")
}
