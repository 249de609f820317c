package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/voxgate/voxgate/internal/core"
	"github.com/voxgate/voxgate/internal/observability"
	"github.com/voxgate/voxgate/internal/output"
)

var languagesOutput string

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported transcription languages",
	Long:  "List the language codes and names the transcription engine accepts.",
	Run: func(cmd *cobra.Command, args []string) {
		format, err := output.ParseFormat(languagesOutput)
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Invalid output format", err)
			return
		}

		rendered, err := output.FormatLanguages(format, core.SupportedLanguages())
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Failed to render languages", err)
			return
		}

		fmt.Println(rendered)
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)

	languagesCmd.Flags().StringVarP(&languagesOutput, "output", "o", "table", "output format (table, json)")
}
