package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/runmanager/internal/presentation"
)

var (
	infoFormat string
	infoReload bool
)

var datasetsInfoCmd = &cobra.Command{
	Use:   "datasets:info",
	Short: "Show the info table of every dataset in the collection",
	Long: `Load dataset info files and print one row per dataset.

Examples:
  # Table view
  runmanager datasets:info

  # Re-read every info file, bypassing the cache and index
  runmanager datasets:info --reload

  # JSON for scripting
  runmanager datasets:info --format json | jq '.[] | select(.n_trials < 100)'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := presentation.ParseFormat(infoFormat)
		if err != nil {
			return err
		}

		svc, err := openService(progressTo(cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		if err := svc.LoadInfo(cmd.Context(), infoReload); err != nil {
			return err
		}
		rows, err := svc.InfoTable(cmd.Context())
		if err != nil {
			return err
		}

		formatter := presentation.NewFormatter(cmd.OutOrStdout(), format)
		return formatter.FormatDatasets(presentation.FromInfoRows(rows))
	},
}

func init() {
	datasetsInfoCmd.Flags().StringVarP(&infoFormat, "format", "f", "table", "Output format: table or json")
	datasetsInfoCmd.Flags().BoolVar(&infoReload, "reload", false, "Re-read every info file")
	rootCmd.AddCommand(datasetsInfoCmd)
}
