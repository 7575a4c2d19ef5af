package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/zjrosen/runmanager/internal/domain/dataset"
	"github.com/zjrosen/runmanager/internal/presentation"
)

var (
	batchRatio  float64
	batchRuns   []string
	batchFormat string
)

var batchSizeCmd = &cobra.Command{
	Use:   "batchsize",
	Short: "Report the largest batch size the collection supports",
	Long: `Report, per configured run, the largest batch size every dataset can fill:
floor(min_trials / (train_to_test_ratio + 1)).

Runs whose configured batch size exceeds the maximum are marked infeasible.

Examples:
  # Every configured run
  runmanager batchsize

  # Selected runs (repeatable)
  runmanager batchsize --run baseline

  # An ad-hoc ratio
  runmanager batchsize --ratio 4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := presentation.ParseFormat(batchFormat)
		if err != nil {
			return err
		}

		var runs []dataset.RunParams
		if cmd.Flags().Changed("ratio") {
			runs = []dataset.RunParams{{TrainToTestRatio: batchRatio}}
		} else {
			runs, err = cfg.RunParams(batchRuns...)
			if err != nil {
				return err
			}
		}
		if len(runs) == 0 {
			return errors.New("no runs configured; pass --ratio")
		}

		svc, err := openService(nil)
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		results, err := svc.BatchSizes(cmd.Context(), runs)
		if err != nil {
			return err
		}

		dtos := make([]presentation.BatchSizeDTO, len(results))
		for i, r := range results {
			dtos[i] = presentation.NewBatchSizeDTO(r.Run, r.Ratio, r.Configured, r.MaxBatchSize, r.MinTrials)
		}
		return presentation.NewFormatter(cmd.OutOrStdout(), format).FormatBatchSizes(dtos)
	},
}

func init() {
	batchSizeCmd.Flags().Float64Var(&batchRatio, "ratio", 0, "Train/test ratio to evaluate instead of the configured runs")
	batchSizeCmd.Flags().StringArrayVarP(&batchRuns, "run", "r", nil, "Run to report (repeatable; default: all configured runs)")
	batchSizeCmd.Flags().StringVarP(&batchFormat, "format", "f", "table", "Output format: table or json")
	rootCmd.AddCommand(batchSizeCmd)
}
