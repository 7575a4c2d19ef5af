package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/runmanager/internal/config"
	"github.com/zjrosen/runmanager/internal/domain/dataset"
	"github.com/zjrosen/runmanager/internal/log"
	"github.com/zjrosen/runmanager/internal/presentation"
)

var (
	filterRuns      []string
	filterMinTrials int
	filterSave      bool
	filterDiff      bool
	filterFormat    string
)

var datasetsFilterCmd = &cobra.Command{
	Use:   "datasets:filter",
	Short: "Keep only datasets with enough trials for the given runs",
	Long: `Filter the collection to the datasets holding enough trials.

Without --run every configured run is used. A dataset is kept when it has at
least ceil(batch_size * (train_to_test_ratio + 1)) trials for every run.
--min-trials sets an explicit threshold, or raises the run threshold.

Examples:
  # Filter against every configured run
  runmanager datasets:filter

  # Filter against selected runs (repeatable)
  runmanager datasets:filter --run baseline --run large-batch

  # Explicit threshold, show what changed
  runmanager datasets:filter --min-trials 120 --diff

  # Persist the kept names into collection.datasets
  runmanager datasets:filter --run baseline --save`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := presentation.ParseFormat(filterFormat)
		if err != nil {
			return err
		}

		var runs []dataset.RunParams
		if len(filterRuns) > 0 || filterMinTrials <= 0 {
			runs, err = cfg.RunParams(filterRuns...)
			if err != nil {
				return err
			}
		}

		svc, err := openService(nil)
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		result, err := svc.Filter(cmd.Context(), runs, filterMinTrials)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if filterDiff {
			if _, err := fmt.Fprint(out, presentation.NameDiff(result.Before, result.After)); err != nil {
				return err
			}
		} else {
			formatter := presentation.NewFormatter(out, format)
			dto := presentation.NewFilterResultDTO(result.Threshold, result.Before, result.After)
			if err := formatter.FormatFilterResult(dto); err != nil {
				return err
			}
		}

		if !filterSave {
			return nil
		}
		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			return errors.New("--save needs a config file")
		}
		if err := config.SaveDatasets(configPath, result.After); err != nil {
			return fmt.Errorf("saving datasets: %w", err)
		}
		log.Info(log.CatConfig, "saved filtered datasets", "path", configPath, "kept", len(result.After))
		return nil
	},
}

func init() {
	datasetsFilterCmd.Flags().StringArrayVarP(&filterRuns, "run", "r", nil, "Run to filter for (repeatable; default: all configured runs)")
	datasetsFilterCmd.Flags().IntVar(&filterMinTrials, "min-trials", 0, "Explicit minimum trial count")
	datasetsFilterCmd.Flags().BoolVar(&filterSave, "save", false, "Write the kept names to collection.datasets in the config file")
	datasetsFilterCmd.Flags().BoolVar(&filterDiff, "diff", false, "Print a diff of the dataset list instead of the kept names")
	datasetsFilterCmd.Flags().StringVarP(&filterFormat, "format", "f", "table", "Output format: table or json")
	rootCmd.AddCommand(datasetsFilterCmd)
}
