package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/runmanager/internal/config"
	"github.com/zjrosen/runmanager/internal/launcher"
	"github.com/zjrosen/runmanager/internal/paths"
)

var (
	commandRun  string
	commandExec bool
)

var runCommandCmd = &cobra.Command{
	Use:   "run:command",
	Short: "Build the training command line for a run",
	Long: `Build the training command for a configured run over the collection.

The command is printed by default. With --exec it is run in the foreground
and its output streamed; runmanager exits when it does.

Examples:
  runmanager run:command --run baseline
  runmanager run:command --run baseline --exec`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if commandRun == "" {
			return errors.New("--run is required")
		}
		run, ok := cfg.Run(commandRun)
		if !ok {
			return fmt.Errorf("%w: %s", config.ErrUnknownRun, commandRun)
		}

		svc, err := openService(nil)
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		if err := svc.LoadInfo(cmd.Context(), false); err != nil {
			return err
		}

		builder := launcher.Builder{
			Program:   cfg.Launch.Program,
			Script:    cfg.Launch.Script,
			OutputDir: paths.ExpandHome(cfg.Launch.OutputDir),
			WorkDir:   paths.ExpandHome(cfg.Launch.WorkDir),
			Args:      cfg.Launch.Args,
		}
		command, err := builder.Build(svc.Collection(), run.Params(), run.Args)
		if err != nil {
			return err
		}

		if !commandExec {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), command.String())
			return err
		}
		return command.Run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	runCommandCmd.Flags().StringVarP(&commandRun, "run", "r", "", "Configured run name")
	runCommandCmd.Flags().BoolVar(&commandExec, "exec", false, "Run the command instead of printing it")
	rootCmd.AddCommand(runCommandCmd)
}
