package main

import (
	"fmt"

	"github.com/aretw0/pathflow/internal/presentation/tui"
	"github.com/aretw0/pathflow/internal/script"
	"github.com/spf13/cobra"
)

// runCmd replays a script headless.
var runCmd = &cobra.Command{
	Use:   "run <script.yaml>",
	Short: "Replay a scripted editing session",
	Long: `Loads the model fixture, replays every step of the script against the
command flows and prints the outcome of each step. Exits non-zero when a step
does not match its expectation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		sc, err := script.Load(args[0])
		if err != nil {
			return err
		}
		modelPath := cfg.Model
		if sc.Model != "" && !cmd.Flags().Changed("model") {
			modelPath = sc.Model
		}

		s, _, err := newSession(cfg, modelPath, logger)
		if err != nil {
			return err
		}

		printer := tui.NewPrinter(cmd.OutOrStdout())
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			printer.Banner()
		}

		runner := script.NewRunner(s.Harness(), s.History(), script.WithLogger(logger))
		outcomes, runErr := runner.Run(cmd.Context(), sc)
		for _, o := range outcomes {
			printer.Outcome(o)
		}
		printer.Summary(len(outcomes), runErr)

		if runErr != nil {
			return fmt.Errorf("replay failed: %w", runErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
