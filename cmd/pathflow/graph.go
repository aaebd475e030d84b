package main

import (
	"fmt"

	"github.com/aretw0/pathflow/internal/commands"
	"github.com/aretw0/pathflow/internal/presentation/graph"
	"github.com/aretw0/pathflow/internal/runtime"
	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [flow]",
	Short: "Export the command step graphs",
	Long:  `Outputs a Mermaid diagram (graph TD) of the step graph of one command, or of every command.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := runtime.NewRegistry()
		if err := commands.Register(reg); err != nil {
			return err
		}

		if len(args) == 1 {
			flow, err := reg.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(flow.Name(), flow.Steps(), nil))
			return nil
		}

		steps := make(map[string][]domain.StepInfo)
		for _, f := range reg.Flows() {
			steps[f.Name()] = f.Steps()
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateAll(steps, reg.Names()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
