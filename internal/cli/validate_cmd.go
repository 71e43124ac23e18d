package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/toolrun"
	"github.com/lucasnoah/driftgate/internal/workflow"
)

var validateCmd = &cobra.Command{
	Use:   "validate <path> [path...]",
	Short: "Validate discovered files without fixing or releasing",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := newLogger()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer logger.Sync()

		engine := workflow.New(cfg, &toolrun.ExecRunner{}, nil, nil, logger, workflow.Options{})
		state := engine.ValidateOnly(args)

		printValidation(cmd, state)
		if state.TotalErrors() > 0 {
			return fmt.Errorf("%d validation errors", state.TotalErrors())
		}
		return nil
	},
}

// printValidation renders per-category validation errors.
func printValidation(cmd *cobra.Command, state *workflow.State) {
	w := cmd.OutOrStdout()
	for _, c := range discover.Categories() {
		results := state.ValidationResults[c]
		errs := state.CollectedErrors[c]
		fmt.Fprintf(w, "%s: %d files, %d tool runs, %d errors\n",
			c, len(state.FilesByCategory[c]), len(results), len(errs))
		for _, line := range errs {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}
