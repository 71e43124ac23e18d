package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/runstore"
	"github.com/lucasnoah/driftgate/internal/toolrun"
	"github.com/lucasnoah/driftgate/internal/workflow"
)

var runCmd = &cobra.Command{
	Use:   "run <path> [path...]",
	Short: "Run the full validate → fix → release workflow",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		maxFix := cfg.Workflow.MaxFixAttempts
		if cmd.Flags().Changed("max-fix-attempts") {
			maxFix, _ = cmd.Flags().GetInt("max-fix-attempts")
		}

		logger, err := newLogger()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer logger.Sync()

		events, closeEvents, err := openEventLog(cfg)
		if err != nil {
			// The event log is observability, not correctness.
			logger.Warn(fmt.Sprintf("event log unavailable, continuing without it: %v", err))
			events = nil
		}
		defer closeEvents()

		runs, err := runstore.DefaultStore()
		if err != nil {
			logger.Warn(fmt.Sprintf("run history unavailable, continuing without it: %v", err))
			runs = nil
		}

		engine := workflow.New(cfg, &toolrun.ExecRunner{}, events, runs, logger, workflow.Options{
			MaxFixAttempts: maxFix,
			DryRun:         dryRun,
		})

		state, err := engine.Run(args)
		if err != nil {
			return fmt.Errorf("run workflow: %w", err)
		}

		printSummary(cmd, state)
		if state.Status != workflow.StatusSuccess {
			return fmt.Errorf("workflow %s: %s", state.Status, state.ErrorMessage)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Int("max-fix-attempts", 3, "per-category fix budget before the workflow gives up")
	runCmd.Flags().Bool("dry-run", false, "stop before the release stage; validation and fixes still run")
}

// printSummary renders the final result object.
func printSummary(cmd *cobra.Command, state *workflow.State) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run:                  %s\n", state.RunID)
	fmt.Fprintf(w, "Status:               %s\n", state.Status)
	fmt.Fprintf(w, "Docker images built:  %s\n", orNone(state.DockerImagesBuilt))
	fmt.Fprintf(w, "Helm charts released: %s\n", orNone(state.HelmChartsReleased))
	fmt.Fprintf(w, "Terraform applied:    %t\n", state.TerraformApplied)
	if len(state.FilesFixed) > 0 {
		fmt.Fprintf(w, "Files fixed:          %s\n", strings.Join(state.FilesFixed, ", "))
	}
	for _, c := range discover.Categories() {
		if res, ok := state.ReleaseResults[c]; ok {
			detail := ""
			if res.Detail != "" {
				detail = " (" + res.Detail + ")"
			}
			fmt.Fprintf(w, "Release %-10s    %s%s\n", c+":", res.Status, detail)
		}
	}
	if state.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:                %s\n", state.ErrorMessage)
	}
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
