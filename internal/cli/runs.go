package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/driftgate/internal/runstore"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect workflow run history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded workflow runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := runstore.DefaultStore()
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}

		runs, err := store.List()
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-38s %-10s %-22s %s\n", "RUN", "STATUS", "STARTED", "ERROR")
		fmt.Fprintf(w, "%-38s %-10s %-22s %s\n",
			strings.Repeat("-", 38),
			strings.Repeat("-", 10),
			strings.Repeat("-", 22),
			strings.Repeat("-", 5))
		for _, r := range runs {
			fmt.Fprintf(w, "%-38s %-10s %-22s %s\n", r.RunID, r.Status, r.StartedAt, r.ErrorMessage)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the full JSON record of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := runstore.DefaultStore()
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}

		data, err := store.Raw(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}
