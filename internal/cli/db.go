package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/driftgate/internal/db"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the workflow event log",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the event log schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if cfg.DB.URL != "" {
			pg, err := db.OpenPostgres(context.Background(), cfg.DB.URL)
			if err != nil {
				return err
			}
			pg.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Postgres event log ready.")
			return nil
		}

		d, err := db.Open(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.Migrate(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Event log ready at %s\n", cfg.DB.Path)
		return nil
	},
}

var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and re-create the local event log",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.DB.URL != "" {
			return fmt.Errorf("refusing to reset a shared postgres event log")
		}

		d, err := db.Open(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Event log reset.")
		return nil
	},
}

// eventLister is implemented by both event-log backends.
type eventLister interface {
	ListWorkflowEvents(runID string) ([]db.WorkflowEvent, error)
}

var dbEventsCmd = &cobra.Command{
	Use:   "events [run-id]",
	Short: "List workflow events, optionally for a single run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		runID := ""
		if len(args) == 1 {
			runID = args[0]
		}

		var lister eventLister
		if cfg.DB.URL != "" {
			pg, err := db.OpenPostgres(context.Background(), cfg.DB.URL)
			if err != nil {
				return err
			}
			defer pg.Close()
			lister = pg
		} else {
			d, err := db.Open(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := d.Migrate(); err != nil {
				return err
			}
			lister = d
		}

		events, err := lister.ListWorkflowEvents(runID)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No events.")
			return nil
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-22s %-38s %-16s %-10s %s\n", "TIMESTAMP", "RUN", "EVENT", "CATEGORY", "DETAIL")
		fmt.Fprintf(w, "%-22s %-38s %-16s %-10s %s\n",
			strings.Repeat("-", 22),
			strings.Repeat("-", 38),
			strings.Repeat("-", 16),
			strings.Repeat("-", 10),
			strings.Repeat("-", 6))
		for _, e := range events {
			fmt.Fprintf(w, "%-22s %-38s %-16s %-10s %s\n", e.Timestamp, e.RunID, e.Event, e.Category, e.Detail)
		}
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbResetCmd)
	dbCmd.AddCommand(dbEventsCmd)
}
