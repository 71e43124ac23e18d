package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/toolrun"
	"github.com/lucasnoah/driftgate/internal/watch"
	"github.com/lucasnoah/driftgate/internal/workflow"
)

var watchCmd = &cobra.Command{
	Use:   "watch <path> [path...]",
	Short: "Re-validate on file change until interrupted",
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
		walker := discover.NewWalker(logger, cfg.Workflow.ExcludeDirs)

		onChange := func() {
			state := engine.ValidateOnly(args)
			fmt.Fprintf(cmd.OutOrStdout(), "revalidated: %s (%d errors)\n",
				state.Status, state.TotalErrors())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Full pass up front so the first report does not wait for an edit.
		onChange()

		watcher := watch.New(args, walker, logger, onChange)
		return watcher.Run(ctx)
	},
}
