package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lucasnoah/driftgate/internal/config"
	"github.com/lucasnoah/driftgate/internal/db"
	"github.com/lucasnoah/driftgate/internal/workflow"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "driftgate",
	Short: "driftgate — validate, remediate, and release infrastructure-as-code",
	Long: `driftgate discovers Terraform, Dockerfile, and Helm sources under the given
paths, validates them with the standard toolchain (terraform validate, tflint,
checkov, hadolint, docker build, helm lint/template), applies bounded
automatic fixes, and releases once everything passes.

Run history lives in ~/.driftgate/runs/ (JSON); events go to a local SQLite
database unless db.url points the log at Postgres.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a driftgate config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the configured or default config file.
func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	return config.LoadDefault()
}

// newLogger builds the zap logger shared by all commands. Logs go to
// stderr so that stdout stays parseable.
func newLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stderr"}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

// openEventLog opens the configured event-log backend. The cleanup func is
// always safe to call.
func openEventLog(cfg *config.Config) (workflow.EventLog, func(), error) {
	if cfg.DB.URL != "" {
		pg, err := db.OpenPostgres(context.Background(), cfg.DB.URL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("open postgres event log: %w", err)
		}
		return pg, pg.Close, nil
	}

	d, err := db.Open(cfg.DB.Path)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open event log: %w", err)
	}
	if err := d.Migrate(); err != nil {
		d.Close()
		return nil, func() {}, fmt.Errorf("migrate event log: %w", err)
	}
	return d, func() { d.Close() }, nil
}
