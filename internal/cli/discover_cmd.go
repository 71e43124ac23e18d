package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/dockerfile"
	"github.com/lucasnoah/driftgate/internal/helmchart"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <path> [path...]",
	Short: "List discovered infrastructure-as-code files by category",
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

		walker := discover.NewWalker(logger, cfg.Workflow.ExcludeDirs)
		files := walker.Walk(args)

		w := cmd.OutOrStdout()
		total := 0
		for _, c := range discover.Categories() {
			fmt.Fprintf(w, "%s (%d):\n", c, len(files[c]))
			for _, f := range files[c] {
				fmt.Fprintf(w, "  %s%s\n", f, fileNote(c, f))
			}
			if c == discover.Helm {
				printChartGaps(w, files[c])
			}
			total += len(files[c])
		}
		if total == 0 {
			fmt.Fprintln(w, "No infrastructure-as-code files found.")
		}
		return nil
	},
}

// fileNote annotates a discovered file with quick metadata where we have a
// parser for it.
func fileNote(c discover.Category, path string) string {
	if c != discover.Docker {
		return ""
	}
	info, err := dockerfile.Parse(path)
	if err != nil || info.BaseImage == "" {
		return ""
	}
	return fmt.Sprintf("  (base: %s)", info.BaseImage)
}

// printChartGaps flags charts whose Chart.yaml is missing required fields,
// so a discover pass surfaces what helm lint would later reject.
func printChartGaps(w io.Writer, files []string) {
	for _, chartDir := range helmchart.ResolveRoots(files) {
		meta, err := helmchart.Read(chartDir)
		if err != nil {
			continue
		}
		if missing := helmchart.MissingFields(meta); len(missing) > 0 {
			fmt.Fprintf(w, "  ! %s missing %s\n", chartDir, strings.Join(missing, ", "))
		}
	}
}
