package validate

import (
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/lucasnoah/driftgate/internal/config"
	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/toolrun"
)

// TerraformValidator groups .tf/.tfvars files by directory and runs
// terraform validate, tflint, and checkov per directory.
type TerraformValidator struct {
	inv   *toolrun.Invoker
	tools config.Tools
	log   *zap.Logger
}

func (v *TerraformValidator) Category() discover.Category { return discover.Terraform }

func (v *TerraformValidator) Validate(files []string) []Result {
	results := []Result{}
	if len(files) == 0 {
		v.log.Info("no terraform files to validate")
		return results
	}

	for _, dir := range DirsOf(files) {
		v.log.Info("validating terraform directory", zap.String("dir", dir))

		out := v.inv.Exec(dir, v.tools.Terraform, "validate")
		results = append(results, Result{
			FilePath: dir,
			Tool:     "terraform_validate",
			Passed:   out.OK,
			Errors:   failErrors(out.OK, out),
			Warnings: []string{},
		})

		out = v.inv.Exec(dir, v.tools.TFLint)
		warnings := []string{}
		if !out.OK {
			warnings = []string{out.Stdout}
		}
		results = append(results, Result{
			FilePath: dir,
			Tool:     "tflint",
			Passed:   out.OK,
			Errors:   failErrors(out.OK, out),
			Warnings: warnings,
		})

		out = v.inv.Exec(dir, v.tools.Checkov, "-d", ".", "--framework", "terraform", "--quiet")
		results = append(results, Result{
			FilePath: dir,
			Tool:     "checkov",
			Passed:   out.OK,
			Errors:   failErrors(out.OK, out),
			Warnings: []string{},
		})
	}
	return results
}

// DirsOf returns the sorted, deduplicated set of directories containing the
// given files.
func DirsOf(files []string) []string {
	set := make(map[string]bool)
	for _, f := range files {
		dir := filepath.Dir(f)
		if dir == "" {
			dir = "."
		}
		set[dir] = true
	}
	dirs := make([]string, 0, len(set))
	for dir := range set {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}
