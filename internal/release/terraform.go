package release

import (
	"go.uber.org/zap"

	"github.com/lucasnoah/driftgate/internal/validate"
)

// Terraform plans and applies each distinct terraform directory. Unlike the
// other stages this one is fail-fast: the first directory whose plan or
// apply fails aborts the stage and the remaining directories are not
// attempted.
func (p *Pipeline) Terraform(files []string) (Result, bool) {
	if len(files) == 0 {
		p.log.Info("no terraform directories to release")
		return Skipped(""), false
	}

	applied := false
	for _, dir := range validate.DirsOf(files) {
		p.log.Info("planning terraform directory", zap.String("dir", dir))
		out := p.inv.Exec(dir, p.tools.Terraform, "plan", "-out=tfplan")
		if !out.OK {
			p.log.Warn("terraform plan failed",
				zap.String("dir", dir), zap.String("error", out.ErrorText()))
			return Result{Status: StatusFailed, Detail: out.ErrorText()}, applied
		}

		p.log.Info("applying terraform directory", zap.String("dir", dir))
		out = p.inv.Exec(dir, p.tools.Terraform, "apply", "-auto-approve", "tfplan")
		if !out.OK {
			p.log.Warn("terraform apply failed",
				zap.String("dir", dir), zap.String("error", out.ErrorText()))
			return Result{Status: StatusFailed, Detail: out.ErrorText()}, applied
		}
		applied = true
	}

	return Result{Status: StatusSuccess}, applied
}
