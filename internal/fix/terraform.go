package fix

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lucasnoah/driftgate/internal/config"
	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/toolrun"
	"github.com/lucasnoah/driftgate/internal/validate"
)

// requiredProvidersBlock is the placeholder inserted ahead of the first
// provider declaration when a file configures providers without pinning any.
const requiredProvidersBlock = `terraform {
  required_providers {
  }
}

`

// TerraformFixer formats affected directories and inserts missing
// required_providers blocks.
type TerraformFixer struct {
	inv   *toolrun.Invoker
	tools config.Tools
	log   *zap.Logger
}

func (f *TerraformFixer) Category() discover.Category { return discover.Terraform }

func (f *TerraformFixer) Fix(files []string, attempt *Attempt) Outcome {
	if attempt.Exhausted() {
		f.log.Info("terraform fix budget exhausted, skipping",
			zap.Int("used", attempt.Used), zap.Int("max", attempt.Max))
		return Outcome{}
	}
	if len(files) == 0 {
		return Outcome{}
	}

	var fixed []string
	for _, dir := range validate.DirsOf(files) {
		f.log.Info("formatting terraform directory", zap.String("dir", dir))
		out := f.inv.Exec(dir, f.tools.Terraform, "fmt", "-recursive")
		if !out.OK {
			f.log.Warn("terraform fmt failed", zap.String("dir", dir), zap.String("error", out.ErrorText()))
		}

		for _, tf := range tfFilesUnder(dir) {
			changed, err := f.ensureRequiredProviders(tf)
			if err != nil {
				f.log.Warn("required_providers fix failed", zap.String("file", tf), zap.Error(err))
				continue
			}
			if changed {
				fixed = append(fixed, tf)
			}
		}
	}

	attempt.consume()
	return Outcome{FilesFixed: fixed, Applied: true}
}

// ensureRequiredProviders inserts a placeholder required_providers block
// before the first provider declaration when the file declares providers
// but pins none. Returns whether the file was rewritten.
func (f *TerraformFixer) ensureRequiredProviders(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	content := string(data)

	if strings.Contains(content, "required_providers") {
		return false, nil
	}

	lines := strings.Split(content, "\n")
	insertAt := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "provider ") || strings.HasPrefix(strings.TrimSpace(line), "provider\"") {
			insertAt = i
			break
		}
	}
	if insertAt < 0 {
		return false, nil
	}

	var b strings.Builder
	for i, line := range lines {
		if i == insertAt {
			b.WriteString(requiredProvidersBlock)
		}
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// tfFilesUnder collects every .tf file under dir, skipping the .terraform
// plugin cache.
func tfFilesUnder(dir string) []string {
	var files []string
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".terraform" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tf") {
			files = append(files, path)
		}
		return nil
	})
	return files
}
