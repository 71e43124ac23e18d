package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a Config for structural and semantic errors. It returns a
// slice of all validation errors found (empty if valid).
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	if cfg.Workflow.MaxFixAttempts < 0 {
		errs = append(errs, ValidationError{
			Field:   "workflow.max_fix_attempts",
			Message: "must not be negative",
		})
	}

	if cfg.Workflow.ToolTimeout != "" {
		if d, err := time.ParseDuration(cfg.Workflow.ToolTimeout); err != nil {
			errs = append(errs, ValidationError{
				Field:   "workflow.tool_timeout",
				Message: fmt.Sprintf("invalid duration %q", cfg.Workflow.ToolTimeout),
			})
		} else if d <= 0 {
			errs = append(errs, ValidationError{
				Field:   "workflow.tool_timeout",
				Message: "must be positive",
			})
		}
	}

	for i, dir := range cfg.Workflow.ExcludeDirs {
		if strings.ContainsRune(dir, '/') {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("workflow.exclude_dirs[%d]", i),
				Message: fmt.Sprintf("%q must be a bare directory name, not a path", dir),
			})
		}
	}

	for _, tool := range []struct{ field, value string }{
		{"tools.terraform", cfg.Tools.Terraform},
		{"tools.tflint", cfg.Tools.TFLint},
		{"tools.checkov", cfg.Tools.Checkov},
		{"tools.hadolint", cfg.Tools.Hadolint},
		{"tools.docker", cfg.Tools.Docker},
		{"tools.helm", cfg.Tools.Helm},
	} {
		if tool.value == "" {
			errs = append(errs, ValidationError{Field: tool.field, Message: "is required"})
		}
	}

	if cfg.DB.URL != "" && !strings.HasPrefix(cfg.DB.URL, "postgres://") && !strings.HasPrefix(cfg.DB.URL, "postgresql://") {
		errs = append(errs, ValidationError{
			Field:   "db.url",
			Message: "must be a postgres:// connection URL",
		})
	}

	return errs
}
