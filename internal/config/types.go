package config

// Config is the top-level configuration structure parsed from driftgate YAML.
type Config struct {
	Workflow Workflow `yaml:"workflow"`
	Tools    Tools    `yaml:"tools"`
	DB       DB       `yaml:"db"`
}

// Workflow holds the knobs of the validate/fix/release loop.
type Workflow struct {
	MaxFixAttempts int      `yaml:"max_fix_attempts"`
	ToolTimeout    string   `yaml:"tool_timeout"`
	DistDir        string   `yaml:"dist_dir"`
	ExcludeDirs    []string `yaml:"exclude_dirs"`
}

// Tools maps each external tool to the binary name or path to invoke.
// Overriding these is how air-gapped environments point at wrappers.
type Tools struct {
	Terraform string `yaml:"terraform"`
	TFLint    string `yaml:"tflint"`
	Checkov   string `yaml:"checkov"`
	Hadolint  string `yaml:"hadolint"`
	Docker    string `yaml:"docker"`
	Helm      string `yaml:"helm"`
}

// DB configures the event log. Path is the local SQLite file; when URL is
// set it takes precedence and events go to Postgres instead.
type DB struct {
	Path string `yaml:"path"`
	URL  string `yaml:"url"`
}
