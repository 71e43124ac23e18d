package fix

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/dockerfile"
)

// DockerFixer rewrites stale base-image tags and inserts the WORKDIR and
// USER instructions hadolint-style policies expect.
type DockerFixer struct {
	log *zap.Logger
}

func (f *DockerFixer) Category() discover.Category { return discover.Docker }

func (f *DockerFixer) Fix(files []string, attempt *Attempt) Outcome {
	if attempt.Exhausted() {
		f.log.Info("docker fix budget exhausted, skipping",
			zap.Int("used", attempt.Used), zap.Int("max", attempt.Max))
		return Outcome{}
	}
	if len(files) == 0 {
		return Outcome{}
	}

	var fixed []string
	for _, path := range files {
		changed, err := f.fixDockerfile(path)
		if err != nil {
			f.log.Warn("dockerfile fix failed", zap.String("file", path), zap.Error(err))
			continue
		}
		if changed {
			f.log.Info("fixed dockerfile", zap.String("file", path))
			fixed = append(fixed, path)
		}
	}

	attempt.consume()
	return Outcome{FilesFixed: fixed, Applied: true}
}

// fixDockerfile applies all docker heuristics to one file and reports
// whether it was rewritten.
func (f *DockerFixer) fixDockerfile(path string) (bool, error) {
	info, err := dockerfile.Parse(path)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	content := string(data)
	lines := strings.Split(content, "\n")

	var out []string
	workdirInserted := false
	userInserted := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)

		if strings.HasPrefix(upper, "FROM ") {
			fields := strings.Fields(trimmed)
			if len(fields) > 1 {
				if updated := dockerfile.SuggestBaseImage(fields[1]); updated != fields[1] {
					fields[1] = updated
					line = strings.Join(fields, " ")
				}
			}
			out = append(out, line)
			if !info.HasWorkdir && !workdirInserted {
				out = append(out, "WORKDIR /app")
				workdirInserted = true
			}
			continue
		}

		if !info.HasUser && !userInserted &&
			(strings.HasPrefix(upper, "CMD") || strings.HasPrefix(upper, "ENTRYPOINT")) {
			out = append(out, "USER app")
			userInserted = true
		}

		out = append(out, line)
	}

	rewritten := strings.Join(out, "\n")
	if rewritten == content {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(rewritten), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
