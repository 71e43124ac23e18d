package release

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Docker builds a timestamp-tagged image per Dockerfile and returns the
// stage result plus the tags that built cleanly.
func (p *Pipeline) Docker(files []string) (Result, []string) {
	if len(files) == 0 {
		p.log.Info("no docker files to release")
		return Skipped(""), nil
	}

	timestamp := time.Now().Format("20060102_150405")
	var built []string

	for _, dockerfile := range files {
		dir := filepath.Dir(dockerfile)
		if dir == "" {
			dir = "."
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}
		tag := fmt.Sprintf("%s:%s", strings.ToLower(filepath.Base(abs)), timestamp)

		p.log.Info("building release image", zap.String("tag", tag))
		out := p.inv.Exec(dir, p.tools.Docker, "build", "-t", tag, ".")
		if out.OK {
			built = append(built, tag)
		} else {
			p.log.Warn("image build failed",
				zap.String("tag", tag), zap.String("error", out.ErrorText()))
		}
	}

	status := StatusSuccess
	if len(built) == 0 {
		status = StatusFailed
	}
	return Result{Status: status, Items: built}, built
}
