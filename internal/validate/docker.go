package validate

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lucasnoah/driftgate/internal/config"
	"github.com/lucasnoah/driftgate/internal/discover"
	"github.com/lucasnoah/driftgate/internal/toolrun"
)

// throwawayTag names the image built purely to prove the Dockerfile builds.
// It is removed again after a successful build.
const throwawayTag = "driftgate-validate"

// DockerValidator lints each Dockerfile and test-builds its directory.
type DockerValidator struct {
	inv   *toolrun.Invoker
	tools config.Tools
	log   *zap.Logger
}

func (v *DockerValidator) Category() discover.Category { return discover.Docker }

func (v *DockerValidator) Validate(files []string) []Result {
	results := []Result{}
	if len(files) == 0 {
		v.log.Info("no docker files to validate")
		return results
	}

	for _, dockerfile := range files {
		v.log.Info("validating dockerfile", zap.String("file", dockerfile))
		dir := filepath.Dir(dockerfile)
		if dir == "" {
			dir = "."
		}

		out := v.inv.Exec("", v.tools.Hadolint, dockerfile)
		warnings := []string{}
		if !out.OK {
			warnings = []string{out.Stdout}
		}
		results = append(results, Result{
			FilePath: dockerfile,
			Tool:     "hadolint",
			Passed:   out.OK,
			Errors:   failErrors(out.OK, out),
			Warnings: warnings,
		})

		out = v.inv.Exec(dir, v.tools.Docker, "build", "--no-cache", "-t", throwawayTag, ".")
		results = append(results, Result{
			FilePath: dockerfile,
			Tool:     "docker_build",
			Passed:   out.OK,
			Errors:   failErrors(out.OK, out),
			Warnings: []string{},
		})

		if out.OK {
			v.inv.Exec(dir, v.tools.Docker, "rmi", throwawayTag)
		}
	}
	return results
}
