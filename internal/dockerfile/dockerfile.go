// Package dockerfile provides the line-level Dockerfile inspection the
// docker fixer relies on. It is deliberately not a full Dockerfile parser:
// the fixer only needs instruction presence and the base image reference.
package dockerfile

import (
	"fmt"
	"os"
	"strings"
)

// Info summarises the instructions present in a Dockerfile.
type Info struct {
	BaseImage      string
	ExposedPorts   []string
	HasWorkdir     bool
	HasUser        bool
	HasHealthcheck bool
}

// Parse reads and summarises a Dockerfile.
func Parse(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	info := &Info{}
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		fields := strings.Fields(line)
		switch {
		case hasInstruction(line, "FROM"):
			if len(fields) > 1 {
				info.BaseImage = fields[1]
			}
		case hasInstruction(line, "EXPOSE"):
			info.ExposedPorts = append(info.ExposedPorts, fields[1:]...)
		case hasInstruction(line, "WORKDIR"):
			info.HasWorkdir = true
		case hasInstruction(line, "USER"):
			info.HasUser = true
		case hasInstruction(line, "HEALTHCHECK"):
			info.HasHealthcheck = true
		}
	}
	return info, nil
}

// hasInstruction matches a Dockerfile instruction keyword at the start of a
// trimmed line, case-insensitively.
func hasInstruction(line, keyword string) bool {
	upper := strings.ToUpper(line)
	return upper == keyword || strings.HasPrefix(upper, keyword+" ")
}

// baseImageUpdates pins known-stale base tags to current LTS-ish releases.
// Matching is substring-based over the FROM argument so that registry
// prefixes still match.
var baseImageUpdates = []struct{ old, new string }{
	{"python:3.8", "python:3.11-slim"},
	{"python:3.9", "python:3.11-slim"},
	{"python:3.10", "python:3.11-slim"},
	{"node:14", "node:20-alpine"},
	{"node:16", "node:20-alpine"},
	{"node:18", "node:20-alpine"},
	{"ubuntu:18.04", "ubuntu:22.04"},
	{"ubuntu:20.04", "ubuntu:22.04"},
	{"alpine:3.12", "alpine:3.18"},
	{"alpine:3.14", "alpine:3.18"},
	{"alpine:3.16", "alpine:3.18"},
}

// SuggestBaseImage returns the pinned replacement for a stale base image,
// or the input unchanged when no substitution applies.
func SuggestBaseImage(current string) string {
	for _, u := range baseImageUpdates {
		if strings.Contains(current, u.old) {
			return u.new
		}
	}
	return current
}
