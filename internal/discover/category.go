package discover

import "strings"

// Category is one of the three infrastructure-as-code file classes the
// workflow knows about. The set is closed: every switch over Category
// handles all three values and rejects anything else.
type Category string

const (
	Terraform Category = "terraform"
	Docker    Category = "docker"
	Helm      Category = "helm"
)

// Categories returns all categories in their fixed iteration order.
// Decision checks, fixer chains and report tables all use this order.
func Categories() []Category {
	return []Category{Terraform, Docker, Helm}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case Terraform, Docker, Helm:
		return true
	}
	return false
}

// Classify assigns a file path to at most one category. First match wins,
// in the order terraform, docker, helm; files matching nothing return
// ("", false).
func Classify(path string) (Category, bool) {
	name := strings.ToLower(base(path))

	if strings.HasSuffix(name, ".tf") || strings.HasSuffix(name, ".tfvars") {
		return Terraform, true
	}
	if strings.HasPrefix(name, "dockerfile") || strings.Contains(name, "docker-compose") {
		return Docker, true
	}
	if name == "chart.yaml" || name == "values.yaml" || name == "requirements.yaml" {
		return Helm, true
	}
	if hasPathSegment(path, "templates") {
		return Helm, true
	}
	return "", false
}

func base(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// hasPathSegment reports whether seg appears as a full directory segment
// of path (so "templates" matches "chart/templates/deploy.yaml" but not
// "my-templates/deploy.yaml").
func hasPathSegment(path, seg string) bool {
	for _, part := range strings.Split(path, "/") {
		if part == seg {
			return true
		}
	}
	return false
}
