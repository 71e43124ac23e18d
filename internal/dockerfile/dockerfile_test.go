package dockerfile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Dockerfile")
	content := `FROM python:3.11-slim
WORKDIR /app
COPY . .
EXPOSE 8080 8443
user appuser
HEALTHCHECK CMD curl -f http://localhost:8080/health
CMD ["python", "app.py"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.BaseImage != "python:3.11-slim" {
		t.Errorf("BaseImage = %q", info.BaseImage)
	}
	if !reflect.DeepEqual(info.ExposedPorts, []string{"8080", "8443"}) {
		t.Errorf("ExposedPorts = %v", info.ExposedPorts)
	}
	if !info.HasWorkdir {
		t.Error("HasWorkdir should be set")
	}
	if !info.HasUser {
		t.Error("lowercase user instruction should still count")
	}
	if !info.HasHealthcheck {
		t.Error("HasHealthcheck should be set")
	}
}

func TestParse_Minimal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Dockerfile")
	if err := os.WriteFile(path, []byte("FROM scratch\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.BaseImage != "scratch" {
		t.Errorf("BaseImage = %q", info.BaseImage)
	}
	if info.HasWorkdir || info.HasUser || info.HasHealthcheck {
		t.Errorf("unexpected instruction flags: %+v", info)
	}
}

func TestParse_MissingFile(t *testing.T) {
	if _, err := Parse(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSuggestBaseImage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"python:3.9", "python:3.11-slim"},
		{"registry.example.com/python:3.8", "python:3.11-slim"},
		{"node:16-buster", "node:20-alpine"},
		{"ubuntu:20.04", "ubuntu:22.04"},
		{"alpine:3.14", "alpine:3.18"},
		{"python:3.11-slim", "python:3.11-slim"},
		{"golang:1.22", "golang:1.22"},
		{"scratch", "scratch"},
	}
	for _, tt := range tests {
		if got := SuggestBaseImage(tt.in); got != tt.want {
			t.Errorf("SuggestBaseImage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
