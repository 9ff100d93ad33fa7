package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "shapes"
version = "0.1.0"
entry = "programs/main.doml.toml"

[runtime]
stack-size = 64
register-size = 8
mode = "unsafe"
trace = true

[log]
verbosity = 2
journal = "diag.db"

[go-wrap]
output = "bindings"

[[go-wrap.packages]]
import = "image"
include = ["Point", "Rectangle"]
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "shapes" {
		t.Errorf("project name = %q, want shapes", m.Project.Name)
	}
	if m.Project.Version != "0.1.0" {
		t.Errorf("project version = %q, want 0.1.0", m.Project.Version)
	}
	if m.Runtime.StackSize != 64 || m.Runtime.RegisterSize != 8 {
		t.Errorf("runtime sizes = %d/%d, want 64/8", m.Runtime.StackSize, m.Runtime.RegisterSize)
	}
	if m.Runtime.Mode != "unsafe" || !m.Runtime.Trace {
		t.Errorf("runtime = %+v", m.Runtime)
	}
	if m.Log.Verbosity != 2 {
		t.Errorf("log verbosity = %d, want 2", m.Log.Verbosity)
	}
	if len(m.GoWrap.Packages) != 1 || m.GoWrap.Packages[0].Import != "image" {
		t.Fatalf("go-wrap packages = %+v", m.GoWrap.Packages)
	}
	if len(m.GoWrap.Packages[0].Include) != 2 {
		t.Errorf("include = %v", m.GoWrap.Packages[0].Include)
	}

	if got, want := m.EntryPath(), filepath.Join(m.Dir, "programs", "main.doml.toml"); got != want {
		t.Errorf("EntryPath() = %q, want %q", got, want)
	}
	if got, want := m.JournalPath(), filepath.Join(m.Dir, "diag.db"); got != want {
		t.Errorf("JournalPath() = %q, want %q", got, want)
	}
	if got, want := m.WrapOutputDir(), filepath.Join(m.Dir, "bindings"); got != want {
		t.Errorf("WrapOutputDir() = %q, want %q", got, want)
	}
	if m.LogFilePath() != "" {
		t.Errorf("LogFilePath() = %q, want empty", m.LogFilePath())
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "minimal"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Runtime.Mode != "safe" {
		t.Errorf("default mode = %q, want safe", m.Runtime.Mode)
	}
	if m.Runtime.StackSize != 0 {
		t.Errorf("default stack size = %d, want 0 (unbounded)", m.Runtime.StackSize)
	}
	if m.GoWrap.Output != ".doml/wrap" {
		t.Errorf("default go-wrap output = %q", m.GoWrap.Output)
	}
	if m.EntryPath() != "" || m.JournalPath() != "" {
		t.Error("unset paths should resolve to empty")
	}
}

func TestLoadManifestInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing name", "[runtime]\nmode = \"safe\"\n", "invalid manifest"},
		{"bad mode", "[project]\nname = \"x\"\n[runtime]\nmode = \"fast\"\n", "invalid manifest"},
		{"negative stack", "[project]\nname = \"x\"\n[runtime]\nstack-size = -1\n", "invalid manifest"},
		{"bad entry", "[project]\nname = \"x\"\nentry = \"main.txt\"\n", "invalid manifest"},
		{"empty import", "[project]\nname = \"x\"\n[[go-wrap.packages]]\nimport = \"\"\n", "invalid manifest"},
		{"unknown key", "[project]\nname = \"x\"\ncolour = \"red\"\n", "unknown key"},
		{"bad toml", "[project\nname = \"x\"\n", "parse error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tt.content)
			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadManifestMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for missing doml.toml")
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[project]\nname = \"found\"\n")

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil || m.Project.Name != "found" {
		t.Fatalf("manifest = %+v", m)
	}
	if abs, _ := filepath.Abs(root); m.Dir != abs {
		t.Errorf("Dir = %q, want %q", m.Dir, abs)
	}
}

func TestFindAndLoadNone(t *testing.T) {
	m, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil manifest, got %+v", m)
	}
}

func TestValidate(t *testing.T) {
	m := &Manifest{
		Project: Project{Name: "direct"},
		Runtime: RuntimeConfig{Mode: "safe"},
		GoWrap:  GoWrapConfig{Output: "out"},
	}
	if err := Validate(m); err != nil {
		t.Errorf("Validate: %v", err)
	}

	m.Log.Verbosity = 9
	if err := Validate(m); err == nil {
		t.Error("verbosity 9 should be rejected")
	}
}
