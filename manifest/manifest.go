// Package manifest handles doml.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the project configuration file.
const FileName = "doml.toml"

// Manifest represents a doml.toml project configuration.
type Manifest struct {
	Project Project       `toml:"project" json:"project"`
	Runtime RuntimeConfig `toml:"runtime" json:"runtime"`
	Log     LogConfig     `toml:"log" json:"log"`
	GoWrap  GoWrapConfig  `toml:"go-wrap" json:"go-wrap"`

	// Dir is the directory containing the doml.toml file (set at load time).
	Dir string `toml:"-" json:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name" json:"name"`
	Version string `toml:"version" json:"version,omitempty"`
	Entry   string `toml:"entry" json:"entry,omitempty"` // Program file run by default
}

// RuntimeConfig configures the interpreter.
type RuntimeConfig struct {
	StackSize    int    `toml:"stack-size" json:"stack-size"` // 0 = unbounded
	RegisterSize int    `toml:"register-size" json:"register-size"`
	Mode         string `toml:"mode" json:"mode"` // "safe" or "unsafe"
	Trace        bool   `toml:"trace" json:"trace"`
}

// LogConfig configures logging and the diagnostic journal.
type LogConfig struct {
	Verbosity int    `toml:"verbosity" json:"verbosity"`
	File      string `toml:"file" json:"file,omitempty"`
	Journal   string `toml:"journal" json:"journal,omitempty"`
}

// GoWrapConfig configures binding generation.
type GoWrapConfig struct {
	Output   string          `toml:"output" json:"output"`
	Packages []GoWrapPackage `toml:"packages" json:"packages,omitempty"`
}

// GoWrapPackage names one Go package to generate bindings for.
type GoWrapPackage struct {
	Import  string   `toml:"import" json:"import"`
	Include []string `toml:"include" json:"include,omitempty"` // Type names; empty means all
}

// Load parses a doml.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes doml.toml contents, fills defaults and validates the result.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}

	// Defaults
	if m.Runtime.Mode == "" {
		m.Runtime.Mode = "safe"
	}
	if m.GoWrap.Output == "" {
		m.GoWrap.Output = ".doml/wrap"
	}

	if err := Validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a doml.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// resolve makes p absolute relative to the manifest directory.
func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// EntryPath returns the absolute path of the entry program, or "" if unset.
func (m *Manifest) EntryPath() string {
	return m.resolve(m.Project.Entry)
}

// WrapOutputDir returns the absolute binding output directory.
func (m *Manifest) WrapOutputDir() string {
	return m.resolve(m.GoWrap.Output)
}

// JournalPath returns the absolute journal database path, or "" if unset.
func (m *Manifest) JournalPath() string {
	return m.resolve(m.Log.Journal)
}

// LogFilePath returns the absolute log file path, or "" for stderr.
func (m *Manifest) LogFilePath() string {
	return m.resolve(m.Log.File)
}
