// Package config loads the optional per-project .quick-hotfix.yaml and the
// per-user settings file that remembers the last destination.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"quick-hotfix/internal/locate"
	"quick-hotfix/internal/meta"
)

// ProjectFile is the project config file name, looked up in the archive root.
const ProjectFile = ".quick-hotfix.yaml"

// Project models .quick-hotfix.yaml. Empty fields keep their defaults.
type Project struct {
	OutputDir             string   `yaml:"output_dir,omitempty"`
	CompiledExtensions    []string `yaml:"compiled_extensions,omitempty"`
	CompiledUnitExtension string   `yaml:"compiled_unit_extension,omitempty"`
	Manifest              bool     `yaml:"manifest,omitempty"`
}

// LoadProject reads <root>/.quick-hotfix.yaml. A missing file yields the
// zero Project. Unknown keys are rejected.
func LoadProject(root string) (Project, error) {
	path := filepath.Join(root, ProjectFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Project{}, nil
		}
		return Project{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var p Project
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Project{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return Project{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return p, nil
}

func (p Project) validate() error {
	if filepath.IsAbs(p.OutputDir) || strings.HasPrefix(filepath.ToSlash(p.OutputDir), "/") {
		return fmt.Errorf("output_dir must be relative, got %q", p.OutputDir)
	}
	for _, e := range append(append([]string{}, p.CompiledExtensions...), p.CompiledUnitExtension) {
		if e != "" && !strings.HasPrefix(e, ".") {
			return fmt.Errorf("extension %q must start with '.'", e)
		}
	}
	return nil
}

// Layout merges the project config over the detected build layout.
func (p Project) Layout(build meta.Info) locate.Layout {
	l := locate.DefaultLayout()
	if build.OutputDir != "" {
		l.OutputDir = build.OutputDir
	}
	if p.OutputDir != "" {
		l.OutputDir = filepath.ToSlash(p.OutputDir)
	}
	if len(p.CompiledExtensions) > 0 {
		l.CompiledExtensions = lower(p.CompiledExtensions)
	}
	if p.CompiledUnitExtension != "" {
		l.UnitExtension = p.CompiledUnitExtension
	}
	return l
}

func lower(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}
