// ABOUTME: YAML script manifest: which scripts to register and how to talk to them
// ABOUTME: Parsed with yaml.v3, validated per entry and turned into host candidates

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mauromedda/hookwire/pkg/codec"
	"github.com/mauromedda/hookwire/pkg/hook"
	"github.com/mauromedda/hookwire/pkg/host"
	"github.com/mauromedda/hookwire/pkg/version"
)

// Manifest is the on-disk description of a host's scripts.
type Manifest struct {
	Requirement           string        `yaml:"requirement"`
	Codec                 string        `yaml:"codec"`
	DeliverTimeout        time.Duration `yaml:"deliver_timeout"`
	AllowDynamicLibraries bool          `yaml:"allow_dynamic_libraries"`
	Scripts               []ScriptEntry `yaml:"scripts"`

	// dir is the manifest's directory; relative paths resolve against it.
	dir string
}

// ScriptEntry is one script in the manifest.
type ScriptEntry struct {
	Path string            `yaml:"path"`
	Type hook.ScriptType   `yaml:"type"`
	Args []string          `yaml:"args,omitempty"`
	Env  map[string]string `yaml:"env,omitempty"`
	Dir  string            `yaml:"dir,omitempty"`
}

// Load reads, expands and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest. baseDir anchors relative script paths.
func Parse(data []byte, baseDir string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	m.dir = baseDir
	ResolveEnvVars(&m)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate reports every invalid field, naming the offending entry.
func (m *Manifest) Validate() error {
	var errs []error
	if m.Requirement != "" {
		if _, err := version.ParseRequirement(m.Requirement); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := codec.ByName(m.Codec); err != nil {
		errs = append(errs, err)
	}
	if m.DeliverTimeout < 0 {
		errs = append(errs, fmt.Errorf("deliver_timeout must not be negative, got %v", m.DeliverTimeout))
	}
	for i, s := range m.Scripts {
		if s.Path == "" {
			errs = append(errs, fmt.Errorf("scripts[%d]: path is required", i))
		}
		if s.Type == hook.Unknown {
			errs = append(errs, fmt.Errorf("scripts[%d] (%s): type is required (oneshot, daemon or dylib)", i, s.Path))
		}
		if s.Type == hook.DynamicLibrary && (len(s.Args) > 0 || len(s.Env) > 0 || s.Dir != "") {
			errs = append(errs, fmt.Errorf("scripts[%d] (%s): args, env and dir do not apply to dynamic libraries", i, s.Path))
		}
	}
	return errors.Join(errs...)
}

// VersionRequirement returns the parsed requirement, or nil when none is set.
func (m *Manifest) VersionRequirement() (*version.Requirement, error) {
	if m.Requirement == "" {
		return nil, nil
	}
	return version.ParseRequirement(m.Requirement)
}

// HostOptions translates the manifest's settings into dispatcher options.
func (m *Manifest) HostOptions() ([]host.Option, error) {
	c, err := codec.ByName(m.Codec)
	if err != nil {
		return nil, err
	}
	opts := []host.Option{host.WithCodec(c)}
	if m.DeliverTimeout > 0 {
		opts = append(opts, host.WithDeliverTimeout(m.DeliverTimeout))
	}
	if m.AllowDynamicLibraries {
		opts = append(opts, host.WithDynamicLibraries())
	}
	return opts, nil
}

// Candidates returns the scripts in manifest order with paths made absolute.
func (m *Manifest) Candidates() []host.Candidate {
	out := make([]host.Candidate, 0, len(m.Scripts))
	for _, s := range m.Scripts {
		out = append(out, host.Candidate{
			Path: m.resolve(s.Path),
			Type: s.Type,
			Args: slices.Clone(s.Args),
			Env:  envList(s.Env),
			Dir:  m.resolveDir(s.Dir),
		})
	}
	return out
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	// Bare names such as "libc.so.6" are left to the loader or PATH lookup.
	if filepath.Base(p) == p {
		return p
	}
	return filepath.Join(m.dir, p)
}

func (m *Manifest) resolveDir(p string) string {
	if p == "" || filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}

func envList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
