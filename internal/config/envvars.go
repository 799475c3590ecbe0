// ABOUTME: Environment variable expansion in manifest string fields
// ABOUTME: Replaces ${VAR} patterns with os.Getenv values; unset vars become empty

package config

import (
	"os"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns in the string fields of m.
func ResolveEnvVars(m *Manifest) {
	m.Requirement = expandEnv(m.Requirement)
	m.Codec = expandEnv(m.Codec)

	for i := range m.Scripts {
		s := &m.Scripts[i]
		s.Path = expandEnv(s.Path)
		s.Dir = expandEnv(s.Dir)
		for j, a := range s.Args {
			s.Args[j] = expandEnv(a)
		}
		for k, v := range s.Env {
			s.Env[k] = expandEnv(v)
		}
	}
}

// expandEnv replaces ${VAR} patterns with their environment values.
func expandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}
