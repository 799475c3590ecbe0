// ABOUTME: Tests for environment variable expansion in the manifest
// ABOUTME: Validates ${VAR} replacement for set, unset, and nested patterns

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv_Set(t *testing.T) {
	t.Setenv("TEST_SCRIPT_DIR", "/opt/scripts")
	assert.Equal(t, "/opt/scripts", expandEnv("${TEST_SCRIPT_DIR}"))
}

func TestExpandEnv_Unset(t *testing.T) {
	assert.Equal(t, "", expandEnv("${DEFINITELY_NOT_SET_12345}"))
}

func TestExpandEnv_Mixed(t *testing.T) {
	t.Setenv("MY_ROOT", "/srv")
	assert.Equal(t, "/srv/bin/eval-script", expandEnv("${MY_ROOT}/bin/eval-script"))
}

func TestExpandEnv_NoPattern(t *testing.T) {
	assert.Equal(t, "plain string", expandEnv("plain string"))
	assert.Equal(t, "$HOME stays", expandEnv("$HOME stays"))
}

func TestResolveEnvVars_ManifestFields(t *testing.T) {
	t.Setenv("TEST_REQ", "^1.2.0")
	t.Setenv("TEST_BIN", "/usr/local/bin")
	t.Setenv("TEST_TOKEN", "secret")

	m := &Manifest{
		Requirement: "${TEST_REQ}",
		Scripts: []ScriptEntry{{
			Path: "${TEST_BIN}/random-script",
			Args: []string{"--token=${TEST_TOKEN}"},
			Env:  map[string]string{"TOKEN": "${TEST_TOKEN}"},
			Dir:  "${TEST_BIN}",
		}},
	}
	ResolveEnvVars(m)

	assert.Equal(t, "^1.2.0", m.Requirement)
	assert.Equal(t, "/usr/local/bin/random-script", m.Scripts[0].Path)
	assert.Equal(t, []string{"--token=secret"}, m.Scripts[0].Args)
	assert.Equal(t, "secret", m.Scripts[0].Env["TOKEN"])
	assert.Equal(t, "/usr/local/bin", m.Scripts[0].Dir)
}
