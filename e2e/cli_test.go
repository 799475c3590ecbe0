// ABOUTME: E2E tests for the non-interactive hookhost subcommands
// ABOUTME: Covers list, exec, trigger and version gating against real scripts

package e2e

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_ShowsRegisteredScripts(t *testing.T) {
	requireBinaries(t)

	out, err := hookhost(t, "--manifest", writeManifest(t, `requirement: "^1.0.0"`), "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "evaluator")
	assert.Contains(t, lines[1], "oneshot")
	assert.Contains(t, lines[1], "active")
	assert.Contains(t, lines[2], "randomize")
	assert.Contains(t, lines[2], "daemon")
}

func TestList_VersionMismatchIsInactive(t *testing.T) {
	requireBinaries(t)

	out, err := hookhost(t, "--manifest", writeManifest(t, `requirement: "^2.0.0"`), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "inactive")
	assert.NotContains(t, strings.ReplaceAll(out, "inactive", ""), "active")
}

func TestExec_BroadcastsToListeners(t *testing.T) {
	requireBinaries(t)

	out, err := hookhost(t, "--manifest", writeManifest(t, ""), "exec", "ping")
	require.NoError(t, err)
	assert.Contains(t, out, "evaluator: ")
	assert.Contains(t, out, "randomize: ")
}

func TestExec_InactiveScriptsAreSkipped(t *testing.T) {
	requireBinaries(t)

	out, err := hookhost(t, "--manifest", writeManifest(t, `requirement: "^2.0.0"`), "exec", "ping")
	require.NoError(t, err)
	assert.NotContains(t, out, "evaluator")
}

func TestTrigger_ReachesInactiveScript(t *testing.T) {
	requireBinaries(t)

	manifest := writeManifest(t, "requirement: \"^2.0.0\"\ncodec: json")
	out, err := hookhost(t, "--manifest", manifest, "trigger", "randomize", "ping")
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"randomize"`)
}

func TestTrigger_UnknownScriptFails(t *testing.T) {
	requireBinaries(t)

	_, err := hookhost(t, "--manifest", writeManifest(t, ""), "trigger", "randomise", "ping")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	requireBinaries(t)

	out, err := hookhost(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "protocol 1")
}
