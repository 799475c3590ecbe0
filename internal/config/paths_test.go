// ABOUTME: Tests for manifest path resolution
// ABOUTME: Project-local manifest wins over the global one when present

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultManifestFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	assert.Equal(t, GlobalManifestFile(), DefaultManifestFile(root))

	require.NoError(t, os.MkdirAll(ProjectDir(root), 0o700))
	require.NoError(t, os.WriteFile(ProjectManifestFile(root), []byte("scripts: []\n"), 0o600))
	assert.Equal(t, filepath.Join(root, ".hookwire", "scripts.yaml"), DefaultManifestFile(root))
}

func TestGlobalManifestFile(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "scripts.yaml", filepath.Base(GlobalManifestFile()))
	assert.Equal(t, ".hookwire", filepath.Base(GlobalDir()))
}
