// ABOUTME: Standard filesystem paths for hookwire configuration
// ABOUTME: Resolves ~/.hookwire/ for global and .hookwire/ for project-local manifests

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName  = ".hookwire"
	projectDirName = ".hookwire"
	manifestName   = "scripts.yaml"
)

// GlobalDir returns the user-global config directory (~/.hookwire/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.hookwire/ in root).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalManifestFile returns the path of the user-global manifest.
func GlobalManifestFile() string {
	return filepath.Join(GlobalDir(), manifestName)
}

// ProjectManifestFile returns the path of the project-local manifest.
func ProjectManifestFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), manifestName)
}

// DefaultManifestFile returns the project manifest when it exists, otherwise
// the global one.
func DefaultManifestFile(projectRoot string) string {
	p := ProjectManifestFile(projectRoot)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return GlobalManifestFile()
}
