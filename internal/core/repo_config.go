package core

import (
	"path"
	"slices"
	"strings"
)

// RepoConfig represents the structure of the .hybrid-warden.yml file a repository
// may carry at its root.
type RepoConfig struct {
	// Exclusion of entire directories, at any depth. An entry may name a single
	// directory or a nested path such as "tests/fixtures".
	// Example: ["migrations", "vendor", "tests/fixtures"]
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// Exclusion of files by slash-separated glob, matched against the full path.
	// Example: ["scripts/*.py", "setup.py"]
	ExcludePaths []string `yaml:"exclude_paths"`
}

// DefaultRepoConfig returns a config with default values.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{
		ExcludeDirs:  []string{},
		ExcludePaths: []string{},
	}
}

// Excludes reports whether the file at filePath must be skipped.
func (c *RepoConfig) Excludes(filePath string) bool {
	if c == nil {
		return false
	}
	clean := strings.TrimPrefix(path.Clean(strings.ReplaceAll(filePath, "\\", "/")), "./")

	dirs := strings.Split(path.Dir(clean), "/")
	for _, excluded := range c.ExcludeDirs {
		excluded = strings.Trim(path.Clean(strings.ReplaceAll(excluded, "\\", "/")), "/")
		if excluded == "" || excluded == "." {
			continue
		}
		if containsRun(dirs, strings.Split(excluded, "/")) {
			return true
		}
	}

	for _, pattern := range c.ExcludePaths {
		if ok, err := path.Match(pattern, clean); err == nil && ok {
			return true
		}
	}
	return false
}

// containsRun reports whether want appears as consecutive elements of segments.
func containsRun(segments, want []string) bool {
	for i := 0; i+len(want) <= len(segments); i++ {
		if slices.Equal(segments[i:i+len(want)], want) {
			return true
		}
	}
	return false
}
