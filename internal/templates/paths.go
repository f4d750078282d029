package templates

import (
	"os"
	"path/filepath"
)

const defaultsFile = "defaults.yaml"

// DefaultsSearchPaths returns default-set locations in precedence order.
func DefaultsSearchPaths(projectDir string) []string {
	paths := make([]string, 0, 3)
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, ".templar", defaultsFile))
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "templar", defaultsFile))
	}

	paths = append(paths, filepath.Join(string(filepath.Separator), "usr", "share", "templar", defaultsFile))
	return paths
}

// LoadDefaults returns the first default set found on the search paths,
// falling back to the builtin set.
func LoadDefaults(projectDir string) (*DefaultSet, error) {
	return loadDefaultsFrom(DefaultsSearchPaths(projectDir))
}

func loadDefaultsFrom(paths []string) (*DefaultSet, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		return LoadDefaultsFile(path)
	}
	return LoadBuiltinDefaults()
}
