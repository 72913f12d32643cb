package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadFromDir scans a directory for migration files and returns them as
// unsorted Migration values. Only regular files directly inside the
// directory whose name ends in ".sql" are considered; subdirectories and
// other entries are skipped.
//
// A non-existent directory is a no-op success returning an empty set, so
// the runner can be invoked before any migrations have been authored.
func LoadFromDir(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading migrations directory %s: %w", dir, err)
	}

	var migrations []Migration

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading migration file %s: %w", path, err)
		}

		migrations = append(migrations, Migration{
			Filename: entry.Name(),
			SQL:      strings.TrimSpace(string(data)),
			FilePath: path,
		})
	}

	return migrations, nil
}
