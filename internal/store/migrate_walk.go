package store

import (
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

// walkSQLFiles returns every .sql file in fsys, sorted for determinism.
func walkSQLFiles(fsys fs.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(path), ".sql") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	slices.Sort(files)
	return files, nil
}
