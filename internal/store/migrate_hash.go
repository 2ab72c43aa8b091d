package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
)

// errNoMigrations is returned when the embedded migrations directory
// contains no .sql files — a packaging mistake, not a runtime condition.
const errNoMigrations = migrateError("no SQL migration files found")

type migrateError string

func (e migrateError) Error() string { return string(e) }

// computeChecksum hashes every .sql file in fsys, sorted by name for
// determinism: filenames and contents both feed the hash, with separators
// between files so two trees can't collide by concatenation alone.
func computeChecksum(fsys fs.FS) (string, error) {
	paths, err := walkSQLFiles(fsys)
	if err != nil {
		return "", fmt.Errorf("walk migrations: %w", err)
	}
	if len(paths) == 0 {
		return "", errNoMigrations
	}

	h := sha256.New()
	for _, p := range paths {
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", p, err)
		}
		h.Write([]byte(p + "\x00"))
		h.Write(content)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}
