package store

import "io/fs"

// migrationsSubFS re-roots the embedded filesystem at migrations/ so goose
// and computeChecksum see bare file names ("0001_init.sql") instead of the
// "migrations/" prefix embed.FS retains.
func migrationsSubFS() (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations")
}
