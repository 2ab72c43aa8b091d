package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver goose needs
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationResult reports what applyMigrations did, for the caller to log.
type migrationResult struct {
	Applied  int
	Checksum string
}

// applyMigrations runs every pending migration against databaseURL and
// returns the number applied plus a deterministic checksum of the full
// migration set, so two instances running the same binary can confirm they
// agree on schema shape without comparing DDL by hand.
func applyMigrations(ctx context.Context, databaseURL string) (migrationResult, error) {
	sub, err := migrationsSubFS()
	if err != nil {
		return migrationResult{}, err
	}

	checksum, err := computeChecksum(sub)
	if err != nil {
		return migrationResult{}, err
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return migrationResult{}, fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(sub)
	if err := goose.SetDialect("postgres"); err != nil {
		return migrationResult{}, fmt.Errorf("set goose dialect: %w", err)
	}

	before, err := goose.GetDBVersion(db)
	if err != nil {
		return migrationResult{}, fmt.Errorf("read schema version: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return migrationResult{}, fmt.Errorf("apply migrations: %w", err)
	}

	after, err := goose.GetDBVersion(db)
	if err != nil {
		return migrationResult{}, fmt.Errorf("read schema version: %w", err)
	}

	return migrationResult{Applied: int(after - before), Checksum: checksum}, nil
}
