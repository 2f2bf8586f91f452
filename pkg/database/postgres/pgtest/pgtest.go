// Package pgtest opens a migrated, throwaway Postgres schema for repository tests.
// Tests are skipped unless TEST_POSTGRES_DSN is set.
package pgtest

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/fekuna/school-inventory-service/migrations"
	"github.com/fekuna/school-inventory-service/pkg/database/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

const DSNEnv = "TEST_POSTGRES_DSN"

// Open returns a pool whose search_path points at a fresh schema holding the full migration set.
// The schema is dropped when the test ends.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", DSNEnv)
	}

	admin, err := sqlx.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = admin.Close() })

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.ExecContext(context.Background(), "CREATE SCHEMA "+schema)
	require.NoError(t, err)

	cfg, err := pgx.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.RuntimeParams["search_path"] = schema

	db := sqlx.NewDb(stdlib.OpenDB(*cfg), "pgx")
	t.Cleanup(func() {
		_ = db.Close()
		_, _ = admin.ExecContext(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
	})

	require.NoError(t, postgres.Migrate(db, migrations.FS))
	return db
}
