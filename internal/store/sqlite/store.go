// internal/store/sqlite/store.go
package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/shrimpsizemoose/klassbok/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

func NewSQLiteStore(config *store.DBConfig) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", withForeignKeys(config.DSN))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	// a second connection to ":memory:" would open a different database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
		IsUniqueViolation: isUniqueViolation,
	}}

	if err := s.ApplyMigrations(config.MigrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, translateToSQLite)
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// sqliteReplacements are applied in order, longest match first.
var sqliteReplacements = []struct{ from, to string }{
	{"BIGSERIAL PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT"},
	{"BIGINT", "INTEGER"},
	{"TIMESTAMPTZ", "TIMESTAMP"},
	{"DEFAULT FALSE", "DEFAULT 0"},
	{"DEFAULT TRUE", "DEFAULT 1"},
	{"now()", "CURRENT_TIMESTAMP"},
}

// translateToSQLite converts Postgres SQL to SQLite dialect
func translateToSQLite(sql string) string {
	result := sql
	for _, r := range sqliteReplacements {
		result = strings.ReplaceAll(result, r.from, r.to)
	}
	return result
}
