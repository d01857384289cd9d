package app

import (
	"fmt"
	"strings"

	"github.com/shrimpsizemoose/klassbok/internal/store"
	"github.com/shrimpsizemoose/klassbok/internal/store/postgres"
	"github.com/shrimpsizemoose/klassbok/internal/store/sqlite"
)

func DetectDBType(dsn string) store.DatabaseType {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return store.DBTypePostgres
	}
	return store.DBTypeSQLite
}

func NewStore(dsn, migrationsDir string) (store.RosterStore, error) {
	config := &store.DBConfig{
		DSN:           dsn,
		Type:          DetectDBType(dsn),
		MigrationsDir: migrationsDir,
	}

	switch config.Type {
	case store.DBTypePostgres:
		return postgres.NewPostgresStore(config)
	case store.DBTypeSQLite:
		return sqlite.NewSQLiteStore(config)
	default:
		return nil, fmt.Errorf("unable to determine database type from DSN: %s", dsn)
	}
}
