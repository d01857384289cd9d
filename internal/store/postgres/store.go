package postgres

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/shrimpsizemoose/klassbok/internal/store"
)

const uniqueViolation = pq.ErrorCode("23505")

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(config *store.DBConfig) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return sqlx.Rebind(sqlx.DOLLAR, query)
		},
		IsUniqueViolation: isUniqueViolation,
	}}

	if err := s.ApplyMigrations(config.MigrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
