package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/klassbok/internal/models"
)

type RosterStore interface {
	Close() error
	Ping(ctx context.Context) error
	ApplyMigrations(dir string) error

	ListActiveStudents(ctx context.Context) ([]models.Student, error)
	FindStudent(ctx context.Context, identifier string) (*models.Student, error)
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	AddOrRestoreStudent(ctx context.Context, in models.StudentInput) (*models.Student, bool, error)
	UpdateStudent(ctx context.Context, id int64, in models.StudentInput) (*models.Student, error)
	SoftDeleteStudent(ctx context.Context, id int64) error
	PurgeStudent(ctx context.Context, id int64) error
	SearchStudents(ctx context.Context, query string) ([]models.Student, error)

	UpsertAttendance(ctx context.Context, studentID int64, in models.AttendanceInput) (*models.AttendanceRecord, bool, error)
	ListAttendance(ctx context.Context, studentID int64) ([]models.AttendanceRecord, error)

	AppendMessage(ctx context.Context, studentID int64, in models.MessageInput) (*models.Message, error)
	ListMessages(ctx context.Context, studentID int64) ([]models.Message, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
	// IsUniqueViolation reports whether a driver error is a UNIQUE constraint failure.
	IsUniqueViolation func(error) bool
	Clock             func() time.Time
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *BaseStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		logger.Debug.Printf("Applying migration: %s", file.Name())
		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) now() time.Time {
	clock := s.Clock
	if clock == nil {
		clock = time.Now
	}
	return clock().UTC().Truncate(time.Microsecond)
}

// writeErr maps unique violations to ErrConflict and wraps everything else.
func (s *BaseStore) writeErr(err error, action string) error {
	if s.IsUniqueViolation != nil && s.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// inTx runs fn in a transaction and commits once.
func (s *BaseStore) inTx(ctx context.Context, action string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin %s: %w", action, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return s.writeErr(err, "commit "+action)
	}
	return nil
}
