// internal/store/sqlite/store_test.go
package sqlite

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/klassbok/internal/store"
	"github.com/shrimpsizemoose/klassbok/internal/store/storetest"
)

const migrationsDir = "../../../migrations"

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *SQLiteStore {
	s, err := NewSQLiteStore(&store.DBConfig{
		DSN:           ":memory:",
		Type:          store.DBTypeSQLite,
		MigrationsDir: migrationsDir,
	})
	require.NoError(t, err, "Failed to create store")

	t.Cleanup(func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	})

	return s
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestRosterStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) *store.BaseStore {
		return &setupTestDB(t).BaseStore
	})
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := setupTestDB(t)

	_, _, err := s.AddOrRestoreStudent(context.Background(), storetest.Input("1", "Ann", "ann@school.test"))
	require.NoError(t, err)

	require.NoError(t, s.ApplyMigrations(migrationsDir))

	students, err := s.ListActiveStudents(context.Background())
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestForeignKeysEnforced(t *testing.T) {
	s := setupTestDB(t)

	_, err := s.DB.Exec(`INSERT INTO attendance (date, status, student_id) VALUES ('2024-01-01', 'Present', 42)`)
	require.Error(t, err)
	assert.Contains(t, strings.ToUpper(err.Error()), "FOREIGN KEY")
}

func TestUniqueViolationDetection(t *testing.T) {
	s := setupTestDB(t)

	insert := `INSERT INTO students (roll_no, name, age, grade, email) VALUES (?, ?, ?, ?, ?)`
	_, err := s.DB.Exec(insert, "1", "Ann", 13, "8", "ann@school.test")
	require.NoError(t, err)

	_, err = s.DB.Exec(insert, "1", "Ann", 13, "8", "other@school.test")
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
	assert.False(t, isUniqueViolation(errors.New("UNIQUE constraint failed")))
}

func TestTranslateToSQLite(t *testing.T) {
	in := `CREATE TABLE t (
    id BIGSERIAL PRIMARY KEY,
    owner BIGINT NOT NULL,
    at TIMESTAMPTZ NOT NULL DEFAULT now(),
    gone BOOLEAN NOT NULL DEFAULT FALSE
);`
	want := `CREATE TABLE t (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    owner INTEGER NOT NULL,
    at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    gone BOOLEAN NOT NULL DEFAULT 0
);`
	assert.Equal(t, want, translateToSQLite(in))
}

func TestWithForeignKeys(t *testing.T) {
	testCases := []struct {
		dsn  string
		want string
	}{
		{":memory:", ":memory:?_foreign_keys=on"},
		{"file:roster.db?cache=shared", "file:roster.db?cache=shared&_foreign_keys=on"},
		{"roster.db?_foreign_keys=off", "roster.db?_foreign_keys=off"},
	}

	for _, tc := range testCases {
		t.Run(tc.dsn, func(t *testing.T) {
			assert.Equal(t, tc.want, withForeignKeys(tc.dsn))
		})
	}
}
