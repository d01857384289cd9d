package postgres

import (
	"context"
	"flag"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shrimpsizemoose/klassbok/internal/store"
	"github.com/shrimpsizemoose/klassbok/internal/store/storetest"
)

const migrationsDir = "../../../migrations"

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
	terminate     func()
)

// startContainer boots one Postgres for the whole package.
func startContainer() (string, error) {
	containerOnce.Do(func() {
		ctx := context.Background()

		pg, err := postgres.Run(
			ctx,
			"postgres:16-alpine",
			testcontainers.WithEnv(map[string]string{
				"POSTGRES_DB":       "testdb",
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
			}),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			containerErr = err
			return
		}
		terminate = func() { pg.Terminate(ctx) }

		containerDSN, containerErr = pg.ConnectionString(ctx, "sslmode=disable")
	})
	return containerDSN, containerErr
}

// setupTestDB connects to the shared container and empties every table
func setupTestDB(t *testing.T) *PostgresStore {
	dsn, err := startContainer()
	require.NoError(t, err)

	s, err := NewPostgresStore(&store.DBConfig{
		DSN:           dsn,
		Type:          store.DBTypePostgres,
		MigrationsDir: migrationsDir,
	})
	require.NoError(t, err, "Failed to create store")

	_, err = s.DB.Exec(`TRUNCATE students, attendance, messages RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "Failed to reset tables")

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping Postgres integration tests. Use -short=false to run them.")
		os.Exit(0)
	}
	log.Println("Starting Postgres store tests...")
	code := m.Run()
	if terminate != nil {
		terminate()
	}
	log.Println("Finished Postgres store tests")
	os.Exit(code)
}

func TestRosterStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) *store.BaseStore {
		return &setupTestDB(t).BaseStore
	})
}

func TestUniqueViolationDetection(t *testing.T) {
	s := setupTestDB(t)

	insert := `INSERT INTO students (roll_no, name, age, grade, email) VALUES ($1, $2, $3, $4, $5)`
	_, err := s.DB.Exec(insert, "1", "Ann", 13, "8", "ann@school.test")
	require.NoError(t, err)

	_, err = s.DB.Exec(insert, "2", "Ann", 13, "8", "ann@school.test")
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}

func TestPlaceholderConversion(t *testing.T) {
	s := setupTestDB(t)

	got := s.Converter(`SELECT 1 FROM students WHERE roll_no = ? OR email = ? LIMIT 1`)
	assert.Equal(t, `SELECT 1 FROM students WHERE roll_no = $1 OR email = $2 LIMIT 1`, got)
}
