package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/klassbok/internal/models"
)

const studentColumns = `id, roll_no, name, dob, age, gender, grade, email, contact, deleted`

func (s *BaseStore) ListActiveStudents(ctx context.Context) ([]models.Student, error) {
	students := []models.Student{}
	query := s.Converter(`
		SELECT ` + studentColumns + `
		FROM students
		WHERE deleted = ?
		ORDER BY id ASC
	`)

	if err := s.DB.SelectContext(ctx, &students, query, false); err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// FindStudent looks a student up by roll number or email, deleted or not.
func (s *BaseStore) FindStudent(ctx context.Context, identifier string) (*models.Student, error) {
	var student models.Student
	query := s.Converter(`
		SELECT ` + studentColumns + `
		FROM students
		WHERE roll_no = ? OR email = ?
		ORDER BY id ASC
		LIMIT 1
	`)

	err := s.DB.GetContext(ctx, &student, query, identifier, identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find student: %w", err)
	}
	return &student, nil
}

func (s *BaseStore) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	return s.getStudent(ctx, s.DB, id)
}

func (s *BaseStore) getStudent(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Student, error) {
	var student models.Student
	query := s.Converter(`SELECT ` + studentColumns + ` FROM students WHERE id = ?`)

	err := sqlx.GetContext(ctx, q, &student, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("student %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student %d: %w", id, err)
	}
	return &student, nil
}

// AddOrRestoreStudent creates a student, or revives a soft-deleted one that
// shares its roll number or email. The revived row takes every new value.
// The returned flag is true for a restore.
func (s *BaseStore) AddOrRestoreStudent(ctx context.Context, in models.StudentInput) (*models.Student, bool, error) {
	if err := in.Validate(); err != nil {
		return nil, false, asValidationError(err)
	}

	var (
		student  models.Student
		restored bool
	)
	if err := in.Apply(&student); err != nil {
		return nil, false, asValidationError(err)
	}

	err := s.inTx(ctx, "add student", func(tx *sqlx.Tx) error {
		var matches []models.Student
		query := s.Converter(`
			SELECT ` + studentColumns + `
			FROM students
			WHERE email = ? OR roll_no = ?
			ORDER BY id ASC
		`)
		if err := tx.SelectContext(ctx, &matches, query, student.Email, student.RollNo); err != nil {
			return fmt.Errorf("failed to look up existing students: %w", err)
		}

		for _, m := range matches {
			if !m.Deleted {
				return ErrConflict
			}
		}

		if len(matches) > 0 {
			student.ID = matches[0].ID
			restored = true
			return s.writeStudent(ctx, tx, &student, true)
		}

		query = s.Converter(`
			INSERT INTO students (roll_no, name, dob, age, gender, grade, email, contact, deleted)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`)
		err := tx.QueryRowxContext(ctx, query,
			student.RollNo,
			student.Name,
			student.DateOfBirth,
			student.Age,
			student.Gender,
			student.Grade,
			student.Email,
			student.Contact,
			false,
		).Scan(&student.ID)
		if err != nil {
			return s.writeErr(err, "insert student")
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	student.Deleted = false
	return &student, restored, nil
}

// UpdateStudent overwrites the fields of a student, deleted or not.
func (s *BaseStore) UpdateStudent(ctx context.Context, id int64, in models.StudentInput) (*models.Student, error) {
	var updated *models.Student

	err := s.inTx(ctx, "update student", func(tx *sqlx.Tx) error {
		current, err := s.getStudent(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := in.Validate(); err != nil {
			return asValidationError(err)
		}
		next := *current
		if err := in.Apply(&next); err != nil {
			return asValidationError(err)
		}

		if err := s.writeStudent(ctx, tx, &next, false); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// writeStudent stores every mutable field of student. With undelete the
// deleted flag is cleared as well.
func (s *BaseStore) writeStudent(ctx context.Context, tx *sqlx.Tx, student *models.Student, undelete bool) error {
	set := `roll_no = ?, name = ?, dob = ?, age = ?, gender = ?, grade = ?, email = ?, contact = ?`
	args := []interface{}{
		student.RollNo,
		student.Name,
		student.DateOfBirth,
		student.Age,
		student.Gender,
		student.Grade,
		student.Email,
		student.Contact,
	}
	if undelete {
		set += `, deleted = ?`
		args = append(args, false)
	}
	args = append(args, student.ID)

	res, err := tx.ExecContext(ctx, s.Converter(`UPDATE students SET `+set+` WHERE id = ?`), args...)
	if err != nil {
		return s.writeErr(err, "update student")
	}
	return expectAffected(res, student.ID)
}

// SoftDeleteStudent flags a student as deleted. Deleting twice is fine.
func (s *BaseStore) SoftDeleteStudent(ctx context.Context, id int64) error {
	return s.inTx(ctx, "delete student", func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.Converter(`UPDATE students SET deleted = ? WHERE id = ?`), true, id)
		if err != nil {
			return fmt.Errorf("failed to delete student: %w", err)
		}
		return expectAffected(res, id)
	})
}

// PurgeStudent removes the row for good, along with its attendance and messages.
func (s *BaseStore) PurgeStudent(ctx context.Context, id int64) error {
	return s.inTx(ctx, "purge student", func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.Converter(`DELETE FROM students WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to purge student: %w", err)
		}
		return expectAffected(res, id)
	})
}

// SearchStudents matches an all-digit query against roll numbers and
// anything else against names, case-insensitively. Only active students.
func (s *BaseStore) SearchStudents(ctx context.Context, query string) ([]models.Student, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return s.ListActiveStudents(ctx)
	}

	var (
		where string
		arg   string
	)
	if isDigits(q) {
		where = `roll_no = ?`
		arg = canonicalNumber(q)
	} else {
		where = `LOWER(name) LIKE ? ESCAPE '\'`
		arg = "%" + escapeLike(strings.ToLower(q)) + "%"
	}

	students := []models.Student{}
	sqlQuery := s.Converter(`
		SELECT ` + studentColumns + `
		FROM students
		WHERE ` + where + `
		AND deleted = ?
		ORDER BY id ASC
	`)
	if err := s.DB.SelectContext(ctx, &students, sqlQuery, arg, false); err != nil {
		return nil, fmt.Errorf("failed to search students: %w", err)
	}
	return students, nil
}

func expectAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("student %d: %w", id, ErrNotFound)
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// canonicalNumber drops leading zeros so "007" looks up roll number "7".
func canonicalNumber(digits string) string {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
