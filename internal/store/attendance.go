package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/klassbok/internal/models"
)

// UpsertAttendance records the status of a student on a day. A second mark
// for the same day overwrites the first. The returned flag is true when a
// new record was created.
func (s *BaseStore) UpsertAttendance(ctx context.Context, studentID int64, in models.AttendanceInput) (*models.AttendanceRecord, bool, error) {
	var (
		record  models.AttendanceRecord
		created bool
	)

	err := s.inTx(ctx, "mark attendance", func(tx *sqlx.Tx) error {
		if _, err := s.getStudent(ctx, tx, studentID); err != nil {
			return err
		}

		if err := in.Validate(); err != nil {
			return asValidationError(err)
		}
		day, err := models.ParseDate(in.Date)
		if err != nil {
			return asValidationError(err)
		}

		query := s.Converter(`
			SELECT id, date, status, student_id
			FROM attendance
			WHERE student_id = ? AND date = ?
			ORDER BY id ASC
			LIMIT 1
		`)
		err = tx.GetContext(ctx, &record, query, studentID, day)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			record = models.AttendanceRecord{Date: day, Status: in.Status, StudentID: studentID}
			created = true
			query = s.Converter(`
				INSERT INTO attendance (date, status, student_id)
				VALUES (?, ?, ?)
				RETURNING id
			`)
			if err := tx.QueryRowxContext(ctx, query, day, in.Status, studentID).Scan(&record.ID); err != nil {
				return s.writeErr(err, "insert attendance")
			}
			return nil
		case err != nil:
			return fmt.Errorf("failed to look up attendance: %w", err)
		}

		record.Status = in.Status
		_, err = tx.ExecContext(ctx, s.Converter(`UPDATE attendance SET status = ? WHERE id = ?`), in.Status, record.ID)
		if err != nil {
			return s.writeErr(err, "update attendance")
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &record, created, nil
}

// ListAttendance returns the records of a student, most recent day first.
func (s *BaseStore) ListAttendance(ctx context.Context, studentID int64) ([]models.AttendanceRecord, error) {
	records := []models.AttendanceRecord{}
	query := s.Converter(`
		SELECT id, date, status, student_id
		FROM attendance
		WHERE student_id = ?
		ORDER BY date DESC, id DESC
	`)

	if err := s.DB.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, nil
}
