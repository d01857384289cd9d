package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/klassbok/internal/models"
)

// AppendMessage stores a message for a student stamped with the current time.
func (s *BaseStore) AppendMessage(ctx context.Context, studentID int64, in models.MessageInput) (*models.Message, error) {
	if err := in.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	msg := models.Message{
		Content:   in.Content,
		Sender:    in.Sender,
		Timestamp: s.now(),
		StudentID: studentID,
	}

	err := s.inTx(ctx, "send message", func(tx *sqlx.Tx) error {
		if _, err := s.getStudent(ctx, tx, studentID); err != nil {
			return err
		}

		query := s.Converter(`
			INSERT INTO messages (content, sender, timestamp, student_id)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`)
		if err := tx.QueryRowxContext(ctx, query, msg.Content, msg.Sender, msg.Timestamp, msg.StudentID).Scan(&msg.ID); err != nil {
			return s.writeErr(err, "insert message")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns the messages of a student, newest first.
func (s *BaseStore) ListMessages(ctx context.Context, studentID int64) ([]models.Message, error) {
	messages := []models.Message{}
	query := s.Converter(`
		SELECT id, content, sender, timestamp, student_id
		FROM messages
		WHERE student_id = ?
		ORDER BY timestamp DESC, id DESC
	`)

	if err := s.DB.SelectContext(ctx, &messages, query, studentID); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}
