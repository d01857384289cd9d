package models

import "time"

type Message struct {
	ID        int64     `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	Sender    string    `db:"sender" json:"sender"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	StudentID int64     `db:"student_id" json:"student_id"`
}

type MessageInput struct {
	Content string `json:"content" validate:"required"`
	Sender  string `json:"sender" validate:"required"`
}

func (in *MessageInput) Validate() error {
	return validate.Struct(in)
}
