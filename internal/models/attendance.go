package models

type AttendanceRecord struct {
	ID        int64  `db:"id" json:"id"`
	Date      Date   `db:"date" json:"date"`
	Status    string `db:"status" json:"status"`
	StudentID int64  `db:"student_id" json:"student_id"`
}

type AttendanceInput struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Status string `json:"status" validate:"required,max=10"`
}

func (in *AttendanceInput) Validate() error {
	return validate.Struct(in)
}
