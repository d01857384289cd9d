package models

type Student struct {
	ID          int64   `db:"id" json:"id"`
	RollNo      string  `db:"roll_no" json:"roll_no"`
	Name        string  `db:"name" json:"name"`
	DateOfBirth *Date   `db:"dob" json:"dob,omitempty"`
	Age         int     `db:"age" json:"age"`
	Gender      *string `db:"gender" json:"gender,omitempty"`
	Grade       string  `db:"grade" json:"grade"`
	Email       string  `db:"email" json:"email"`
	Contact     *string `db:"contact" json:"contact,omitempty"`
	Deleted     bool    `db:"deleted" json:"deleted"`
}

// StudentInput carries the fields accepted by add and update, as submitted.
// DateOfBirth is an ISO date or empty.
type StudentInput struct {
	RollNo      string `json:"roll_no" validate:"max=50"`
	Name        string `json:"name" validate:"max=100"`
	DateOfBirth string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Age         int    `json:"age"`
	Gender      string `json:"gender" validate:"max=10"`
	Grade       string `json:"grade" validate:"max=20"`
	Email       string `json:"email" validate:"max=120"`
	Contact     string `json:"contact" validate:"max=20"`
}

func (in *StudentInput) Validate() error {
	return validate.Struct(in)
}

// Apply overwrites every field of s with the input. Empty optional fields
// become NULL. The input must be validated first.
func (in *StudentInput) Apply(s *Student) error {
	var dob *Date
	if in.DateOfBirth != "" {
		d, err := ParseDate(in.DateOfBirth)
		if err != nil {
			return err
		}
		dob = &d
	}

	s.RollNo = in.RollNo
	s.Name = in.Name
	s.DateOfBirth = dob
	s.Age = in.Age
	s.Gender = nullable(in.Gender)
	s.Grade = in.Grade
	s.Email = in.Email
	s.Contact = nullable(in.Contact)
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
