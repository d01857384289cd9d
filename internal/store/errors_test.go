package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/klassbok/internal/models"
)

func TestValidationErrorMatchesErrInvalid(t *testing.T) {
	in := models.MessageInput{Content: "hi"}
	err := asValidationError(in.Validate())

	assert.ErrorIs(t, err, ErrInvalid)
	assert.False(t, errors.Is(err, ErrNotFound))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "sender", verr.Field)
	assert.Equal(t, "invalid sender: must not be empty", verr.Error())

	wrapped := fmt.Errorf("mark attendance: %w", err)
	assert.ErrorIs(t, wrapped, ErrInvalid)
}

func TestValidationErrorForDates(t *testing.T) {
	in := models.AttendanceInput{Date: "01/02/2024", Status: "Present"}
	err := asValidationError(in.Validate())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Field)
	assert.Equal(t, "must be a date in 2006-01-02 format", verr.Reason)
}

func TestValidationErrorFromPlainError(t *testing.T) {
	err := asValidationError(errors.New("boom"))
	assert.Equal(t, "invalid input: boom", err.Error())
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSearchHelpers(t *testing.T) {
	testCases := []struct {
		query     string
		digits    bool
		canonical string
	}{
		{"7", true, "7"},
		{"007", true, "7"},
		{"000", true, "0"},
		{"12a", false, ""},
		{"-3", false, ""},
		{"١٢", false, ""},
		{"", false, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.digits, isDigits(tc.query))
			if tc.digits {
				assert.Equal(t, tc.canonical, canonicalNumber(tc.query))
			}
		})
	}

	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
	assert.Equal(t, "anna", escapeLike("anna"))
}

func TestValidationErrorForLength(t *testing.T) {
	in := models.StudentInput{Gender: "unspecified-value"}
	err := asValidationError(in.Validate())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "gender", verr.Field)
	assert.Equal(t, "must be at most 10 characters", verr.Reason)
}
