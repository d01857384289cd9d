package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateScan(t *testing.T) {
	testCases := []struct {
		name string
		src  interface{}
		want string
	}{
		{"time", time.Date(2024, 1, 2, 15, 4, 5, 0, time.FixedZone("x", 3600)), "2024-01-02"},
		{"string", "2024-01-02", "2024-01-02"},
		{"bytes", []byte("2024-01-02"), "2024-01-02"},
		{"timestamp text", "2024-01-02 00:00:00+00:00", "2024-01-02"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tc.src))
			assert.Equal(t, tc.want, d.String())
			assert.Equal(t, time.UTC, d.Location())
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		var d Date
		assert.Error(t, d.Scan(42))
	})
}

func TestDateValueAndJSON(t *testing.T) {
	d := NewDate(2024, time.February, 29)

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", v)

	data, err := json.Marshal(struct {
		Day  Date  `json:"day"`
		Skip *Date `json:"skip,omitempty"`
	}{Day: d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-02-29"}`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-02-29"`), &back))
	assert.True(t, back.Equal(d.Time))

	assert.Error(t, json.Unmarshal([]byte(`"29.02.2024"`), &back))
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2024-02-30")
	assert.Error(t, err)

	d, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
}
