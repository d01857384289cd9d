// Package storetest holds the behaviour every RosterStore dialect must share.
package storetest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/klassbok/internal/models"
	"github.com/shrimpsizemoose/klassbok/internal/store"
)

// Factory returns an empty store that is closed when the test ends.
type Factory func(t *testing.T) *store.BaseStore

func Run(t *testing.T, newStore Factory) {
	t.Run("list active", func(t *testing.T) { testListActive(t, newStore(t)) })
	t.Run("find student", func(t *testing.T) { testFindStudent(t, newStore(t)) })
	t.Run("add conflicts with active", func(t *testing.T) { testAddConflict(t, newStore(t)) })
	t.Run("add restores deleted", func(t *testing.T) { testAddRestores(t, newStore(t)) })
	t.Run("add rejects bad date", func(t *testing.T) { testAddBadDate(t, newStore(t)) })
	t.Run("add rejects overlong fields", func(t *testing.T) { testAddTooLong(t, newStore(t)) })
	t.Run("soft delete", func(t *testing.T) { testSoftDelete(t, newStore(t)) })
	t.Run("update", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("search", func(t *testing.T) { testSearch(t, newStore(t)) })
	t.Run("attendance", func(t *testing.T) { testAttendance(t, newStore(t)) })
	t.Run("messages", func(t *testing.T) { testMessages(t, newStore(t)) })
	t.Run("purge cascades", func(t *testing.T) { testPurge(t, newStore(t)) })
}

func Input(rollNo, name, email string) models.StudentInput {
	return models.StudentInput{
		RollNo:      rollNo,
		Name:        name,
		DateOfBirth: "2010-05-17",
		Age:         13,
		Gender:      "F",
		Grade:       "8",
		Email:       email,
		Contact:     "555-0100",
	}
}

func mustAdd(t *testing.T, s *store.BaseStore, in models.StudentInput) *models.Student {
	t.Helper()
	student, restored, err := s.AddOrRestoreStudent(context.Background(), in)
	require.NoError(t, err)
	require.False(t, restored)
	return student
}

func countStudents(t *testing.T, s *store.BaseStore) int {
	t.Helper()
	var n int
	require.NoError(t, s.DB.Get(&n, `SELECT COUNT(*) FROM students`))
	return n
}

func testListActive(t *testing.T, s *store.BaseStore) {
	ctx := context.Background()

	empty, err := s.ListActiveStudents(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	first := mustAdd(t, s, Input("1", "Ann", "ann@school.test"))
	second := mustAdd(t, s, Input("2", "Bob", "bob@school.test"))
	third := mustAdd(t, s, Input("3", "Cid", "cid@school.test"))
	require.NoError(t, s.SoftDeleteStudent(ctx, second.ID))

	students, err := s.ListActiveStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, first.ID, students[0].ID)
	assert.Equal(t, third.ID, students[1].ID)

	rolls := map[string]bool{}
	emails := map[string]bool{}
	for _, st := range students {
		assert.False(t, st.Deleted)
		assert.False(t, rolls[st.RollNo], "duplicate roll number %s", st.RollNo)
		assert.False(t, emails[st.Email], "duplicate email %s", st.Email)
		rolls[st.RollNo] = true
		emails[st.Email] = true
	}

	got := students[0]
	require.NotNil(t, got.DateOfBirth)
	assert.Equal(t, "2010-05-17", got.DateOfBirth.String())
	require.NotNil(t, got.Gender)
	assert.Equal(t, "F", *got.Gender)
	assert.Equal(t, 13, got.Age)
}

func testFindStudent(t *testing.T, s *store.BaseStore) {
	ctx := context.Background()
	ann := mustAdd(t, s, Input("10", "Ann", "ann@school.test"))
	require.NoError(t, s.SoftDeleteStudent(ctx, ann.ID))

	t.Run("by roll number", func(t *testing.T) {
		got, err := s.FindStudent(ctx, "10")
		require.NoError(t, err)
		assert.Equal(t, ann.ID, got.ID)
		assert.True(t, got.Deleted)
	})

	t.Run("by email", func(t *testing.T) {
		got, err := s.FindStudent(ctx, "ann@school.test")
		require.NoError(t, err)
		assert.Equal(t, ann.ID, got.ID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.FindStudent(ctx, "nobody@school.test")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func testAddConflict(t *testing.T, s *store.BaseStore) {
	ctx := context.Background()
	ann := mustAdd(t, s, Input("1", "Ann", "ann@school.test"))

	cases := []struct {
		name string
		in   models.StudentInput
	}{
		{"same roll number", Input("1", "Other", "other@school.test")},
		{"same email", Input("99", "Other", "ann@school.test")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := s.AddOrRestoreStudent(ctx, tc.in)
			assert.ErrorIs(t, err, store.ErrConflict)
			assert.Equal(t, 1, countStudents(t, s))

			got, err := s.GetStudent(ctx, ann.ID)
			require.NoError(t, err)
			assert.Equal(t, "Ann", got.Name)
		})
	}
}

func testAddRestores(t *testing.T, s *store.BaseStore) {
	ctx := context.Background()
	old := mustAdd(t, s, Input("5", "Old Name", "old@school.test"))
	require.NoError(t, s.SoftDeleteStudent(ctx, old.ID))

	in := models.StudentInput{
		RollNo: "5",
		Name:   "New Name",
		Age:    15,
		Grade:  "10",
		Email:  "new@school.test",
	}
	got, restored, err := s.AddOrRestoreStudent(ctx, in)
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, old.ID, got.ID)

	stored, err := s.GetStudent(ctx, old.ID)
	require.NoError(t, err)
	assert.False(t, stored.Deleted)
	assert.Equal(t, "5", stored.RollNo)
	assert.Equal(t, "New Name", stored.Name)
	assert.Nil(t, stored.DateOfBirth)
	assert.Equal(t, 15, stored.Age)
	assert.Nil(t, stored.Gender)
	assert.Equal(t, "10", stored.Grade)
	assert.Equal(t, "new@school.test", stored.Email)
	assert.Nil(t, stored.Contact)
	assert.Equal(t, 1, countStudents(t, s))

	t.Run("email alone matches a deleted row", func(t *testing.T) {
		c := mustAdd(t, s, Input("30", "C", "c@school.test"))
		require.NoError(t, s.SoftDeleteStudent(ctx, c.ID))

		got, restored, err := s.AddOrRestoreStudent(ctx, Input("99", "C Again", "c@school.test"))
		require.NoError(t, err)
		assert.True(t, restored)
		assert.Equal(t, c.ID, got.ID)

		stored, err := s.GetStudent(ctx, c.ID)
		require.NoError(t, err)
		assert.False(t, stored.Deleted)
		assert.Equal(t, "99", stored.RollNo)
		assert.Equal(t, "C Again", stored.Name)
	})

	t.Run("deleted rows holding both identifiers", func(t *testing.T) {
		a := mustAdd(t, s, Input("20", "A", "a@school.test"))
		b := mustAdd(t, s, Input("21", "B", "b@school.test"))
		require.NoError(t, s.SoftDeleteStudent(ctx, a.ID))
		require.NoError(t, s.SoftDeleteStudent(ctx, b.ID))

		_, _, err := s.AddOrRestoreStudent(ctx, Input("20", "AB", "b@school.test"))
		assert.ErrorIs(t, err, store.ErrConflict)

		got, err := s.GetStudent(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, got.Deleted)
		assert.Equal(t, "A", got.Name)
	})
}

func testAddBadDate(t *testing.T, s *store.BaseStore) {
	in := Input("1", "Ann", "ann@school.test")
	in.DateOfBirth = "17/05/2010"

	_, _, err := s.AddOrRestoreStudent(context.Background(), in)
	assert.ErrorIs(t, err, store.ErrInvalid)

	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dob", verr.Field)
	assert.Equal(t, 0, countStudents(t, s))
}

func testAddTooLong(t *testing.T, s *store.BaseStore) {
	ctx := context.Background()

	cases := []struct {
		field string
		edit  func(in *models.StudentInput)
	}{
		{"name", func(in *models.StudentInput) { in.Name = strings.Repeat("n", 101) }},
		{"gender", func(in *models.StudentInput) { in.Gender = strings.Repeat("g", 11) }},
		{"contact", func(in *models.StudentInput) { in.Contact = strings.Repeat("5", 21) }},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			in := Input("1", "Ann", "ann@school.test")
			tc.edit(&in)

			_, _, err := s.AddOrRestoreStudent(ctx, in)
			var verr *store.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, 0, countStudents(t, s))
		})
	}

	ann := mustAdd(t, s, Input("1", "Ann", "ann@school.test"))
	_, _, err := s.UpsertAttendance(ctx, ann.ID, models.AttendanceInput{Date: "2024-01-01", Status: strings.Repeat("p", 11)})
	assert.ErrorIs(t, err, store.ErrInvalid)

	records, err := s.ListAttendance(ctx, ann.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func testSoftDelete(t *testing.T, s *store.BaseStore) {
	ctx := context.Background()
	ann := mustAdd(t, s, Input("1", "Ann", "ann@school.test"))

	for i := 0; i < 2; i++ {
		require.NoError(t, s.SoftDeleteStudent(ctx, ann.ID))
		got, err := s.GetStudent(ctx, ann.ID)
		require.NoError(t, err)
		assert.True(t, got.Deleted)
	}

	err := s.SoftDeleteStudent(ctx, ann.ID+100)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testUpdate(t *testing.T, s *store.BaseStore) {
	ctx := context.Background()
	ann := mustAdd(t, s, Input("1", "Ann", "ann@school.test"))
	bob := mustAdd(t, s, Input("2", "Bob", "bob@school.test"))

	t.Run("overwrites fields", func(t *testing.T) {
		in := Input("1", "Ann Marie", "ann.marie@school.test")
		in.DateOfBirth = "2011-01-02"
		in.Gender = ""
		in.Contact = ""

		got, err := s.UpdateStudent(ctx, ann.ID, in)
		require.NoError(t, err)
		assert.Equal(t, "Ann Marie", got.Name)

		stored, err := s.GetStudent(ctx, ann.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ann Marie", stored.Name)
		assert.Equal(t, "ann.marie@school.test", stored.Email)
		require.NotNil(t, stored.DateOfBirth)
		assert.Equal(t, "2011-01-02", stored.DateOfBirth.String())
		assert.Nil(t, stored.Gender)
		assert.Nil(t, stored.Contact)
	})

	t.Run("invalid date leaves row unchanged", func(t *testing.T) {
		before, err := s.GetStudent(ctx, bob.ID)
		require.NoError(t, err)

		in := Input("200", "Robert", "robert@school.test")
		in.DateOfBirth = "2011-13-45"
		_, err = s.UpdateStudent(ctx, bob.ID, in)
		assert.ErrorIs(t, err, store.ErrInvalid)

		after, err := s.GetStudent(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("missing student", func(t *testing.T) {
		_, err := s.UpdateStudent(ctx, bob.ID+100, Input("3", "X", "x@school.test"))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("collision with another student", func(t *testing.T) {
		_, err := s.UpdateStudent(ctx, bob.ID, Input("1", "Bob", "bob@school.test"))
		assert.ErrorIs(t, err, store.ErrConflict)

		got, err := s.GetStudent(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "2", got.RollNo)
	})

	t.Run("deleted student stays updatable", func(t *testing.T) {
		require.NoError(t, s.SoftDeleteStudent(ctx, bob.ID))

		got, err := s.UpdateStudent(ctx, bob.ID, Input("2", "Bobby", "bob@school.test"))
		require.NoError(t, err)
		assert.Equal(t, "Bobby", got.Name)
		assert.True(t, got.Deleted)
	})
}

func testSearch(t *testing.T, s *store.BaseStore) {
	ctx := context.Background()
	anna := mustAdd(t, s, Input("7", "Anna", "anna@school.test"))
	joanne := mustAdd(t, s, Input("8", "JoANNe", "joanne@school.test"))
	mustAdd(t, s, Input("70", "Bob", "bob@school.test"))
	gone := mustAdd(t, s, Input("9", "Annabel", "annabel@school.test"))
	require.NoError(t, s.SoftDeleteStudent(ctx, gone.ID))

	ids := func(students []models.Student) []int64 {
		out := []int64{}
		for _, st := range students {
			out = append(out, st.ID)
		}
		return out
	}

	t.Run("empty query lists active", func(t *testing.T) {
		active, err := s.ListActiveStudents(ctx)
		require.NoError(t, err)
		for _, q := range []string{"", "   "} {
			got, err := s.SearchStudents(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, ids(active), ids(got))
		}
	})

	t.Run("digits match roll number exactly", func(t *testing.T) {
		got, err := s.SearchStudents(ctx, " 7 ")
		require.NoError(t, err)
		assert.Equal(t, []int64{anna.ID}, ids(got))

		got, err = s.SearchStudents(ctx, "007")
		require.NoError(t, err)
		assert.Equal(t, []int64{anna.ID}, ids(got))
	})

	t.Run("deleted roll number is hidden", func(t *testing.T) {
		got, err := s.SearchStudents(ctx, "9")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("name substring ignores case", func(t *testing.T) {
		got, err := s.SearchStudents(ctx, "ann")
		require.NoError(t, err)
		assert.Equal(t, []int64{anna.ID, joanne.ID}, ids(got))
	})

	t.Run("like wildcards are literal", func(t *testing.T) {
		got, err := s.SearchStudents(ctx, "%")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func testAttendance(t *testing.T, s *store.BaseStore) {
	ctx := context.Background()
	ann := mustAdd(t, s, Input("1", "Ann", "ann@school.test"))

	first, created, err := s.UpsertAttendance(ctx, ann.ID, models.AttendanceInput{Date: "2024-01-01", Status: "Present"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := s.UpsertAttendance(ctx, ann.ID, models.AttendanceInput{Date: "2024-01-01", Status: "Absent"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	_, _, err = s.UpsertAttendance(ctx, ann.ID, models.AttendanceInput{Date: "2024-01-03", Status: "Present"})
	require.NoError(t, err)
	_, _, err = s.UpsertAttendance(ctx, ann.ID, models.AttendanceInput{Date: "2023-12-30", Status: "Absent"})
	require.NoError(t, err)

	records, err := s.ListAttendance(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2024-01-03", records[0].Date.String())
	assert.Equal(t, "2024-01-01", records[1].Date.String())
	assert.Equal(t, "Absent", records[1].Status)
	assert.Equal(t, "2023-12-30", records[2].Date.String())

	t.Run("missing student", func(t *testing.T) {
		_, _, err := s.UpsertAttendance(ctx, ann.ID+100, models.AttendanceInput{Date: "2024-01-01", Status: "Present"})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("bad date", func(t *testing.T) {
		_, _, err := s.UpsertAttendance(ctx, ann.ID, models.AttendanceInput{Date: "yesterday", Status: "Present"})
		assert.ErrorIs(t, err, store.ErrInvalid)
	})
}

func testMessages(t *testing.T, s *store.BaseStore) {
	ctx := context.Background()
	ann := mustAdd(t, s, Input("1", "Ann", "ann@school.test"))

	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	s.Clock = func() time.Time { return now }

	for i, content := range []string{"first", "second", "third"} {
		now = now.Add(time.Duration(i+1) * time.Minute)
		msg, err := s.AppendMessage(ctx, ann.ID, models.MessageInput{Content: content, Sender: "homeroom"})
		require.NoError(t, err)
		assert.True(t, msg.Timestamp.Equal(now))
	}

	t.Run("empty sender", func(t *testing.T) {
		_, err := s.AppendMessage(ctx, ann.ID, models.MessageInput{Content: "hello", Sender: ""})
		assert.ErrorIs(t, err, store.ErrInvalid)
	})

	t.Run("empty content", func(t *testing.T) {
		_, err := s.AppendMessage(ctx, ann.ID, models.MessageInput{Content: "", Sender: "homeroom"})
		assert.ErrorIs(t, err, store.ErrInvalid)
	})

	t.Run("missing student", func(t *testing.T) {
		_, err := s.AppendMessage(ctx, ann.ID+100, models.MessageInput{Content: "hello", Sender: "homeroom"})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	messages, err := s.ListMessages(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "third", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
	assert.Equal(t, "first", messages[2].Content)
	for i := 1; i < len(messages); i++ {
		assert.True(t, messages[i-1].Timestamp.After(messages[i].Timestamp))
	}
}

func testPurge(t *testing.T, s *store.BaseStore) {
	ctx := context.Background()
	ann := mustAdd(t, s, Input("1", "Ann", "ann@school.test"))
	bob := mustAdd(t, s, Input("2", "Bob", "bob@school.test"))

	for _, id := range []int64{ann.ID, bob.ID} {
		_, _, err := s.UpsertAttendance(ctx, id, models.AttendanceInput{Date: "2024-01-01", Status: "Present"})
		require.NoError(t, err)
		_, err = s.AppendMessage(ctx, id, models.MessageInput{Content: "hi", Sender: "office"})
		require.NoError(t, err)
	}

	require.NoError(t, s.PurgeStudent(ctx, ann.ID))

	_, err := s.GetStudent(ctx, ann.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	var orphans int
	require.NoError(t, s.DB.Get(&orphans, s.Converter(`
		SELECT (SELECT COUNT(*) FROM attendance WHERE student_id = ?)
		     + (SELECT COUNT(*) FROM messages WHERE student_id = ?)
	`), ann.ID, ann.ID))
	assert.Equal(t, 0, orphans)

	records, err := s.ListAttendance(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	assert.ErrorIs(t, s.PurgeStudent(ctx, ann.ID), store.ErrNotFound)
}
