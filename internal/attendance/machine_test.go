package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func testSchedule() Schedule {
	return Schedule{
		Start: testDate.Add(9 * time.Hour),  // 09:00
		End:   testDate.Add(17 * time.Hour), // 17:00
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		state  State
		action Action
		want   bool
	}{
		{StateNotStarted, ActionCheckIn, true},
		{StateNotStarted, ActionCheckOut, false},
		{StateCheckedIn, ActionCheckIn, false},
		{StateCheckedIn, ActionCheckOut, true},
		{StateCheckedOut, ActionCheckIn, false},
		{StateCheckedOut, ActionCheckOut, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.state, tc.action),
			"%s + %s", tc.state, tc.action)
	}
}

func TestApply_CheckInOnTime(t *testing.T) {
	day := NewDay("emp-1", testDate)
	ts := testDate.Add(9*time.Hour + 10*time.Minute) // within 15 min grace

	got, err := Apply(day, ActionCheckIn, ts, "face", 92, testSchedule(), 15)
	require.NoError(t, err)

	assert.Equal(t, StateCheckedIn, got.State)
	require.NotNil(t, got.CheckInAt)
	assert.Equal(t, ts, *got.CheckInAt)
	assert.Equal(t, "face", got.CheckInMethod)
	assert.Equal(t, 92.0, got.CheckInConfidence)
	assert.False(t, got.Late)

	// The input day is untouched.
	assert.Equal(t, StateNotStarted, day.State)
	assert.Nil(t, day.CheckInAt)
}

func TestApply_CheckInLate(t *testing.T) {
	day := NewDay("emp-1", testDate)
	ts := testDate.Add(9*time.Hour + 16*time.Minute) // one minute past grace

	got, err := Apply(day, ActionCheckIn, ts, "face", 85, testSchedule(), 15)
	require.NoError(t, err)
	assert.True(t, got.Late)
}

func TestApply_DuplicateCheckIn(t *testing.T) {
	day := NewDay("emp-1", testDate)
	day, err := Apply(day, ActionCheckIn, testDate.Add(9*time.Hour), "face", 90, testSchedule(), 15)
	require.NoError(t, err)

	_, err = Apply(day, ActionCheckIn, testDate.Add(9*time.Hour+time.Minute), "face", 90, testSchedule(), 15)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestApply_CheckOutBeforeCheckIn(t *testing.T) {
	day := NewDay("emp-1", testDate)
	_, err := Apply(day, ActionCheckOut, testDate.Add(17*time.Hour), "face", 90, testSchedule(), 15)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestApply_CheckOutEarly(t *testing.T) {
	day := NewDay("emp-1", testDate)
	day, err := Apply(day, ActionCheckIn, testDate.Add(9*time.Hour), "face", 90, testSchedule(), 15)
	require.NoError(t, err)

	got, err := Apply(day, ActionCheckOut, testDate.Add(15*time.Hour), "face", 88, testSchedule(), 15)
	require.NoError(t, err)
	assert.Equal(t, StateCheckedOut, got.State)
	assert.True(t, got.EarlyLeave)
}

func TestApply_CheckOutOnTime(t *testing.T) {
	day := NewDay("emp-1", testDate)
	day, _ = Apply(day, ActionCheckIn, testDate.Add(9*time.Hour), "face", 90, testSchedule(), 15)

	got, err := Apply(day, ActionCheckOut, testDate.Add(17*time.Hour+5*time.Minute), "face", 88, testSchedule(), 15)
	require.NoError(t, err)
	assert.False(t, got.EarlyLeave)
}

func TestApply_DuplicateCheckOut(t *testing.T) {
	day := NewDay("emp-1", testDate)
	day, _ = Apply(day, ActionCheckIn, testDate.Add(9*time.Hour), "face", 90, testSchedule(), 15)
	day, _ = Apply(day, ActionCheckOut, testDate.Add(17*time.Hour), "face", 88, testSchedule(), 15)

	_, err := Apply(day, ActionCheckOut, testDate.Add(17*time.Hour+time.Minute), "face", 88, testSchedule(), 15)
	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
}

func TestApply_CheckInAfterCheckOut(t *testing.T) {
	day := NewDay("emp-1", testDate)
	day, _ = Apply(day, ActionCheckIn, testDate.Add(9*time.Hour), "face", 90, testSchedule(), 15)
	day, _ = Apply(day, ActionCheckOut, testDate.Add(17*time.Hour), "face", 88, testSchedule(), 15)

	// Checked-out is terminal for the day.
	_, err := Apply(day, ActionCheckIn, testDate.Add(18*time.Hour), "face", 90, testSchedule(), 15)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestApply_UnknownAction(t *testing.T) {
	day := NewDay("emp-1", testDate)
	_, err := Apply(day, Action("lunch-break"), testDate, "face", 90, testSchedule(), 15)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestApply_NoScheduleSkipsClassification(t *testing.T) {
	day := NewDay("emp-1", testDate)
	got, err := Apply(day, ActionCheckIn, testDate.Add(23*time.Hour), "face", 90, Schedule{}, 15)
	require.NoError(t, err)
	assert.False(t, got.Late)
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2026, 3, 2, 18, 45, 12, 0, time.UTC)
	assert.Equal(t, testDate, DateOf(ts))
}
