package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return testDay.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func newTestRecord() *Record {
	return &Record{
		EmployeeID:     "emp-1",
		Date:           testDay,
		ShiftName:      "Morning",
		ScheduledStart: at(8, 0),
		ScheduledEnd:   at(16, 0),
	}
}

func TestRecord_CheckInLateness(t *testing.T) {
	cases := []struct {
		name       string
		checkIn    time.Time
		wantLate   int
		wantStatus Status
	}{
		{"inside grace period", at(8, 14), 0, StatusPresent},
		{"one minute past grace", at(8, 16), 1, StatusLate},
		{"early arrival", at(7, 50), 0, StatusPresent},
		{"exactly at grace boundary", at(8, 15), 0, StatusPresent},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newTestRecord()
			require.NoError(t, r.CheckIn(c.checkIn, nil, nil))

			assert.Equal(t, c.wantLate, r.CheckIns[0].LateMinutes)
			assert.Equal(t, c.wantLate > 0, r.CheckIns[0].IsLate)
			assert.Equal(t, c.wantLate, r.LateMinutes)
			assert.Equal(t, c.wantStatus, r.Status)
		})
	}
}

func TestRecord_OneOpenSession(t *testing.T) {
	r := newTestRecord()

	assert.ErrorIs(t, r.CheckOut(at(16, 0), nil, nil, nil), ErrNotCheckedIn)

	require.NoError(t, r.CheckIn(at(8, 0), nil, nil))
	assert.ErrorIs(t, r.CheckIn(at(8, 5), nil, nil), ErrAlreadyCheckedIn)
	assert.Len(t, r.CheckIns, 1)

	require.NoError(t, r.CheckOut(at(12, 0), nil, nil, nil))
	assert.ErrorIs(t, r.CheckOut(at(12, 30), nil, nil, nil), ErrAlreadyCheckedOut)

	// a second session after checking out is allowed
	require.NoError(t, r.CheckIn(at(13, 0), nil, nil))
	assert.True(t, r.HasOpenSession())
}

func TestRecord_CheckInBeforeLastCheckOut(t *testing.T) {
	r := newTestRecord()
	require.NoError(t, r.CheckIn(at(8, 0), nil, nil))
	require.NoError(t, r.CheckOut(at(12, 0), nil, nil, nil))

	assert.ErrorIs(t, r.CheckIn(at(11, 0), nil, nil), ErrInvalidTimestamp)
	assert.ErrorIs(t, newCheckedIn(t).CheckOut(at(7, 0), nil, nil, nil), ErrInvalidTimestamp)
}

func newCheckedIn(t *testing.T) *Record {
	t.Helper()
	r := newTestRecord()
	require.NoError(t, r.CheckIn(at(8, 0), nil, nil))
	return r
}

func TestRecord_EarlyDeparture(t *testing.T) {
	r := newCheckedIn(t)
	require.NoError(t, r.CheckOut(at(15, 30), nil, nil, nil))

	out := r.LastCheckOut()
	assert.Equal(t, 30, out.EarlyMinutes)
	assert.True(t, out.IsEarly)
	assert.Equal(t, StatusEarlyDeparture, r.Status)
	assert.Equal(t, 30, r.EarlyDepartureMinutes)

	r = newTestRecord()
	require.NoError(t, r.CheckIn(at(8, 20), nil, nil))
	require.NoError(t, r.CheckOut(at(16, 5), nil, nil, nil))
	assert.Equal(t, 0, r.LastCheckOut().EarlyMinutes)
	assert.Equal(t, StatusLate, r.Status, "a punctual check-out keeps the check-in status")
	assert.Equal(t, 0, r.EarlyDepartureMinutes)
}

func TestRecord_BreakGatesCheckOut(t *testing.T) {
	for _, kind := range []BreakKind{BreakKindRegular, BreakKindNamaz} {
		t.Run(string(kind), func(t *testing.T) {
			r := newCheckedIn(t)
			require.NoError(t, r.StartBreak(NewBreak{ID: "b1", Kind: kind, Type: "lunch", NamazType: "dhuhr", Start: at(12, 0)}))

			assert.ErrorIs(t, r.CheckOut(at(16, 0), nil, nil, nil), ErrBreakInProgress)
			assert.Empty(t, r.CheckOuts)

			require.NoError(t, r.EndBreak("b1", at(12, 30)))
			require.NoError(t, r.CheckOut(at(16, 0), nil, nil, nil))
			assert.Equal(t, 7.5, r.TotalWorkingHours)
		})
	}
}

func TestRecord_PendingTasksGate(t *testing.T) {
	r := newCheckedIn(t)
	r.AddTask(Task{ID: "t1", Description: "write report", Priority: "high"})

	err := r.CheckOut(at(16, 0), nil, nil, []TaskUpdate{{ID: "t1", Completed: false}})
	assert.ErrorIs(t, err, ErrPendingTasks)
	assert.Empty(t, r.CheckOuts)

	spent := 90
	require.NoError(t, r.CheckOut(at(16, 0), nil, nil, []TaskUpdate{{ID: "t1", Completed: true, TimeSpent: &spent}}))

	task := r.Tasks[0]
	assert.True(t, task.Completed)
	assert.Equal(t, 90, task.TimeSpent)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, at(16, 0), *task.CompletedAt)
	assert.Equal(t, 1, r.LastCheckOut().TasksCompleted)
}

func TestRecord_CheckOutPreconditionOrder(t *testing.T) {
	r := newCheckedIn(t)
	require.NoError(t, r.StartBreak(NewBreak{ID: "b1", Kind: BreakKindRegular, Type: "tea", Start: at(10, 0)}))

	// an active break is reported before pending tasks
	err := r.CheckOut(at(16, 0), nil, nil, []TaskUpdate{{ID: "t1", Completed: false}})
	assert.ErrorIs(t, err, ErrBreakInProgress)

	require.NoError(t, r.EndBreak("b1", at(10, 15)))
	err = r.CheckOut(at(16, 0), nil, nil, []TaskUpdate{{ID: "t1", Completed: false}})
	assert.ErrorIs(t, err, ErrPendingTasks)
}

func TestRecord_StartBreakPreconditions(t *testing.T) {
	r := newTestRecord()
	assert.ErrorIs(t, r.StartBreak(NewBreak{ID: "b1", Kind: BreakKindRegular, Start: at(9, 0)}), ErrNotCheckedIn)

	r = newCheckedIn(t)
	require.NoError(t, r.StartBreak(NewBreak{ID: "b1", Kind: BreakKindRegular, Type: "tea", Start: at(9, 0)}))
	assert.ErrorIs(t, r.StartBreak(NewBreak{ID: "b2", Kind: BreakKindNamaz, NamazType: "dhuhr", Start: at(9, 5)}), ErrBreakInProgress)
	require.NoError(t, r.EndBreak("b1", at(9, 10)))

	assert.ErrorIs(t, r.StartBreak(NewBreak{ID: "b3", Kind: "nap", Start: at(9, 20)}), ErrInvalidBreakKind)

	require.NoError(t, r.CheckOut(at(16, 0), nil, nil, nil))
	assert.ErrorIs(t, r.StartBreak(NewBreak{ID: "b4", Kind: BreakKindRegular, Start: at(16, 30)}), ErrAlreadyCheckedOut)
}

func TestRecord_EndBreak(t *testing.T) {
	r := newTestRecord()
	require.NoError(t, r.CheckIn(at(8, 30), nil, nil))
	require.Equal(t, StatusLate, r.Status)

	require.NoError(t, r.StartBreak(NewBreak{ID: "n1", Kind: BreakKindNamaz, NamazType: "asr", Start: at(15, 0)}))
	assert.True(t, r.HasActiveNamazBreaks())

	assert.ErrorIs(t, r.EndBreak("missing", at(15, 10)), ErrBreakNotFound)
	assert.ErrorIs(t, r.EndBreak("n1", at(14, 59)), ErrInvalidTimestamp)

	require.NoError(t, r.EndBreak("n1", at(15, 10)))
	assert.False(t, r.NamazBreaks[0].IsActive())
	assert.Equal(t, StatusPresent, r.Status, "ending a break resets the status")
	assert.Equal(t, 15, r.LateMinutes, "lateness stays on the first check-in")

	assert.ErrorIs(t, r.EndBreak("n1", at(15, 20)), ErrAlreadyEnded)
}

func TestRecord_TaskCRUD(t *testing.T) {
	r := newTestRecord()
	allocated := 60
	r.AddTask(Task{ID: "t1", Description: "review", Priority: "low", TimeAllocated: &allocated})
	r.AddTask(Task{ID: "t2", Description: "deploy", Priority: "high"})

	done := true
	spent := 45
	task, err := r.UpdateTask("t1", TaskPatch{Completed: &done, TimeSpent: &spent}, at(11, 0))
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, 45, task.TimeSpent)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, at(11, 0), *task.CompletedAt)

	undone := false
	task, err = r.UpdateTask("t1", TaskPatch{Completed: &undone}, at(11, 30))
	require.NoError(t, err)
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedAt)

	_, err = r.UpdateTask("missing", TaskPatch{}, at(12, 0))
	assert.ErrorIs(t, err, ErrTaskNotFound)

	require.NoError(t, r.DeleteTask("t1"))
	assert.ErrorIs(t, r.DeleteTask("t1"), ErrTaskNotFound)
	require.Len(t, r.Tasks, 1)
	assert.Equal(t, "t2", r.Tasks[0].ID)
}

func TestRecord_WorkingHoursAcrossSessions(t *testing.T) {
	r := newTestRecord()
	require.NoError(t, r.CheckIn(at(8, 0), nil, nil))
	require.NoError(t, r.StartBreak(NewBreak{ID: "b1", Kind: BreakKindRegular, Type: "tea", Start: at(10, 0)}))
	require.NoError(t, r.EndBreak("b1", at(10, 15)))
	require.NoError(t, r.CheckOut(at(12, 0), nil, nil, nil))

	assert.Equal(t, 3.75, r.TotalWorkingHours)

	require.NoError(t, r.CheckIn(at(13, 0), nil, nil))
	require.NoError(t, r.StartBreak(NewBreak{ID: "n1", Kind: BreakKindNamaz, NamazType: "asr", Start: at(15, 0)}))

	// live duration counts the open session and the active break up to now
	live := r.WorkedDuration(at(15, 30))
	assert.Equal(t, 3*time.Hour+45*time.Minute+2*time.Hour, live)
	assert.Equal(t, 45*time.Minute, r.BreakDuration(at(15, 30)))

	require.NoError(t, r.EndBreak("n1", at(15, 15)))
	require.NoError(t, r.CheckOut(at(18, 0), nil, nil, nil))

	assert.Equal(t, 8.5, r.TotalWorkingHours)
	assert.Equal(t, 0.5, r.Overtime.OvertimeHours)
	assert.Equal(t, 0, r.EarlyDepartureMinutes)
}
