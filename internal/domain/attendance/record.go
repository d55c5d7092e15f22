package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

// NewBreak describes a break to append to a record. ID is assigned by the caller.
type NewBreak struct {
	ID        string
	Kind      BreakKind
	Type      string
	NamazType string
	Reason    *string
	Start     time.Time
}

// TaskUpdate is a task entry submitted together with a check-out.
type TaskUpdate struct {
	ID          string
	TimeSpent   *int
	Completed   bool
	CompletedAt *time.Time
}

// TaskPatch carries the optional fields of a task update.
type TaskPatch struct {
	Description   *string
	Priority      *string
	TimeSpent     *int
	TimeAllocated *int
	Completed     *bool
}

func (r *Record) HasCheckedIn() bool {
	return len(r.CheckIns) > 0
}

// HasOpenSession reports whether the latest check-in is still waiting for its check-out.
// Check-ins and check-outs alternate, so the counts are enough.
func (r *Record) HasOpenSession() bool {
	return len(r.CheckIns) > len(r.CheckOuts)
}

func (r *Record) HasCheckedOut() bool {
	return len(r.CheckOuts) > 0 && !r.HasOpenSession()
}

func (r *Record) LastCheckIn() *CheckIn {
	if len(r.CheckIns) == 0 {
		return nil
	}
	return &r.CheckIns[len(r.CheckIns)-1]
}

func (r *Record) LastCheckOut() *CheckOut {
	if len(r.CheckOuts) == 0 {
		return nil
	}
	return &r.CheckOuts[len(r.CheckOuts)-1]
}

func (r *Record) HasActiveBreaks() bool {
	return indexOf(r.Breaks, Break.IsActive) >= 0
}

func (r *Record) HasActiveNamazBreaks() bool {
	return indexOf(r.NamazBreaks, NamazBreak.IsActive) >= 0
}

// LateMinutesAt returns how late a check-in at `at` is once the grace period is used up.
func LateMinutesAt(scheduledStart, at time.Time) int {
	return max(0, clock.MinutesBetween(scheduledStart, at)-GracePeriodMinutes)
}

// EarlyMinutesAt returns how many minutes before the scheduled end a check-out at `at` happens.
func EarlyMinutesAt(scheduledEnd, at time.Time) int {
	return max(0, clock.MinutesBetween(at, scheduledEnd))
}

// CheckIn opens a new working session.
func (r *Record) CheckIn(at time.Time, location *Location, device *DeviceInfo) error {
	if r.HasOpenSession() {
		return ErrAlreadyCheckedIn
	}
	if last := r.LastCheckOut(); last != nil && at.Before(last.Timestamp) {
		return ErrInvalidTimestamp
	}

	lateMinutes := LateMinutesAt(r.ScheduledStart, at)
	r.CheckIns = append(r.CheckIns, CheckIn{
		Timestamp:   at,
		Location:    location,
		IsLate:      lateMinutes > 0,
		LateMinutes: lateMinutes,
		DeviceInfo:  device,
	})

	if lateMinutes > 0 {
		r.Status = StatusLate
	} else {
		r.Status = StatusPresent
	}
	r.Recompute()
	return nil
}

// CheckOut closes the open session. Preconditions are checked in a fixed order and
// nothing is changed unless all of them pass.
func (r *Record) CheckOut(at time.Time, location *Location, device *DeviceInfo, tasks []TaskUpdate) error {
	if !r.HasCheckedIn() {
		return ErrNotCheckedIn
	}
	if !r.HasOpenSession() {
		return ErrAlreadyCheckedOut
	}
	if r.HasActiveBreaks() || r.HasActiveNamazBreaks() {
		return ErrBreakInProgress
	}
	for _, t := range tasks {
		if !t.Completed {
			return ErrPendingTasks
		}
	}
	if at.Before(r.LastCheckIn().Timestamp) {
		return ErrInvalidTimestamp
	}

	for _, update := range tasks {
		i := r.taskIndex(update.ID)
		if i < 0 {
			continue
		}
		task := &r.Tasks[i]
		if update.TimeSpent != nil {
			task.TimeSpent = *update.TimeSpent
		}
		if !task.Completed {
			completedAt := at
			if update.CompletedAt != nil {
				completedAt = *update.CompletedAt
			}
			task.Completed = true
			task.CompletedAt = &completedAt
		}
	}

	earlyMinutes := EarlyMinutesAt(r.ScheduledEnd, at)
	r.CheckOuts = append(r.CheckOuts, CheckOut{
		Timestamp:      at,
		Location:       location,
		IsEarly:        earlyMinutes > 0,
		EarlyMinutes:   earlyMinutes,
		TasksCompleted: len(tasks),
		DeviceInfo:     device,
	})

	if earlyMinutes > 0 {
		r.Status = StatusEarlyDeparture
	}
	r.Recompute()
	return nil
}

// StartBreak appends an ordinary or prayer break to the open session.
func (r *Record) StartBreak(b NewBreak) error {
	if !r.HasCheckedIn() {
		return ErrNotCheckedIn
	}
	if !r.HasOpenSession() {
		return ErrAlreadyCheckedOut
	}
	if r.HasActiveBreaks() || r.HasActiveNamazBreaks() {
		return ErrBreakInProgress
	}
	if b.Start.Before(r.LastCheckIn().Timestamp) {
		return ErrInvalidTimestamp
	}

	switch b.Kind {
	case BreakKindRegular:
		r.Breaks = append(r.Breaks, Break{
			ID:     b.ID,
			Type:   b.Type,
			Start:  b.Start,
			Reason: b.Reason,
		})
	case BreakKindNamaz:
		r.NamazBreaks = append(r.NamazBreaks, NamazBreak{
			ID:        b.ID,
			NamazType: b.NamazType,
			Start:     b.Start,
		})
	default:
		return ErrInvalidBreakKind
	}
	return nil
}

// EndBreak terminates the break with the given id, looking at ordinary breaks first.
// The record status goes back to present whatever it was before.
func (r *Record) EndBreak(id string, end time.Time) error {
	if i := indexOf(r.Breaks, func(b Break) bool { return b.ID == id }); i >= 0 {
		b := &r.Breaks[i]
		if !b.IsActive() {
			return ErrAlreadyEnded
		}
		if end.Before(b.Start) {
			return ErrInvalidTimestamp
		}
		b.End = &end
	} else if i := indexOf(r.NamazBreaks, func(b NamazBreak) bool { return b.ID == id }); i >= 0 {
		b := &r.NamazBreaks[i]
		if !b.IsActive() {
			return ErrAlreadyEnded
		}
		if end.Before(b.Start) {
			return ErrInvalidTimestamp
		}
		b.End = &end
	} else {
		return ErrBreakNotFound
	}

	r.Status = StatusPresent
	r.Recompute()
	return nil
}

func (r *Record) AddTask(task Task) {
	r.Tasks = append(r.Tasks, task)
}

// UpdateTask applies patch to the task with the given id and returns the updated task.
func (r *Record) UpdateTask(id string, patch TaskPatch, now time.Time) (Task, error) {
	i := r.taskIndex(id)
	if i < 0 {
		return Task{}, ErrTaskNotFound
	}

	task := &r.Tasks[i]
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.TimeSpent != nil {
		task.TimeSpent = *patch.TimeSpent
	}
	if patch.TimeAllocated != nil {
		task.TimeAllocated = patch.TimeAllocated
	}
	if patch.Completed != nil {
		switch {
		case *patch.Completed && !task.Completed:
			task.CompletedAt = &now
		case !*patch.Completed:
			task.CompletedAt = nil
		}
		task.Completed = *patch.Completed
	}
	return *task, nil
}

func (r *Record) DeleteTask(id string) error {
	i := r.taskIndex(id)
	if i < 0 {
		return ErrTaskNotFound
	}
	r.Tasks = append(r.Tasks[:i], r.Tasks[i+1:]...)
	return nil
}

// Recompute refreshes the derived hour and minute fields. Status is left alone.
func (r *Record) Recompute() {
	r.TotalWorkingHours = Round2(r.WorkedDuration(time.Time{}).Hours())

	r.LateMinutes = 0
	if len(r.CheckIns) > 0 {
		r.LateMinutes = r.CheckIns[0].LateMinutes
	}

	r.EarlyDepartureMinutes = 0
	if r.HasCheckedOut() {
		r.EarlyDepartureMinutes = r.LastCheckOut().EarlyMinutes
	}

	shiftHours := r.ScheduledEnd.Sub(r.ScheduledStart).Hours()
	r.Overtime.OvertimeHours = Round2(max(0, r.TotalWorkingHours-shiftHours))
}

// WorkedDuration sums every check-in/check-out interval minus the break time inside it.
// A zero now counts closed sessions only; otherwise an open session runs until now.
func (r *Record) WorkedDuration(now time.Time) time.Duration {
	var total time.Duration
	for i, in := range r.CheckIns {
		var end time.Time
		switch {
		case i < len(r.CheckOuts):
			end = r.CheckOuts[i].Timestamp
		case !now.IsZero():
			end = now
		default:
			continue
		}
		if !end.After(in.Timestamp) {
			continue
		}
		total += end.Sub(in.Timestamp) - r.breakOverlap(in.Timestamp, end, now)
	}
	return max(total, 0)
}

// BreakDuration sums ordinary and prayer break time. Active breaks count up to now when now is non-zero.
func (r *Record) BreakDuration(now time.Time) time.Duration {
	var total time.Duration
	for _, s := range r.breakSpans(now) {
		total += s.end.Sub(s.start)
	}
	return total
}

type span struct {
	start, end time.Time
}

func (r *Record) breakSpans(now time.Time) []span {
	spans := make([]span, 0, len(r.Breaks)+len(r.NamazBreaks))
	add := func(start time.Time, end *time.Time) {
		switch {
		case end != nil:
			spans = append(spans, span{start, *end})
		case !now.IsZero() && now.After(start):
			spans = append(spans, span{start, now})
		}
	}
	for _, b := range r.Breaks {
		add(b.Start, b.End)
	}
	for _, b := range r.NamazBreaks {
		add(b.Start, b.End)
	}
	return spans
}

func (r *Record) breakOverlap(from, to, now time.Time) time.Duration {
	var total time.Duration
	for _, s := range r.breakSpans(now) {
		start, end := s.start, s.end
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		if end.After(start) {
			total += end.Sub(start)
		}
	}
	return total
}

func (r *Record) taskIndex(id string) int {
	return indexOf(r.Tasks, func(t Task) bool { return t.ID == id })
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
