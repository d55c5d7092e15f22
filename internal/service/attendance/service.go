package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/metrics"
	"github.com/google/uuid"
)

const customShiftName = "Custom"

// Options holds the policy knobs of the lifecycle engine.
type Options struct {
	// Location is the business timezone that decides which calendar day an event belongs to
	Location *time.Location

	// DefaultShift is used when a record is created without a named shift or explicit window
	DefaultShift shift.Shift

	// Events receives the quick status after every committed lifecycle change. Optional.
	Events EventPublisher
}

// EventPublisher is satisfied by sse.Hub.
type EventPublisher interface {
	Publish(employeeID string, event string, data interface{})
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	shift.ShiftRepository

	tx      database.Transactor
	locker  lock.Locker
	clock   clock.Clock
	metrics metrics.Recorder
	opts    Options
	newID   func() string
}

// schedule is the shift window a new record is created with.
type schedule struct {
	shiftID *string
	name    string
	start   time.Time
	end     time.Time
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	at, err := s.eventTime(req.Timestamp)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	day := clock.StartOfDay(at)

	// an overnight session carried over from yesterday must be closed first
	openDay, err := s.sessionDay(ctx, req.Employee.ID, at)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if !openDay.Equal(day) {
		return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedIn
	}

	var result attendance.Record
	err = s.mutate(ctx, "check_in", req.Employee.ID, day, func(ctx context.Context) error {
		rec, err := s.getOrCreate(ctx, req.Employee, day, func(ctx context.Context) (schedule, error) {
			return s.resolveSchedule(ctx, day, req.ShiftID, req.ScheduledStart, req.ScheduledEnd)
		})
		if err != nil {
			return err
		}

		if err := rec.CheckIn(at, req.Location, req.DeviceInfo); err != nil {
			return err
		}
		if err := s.AttendanceRepository.Update(ctx, *rec); err != nil {
			return fmt.Errorf("failed to save check-in: %w", err)
		}

		result = *rec
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	slog.Info("employee checked in",
		"employee_id", req.Employee.ID,
		"record_id", result.ID,
		"status", result.Status,
		"late_minutes", result.LateMinutes,
	)
	s.publish(req.Employee.ID, "check_in", &result)
	return toRecordResponse(result), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	at, err := s.eventTime(req.Timestamp)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	day, err := s.sessionDay(ctx, req.Employee.ID, at)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	var result attendance.Record
	err = s.mutate(ctx, "check_out", req.Employee.ID, day, func(ctx context.Context) error {
		rec, err := s.AttendanceRepository.GetByEmployeeAndDateForUpdate(ctx, req.Employee.ID, day)
		if err != nil {
			return fmt.Errorf("failed to get attendance record: %w", err)
		}
		if rec == nil {
			return attendance.ErrNotCheckedIn
		}

		if err := rec.CheckOut(at, req.Location, req.DeviceInfo, req.TaskUpdates()); err != nil {
			return err
		}
		if err := s.AttendanceRepository.Update(ctx, *rec); err != nil {
			return fmt.Errorf("failed to save check-out: %w", err)
		}

		result = *rec
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	slog.Info("employee checked out",
		"employee_id", req.Employee.ID,
		"record_id", result.ID,
		"total_working_hours", result.TotalWorkingHours,
		"early_departure_minutes", result.EarlyDepartureMinutes,
	)
	s.publish(req.Employee.ID, "check_out", &result)
	return toRecordResponse(result), nil
}

// StartBreak implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.StartBreakRequest) (attendance.StartBreakResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.StartBreakResponse{}, err
	}

	now := s.now()
	day, err := s.sessionDay(ctx, req.Employee.ID, now)
	if err != nil {
		return attendance.StartBreakResponse{}, err
	}

	newBreak := attendance.NewBreak{
		ID:        s.newID(),
		Kind:      attendance.BreakKind(req.Kind),
		Type:      req.Type,
		NamazType: req.NamazType,
		Reason:    req.Reason,
		Start:     now,
	}

	var result attendance.Record
	err = s.mutate(ctx, "start_break", req.Employee.ID, day, func(ctx context.Context) error {
		rec, err := s.AttendanceRepository.GetByEmployeeAndDateForUpdate(ctx, req.Employee.ID, day)
		if err != nil {
			return fmt.Errorf("failed to get attendance record: %w", err)
		}
		if rec == nil {
			return attendance.ErrNotCheckedIn
		}

		if err := rec.StartBreak(newBreak); err != nil {
			return err
		}
		if err := s.AttendanceRepository.Update(ctx, *rec); err != nil {
			return fmt.Errorf("failed to save break: %w", err)
		}

		result = *rec
		return nil
	})
	if err != nil {
		return attendance.StartBreakResponse{}, err
	}

	slog.Debug("break started", "employee_id", req.Employee.ID, "break_id", newBreak.ID, "kind", req.Kind)
	s.publish(req.Employee.ID, "break_start", &result)
	return attendance.StartBreakResponse{
		BreakID: newBreak.ID,
		Kind:    req.Kind,
		Record:  toRecordResponse(result),
	}, nil
}

// EndBreak implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) EndBreak(ctx context.Context, req attendance.EndBreakRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.now()
	end, err := s.eventTime(req.End)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	day, err := s.sessionDay(ctx, req.Employee.ID, now)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	var result attendance.Record
	err = s.mutate(ctx, "end_break", req.Employee.ID, day, func(ctx context.Context) error {
		rec, err := s.requireRecord(ctx, req.Employee.ID, day)
		if err != nil {
			return err
		}

		if err := rec.EndBreak(req.BreakID, end); err != nil {
			return err
		}
		if err := s.AttendanceRepository.Update(ctx, *rec); err != nil {
			return fmt.Errorf("failed to save break: %w", err)
		}

		result = *rec
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	slog.Debug("break ended", "employee_id", req.Employee.ID, "break_id", req.BreakID)
	s.publish(req.Employee.ID, "break_end", &result)
	return toRecordResponse(result), nil
}

// AddTask implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) AddTask(ctx context.Context, req attendance.AddTaskRequest) (attendance.Task, error) {
	if err := req.Validate(); err != nil {
		return attendance.Task{}, err
	}

	now := s.now()
	day, err := s.sessionDay(ctx, req.Employee.ID, now)
	if err != nil {
		return attendance.Task{}, err
	}

	task := attendance.Task{
		ID:            s.newID(),
		Description:   req.Description,
		TimeAllocated: req.TimeAllocated,
		Priority:      req.Priority,
		CreatedAt:     now,
	}

	err = s.mutate(ctx, "add_task", req.Employee.ID, day, func(ctx context.Context) error {
		rec, err := s.getOrCreate(ctx, req.Employee, day, func(context.Context) (schedule, error) {
			return s.defaultSchedule(day)
		})
		if err != nil {
			return err
		}

		rec.AddTask(task)
		if err := s.AttendanceRepository.Update(ctx, *rec); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.Task{}, err
	}

	return task, nil
}

// UpdateTask implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpdateTask(ctx context.Context, req attendance.UpdateTaskRequest) (attendance.Task, error) {
	if err := req.Validate(); err != nil {
		return attendance.Task{}, err
	}

	now := s.now()
	day, err := s.sessionDay(ctx, req.Employee.ID, now)
	if err != nil {
		return attendance.Task{}, err
	}

	var updated attendance.Task
	err = s.mutate(ctx, "update_task", req.Employee.ID, day, func(ctx context.Context) error {
		rec, err := s.requireRecord(ctx, req.Employee.ID, day)
		if err != nil {
			return err
		}

		updated, err = rec.UpdateTask(req.ID, req.Patch(), now)
		if err != nil {
			return err
		}
		if err := s.AttendanceRepository.Update(ctx, *rec); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.Task{}, err
	}

	return updated, nil
}

// DeleteTask implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteTask(ctx context.Context, req attendance.DeleteTaskRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	day, err := s.sessionDay(ctx, req.Employee.ID, s.now())
	if err != nil {
		return err
	}

	return s.mutate(ctx, "delete_task", req.Employee.ID, day, func(ctx context.Context) error {
		rec, err := s.requireRecord(ctx, req.Employee.ID, day)
		if err != nil {
			return err
		}

		if err := rec.DeleteTask(req.ID); err != nil {
			return err
		}
		if err := s.AttendanceRepository.Update(ctx, *rec); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
}

// GetToday implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context, employeeID string) (attendance.RecordResponse, error) {
	rec, err := s.today(ctx, employeeID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if rec == nil {
		return attendance.RecordResponse{}, attendance.ErrNoRecordForToday
	}
	return toRecordResponse(*rec), nil
}

// GetQuickStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetQuickStatus(ctx context.Context, employeeID string) (attendance.QuickStatus, error) {
	rec, err := s.today(ctx, employeeID)
	if err != nil {
		return attendance.QuickStatus{}, err
	}
	return attendance.ComputeQuickStatus(rec), nil
}

func (s *AttendanceServiceImpl) today(ctx context.Context, employeeID string) (*attendance.Record, error) {
	if employeeID == "" {
		return nil, attendance.ErrUnauthenticated
	}

	day, err := s.sessionDay(ctx, employeeID, s.now())
	if err != nil {
		return nil, err
	}

	rec, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return rec, nil
}

// mutate serializes fn on the (employee, day) record and runs it inside one transaction.
func (s *AttendanceServiceImpl) mutate(ctx context.Context, operation, employeeID string, day time.Time, fn func(ctx context.Context) error) (err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveOperation(operation, err, time.Since(started))
		if err != nil {
			slog.Debug("attendance operation rejected", "operation", operation, "employee_id", employeeID, "error", err)
		}
	}()

	unlock, err := s.locker.Lock(ctx, lock.RecordKey(employeeID, day))
	if err != nil {
		return fmt.Errorf("failed to lock attendance record: %w", err)
	}
	defer unlock()

	return s.tx.WithinTransaction(ctx, fn)
}

// getOrCreate loads the record for update, inserting an absent record first when there is none.
// A concurrent insert that wins the unique index is re-read instead.
func (s *AttendanceServiceImpl) getOrCreate(ctx context.Context, employee attendance.Employee, day time.Time, resolve func(context.Context) (schedule, error)) (*attendance.Record, error) {
	rec, err := s.AttendanceRepository.GetByEmployeeAndDateForUpdate(ctx, employee.ID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if rec != nil {
		return rec, nil
	}

	sched, err := resolve(ctx)
	if err != nil {
		return nil, err
	}

	created, err := s.AttendanceRepository.Create(ctx, attendance.Record{
		EmployeeID:     employee.ID,
		EmployeeName:   employee.Name,
		EmployeeEmail:  employee.Email,
		EmployeeMobile: employee.Mobile,
		Date:           day,
		ShiftID:        sched.shiftID,
		ShiftName:      sched.name,
		ScheduledStart: sched.start,
		ScheduledEnd:   sched.end,
		Status:         attendance.StatusAbsent,
	})
	if errors.Is(err, attendance.ErrRecordExists) {
		rec, err = s.AttendanceRepository.GetByEmployeeAndDateForUpdate(ctx, employee.ID, day)
		if err != nil {
			return nil, fmt.Errorf("failed to get attendance record: %w", err)
		}
		if rec == nil {
			return nil, attendance.ErrRecordNotFound
		}
		return rec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create attendance record: %w", err)
	}

	slog.Debug("attendance record created", "employee_id", employee.ID, "record_id", created.ID, "date", clock.DayKey(day))
	return &created, nil
}

func (s *AttendanceServiceImpl) requireRecord(ctx context.Context, employeeID string, day time.Time) (*attendance.Record, error) {
	rec, err := s.AttendanceRepository.GetByEmployeeAndDateForUpdate(ctx, employeeID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if rec == nil {
		return nil, attendance.ErrNoRecordForToday
	}
	return rec, nil
}

// sessionDay picks the record an operation at `at` applies to. It is the calendar day of at,
// except when today has no check-in and yesterday's overnight shift still has an open session.
func (s *AttendanceServiceImpl) sessionDay(ctx context.Context, employeeID string, at time.Time) (time.Time, error) {
	today := clock.StartOfDay(at)

	rec, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if rec != nil && rec.HasCheckedIn() {
		return today, nil
	}

	yesterday := today.AddDate(0, 0, -1)
	prev, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, yesterday)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if prev != nil && prev.HasOpenSession() && prev.ScheduledEnd.After(today) {
		return yesterday, nil
	}
	return today, nil
}

func (s *AttendanceServiceImpl) resolveSchedule(ctx context.Context, day time.Time, shiftID *string, start, end *time.Time) (schedule, error) {
	switch {
	case shiftID != nil:
		sh, err := s.ShiftRepository.GetByID(ctx, *shiftID)
		if err != nil {
			return schedule{}, err
		}
		from, to, err := sh.Window(day)
		if err != nil {
			return schedule{}, fmt.Errorf("invalid shift %s: %w", sh.ID, err)
		}
		return schedule{shiftID: &sh.ID, name: sh.Name, start: from, end: to}, nil
	case start != nil && end != nil:
		return schedule{
			name:  customShiftName,
			start: start.In(s.opts.Location),
			end:   end.In(s.opts.Location),
		}, nil
	default:
		return s.defaultSchedule(day)
	}
}

func (s *AttendanceServiceImpl) defaultSchedule(day time.Time) (schedule, error) {
	from, to, err := s.opts.DefaultShift.Window(day)
	if err != nil {
		return schedule{}, fmt.Errorf("invalid default shift: %w", err)
	}
	return schedule{name: s.opts.DefaultShift.Name, start: from, end: to}, nil
}

func (s *AttendanceServiceImpl) publish(employeeID, event string, rec *attendance.Record) {
	if s.opts.Events == nil {
		return
	}
	s.opts.Events.Publish(employeeID, event, attendance.ComputeQuickStatus(rec))
}

// eventTime returns the client supplied time in the business timezone, or now when there is none.
// Times after now are rejected.
func (s *AttendanceServiceImpl) eventTime(ts *time.Time) (time.Time, error) {
	now := s.now()
	if ts == nil {
		return now, nil
	}
	if ts.After(now) {
		return time.Time{}, attendance.ErrInvalidTimestamp
	}
	return ts.In(s.opts.Location), nil
}

func (s *AttendanceServiceImpl) now() time.Time {
	return s.clock.Now().In(s.opts.Location)
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	shiftRepo shift.ShiftRepository,
	locker lock.Locker,
	clk clock.Clock,
	recorder metrics.Recorder,
	opts Options,
) attendance.AttendanceService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if recorder == nil {
		recorder = metrics.Nop
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		ShiftRepository:      shiftRepo,
		tx:                   tx,
		locker:               locker,
		clock:                clk,
		metrics:              recorder,
		opts:                 opts,
		newID:                uuid.NewString,
	}
}
