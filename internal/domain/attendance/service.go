package attendance

import (
	"context"
)

// AttendanceService is the lifecycle engine: the only component that mutates records.
type AttendanceService interface {
	// CheckIn opens a working session, creating today's record on first use
	CheckIn(ctx context.Context, req CheckInRequest) (RecordResponse, error)

	// CheckOut closes the open session
	CheckOut(ctx context.Context, req CheckOutRequest) (RecordResponse, error)

	StartBreak(ctx context.Context, req StartBreakRequest) (StartBreakResponse, error)
	EndBreak(ctx context.Context, req EndBreakRequest) (RecordResponse, error)

	// AddTask adds a task to today's record, creating an absent placeholder record if needed
	AddTask(ctx context.Context, req AddTaskRequest) (Task, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (Task, error)
	DeleteTask(ctx context.Context, req DeleteTaskRequest) error

	// GetToday returns today's record or ErrNoRecordForToday
	GetToday(ctx context.Context, employeeID string) (RecordResponse, error)

	GetQuickStatus(ctx context.Context, employeeID string) (QuickStatus, error)
}

// StatsService is the read-only aggregation engine.
type StatsService interface {
	GetHistory(ctx context.Context, employeeID string, filter HistoryFilter) (ListRecordResponse, error)
	GetMonthly(ctx context.Context, employeeID string, filter MonthlyFilter) (MonthlyResponse, error)
	GetSummary(ctx context.Context, employeeID string, filter SummaryFilter) (SummaryResponse, error)

	// GetStats returns the today, week, month and year bundle
	GetStats(ctx context.Context, employeeID string) (StatsResponse, error)
}
