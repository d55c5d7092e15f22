package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the record store. Dates are calendar days in the business timezone.
type AttendanceRepository interface {
	// Create inserts a new record and returns it with its generated id and timestamps
	Create(ctx context.Context, record Record) (Record, error)

	// GetByEmployeeAndDate returns nil, nil when the employee has no record for date
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// GetByEmployeeAndDateForUpdate is GetByEmployeeAndDate with a row lock.
	// Must be called inside a transaction.
	GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// Update persists every mutable field of an existing record
	Update(ctx context.Context, record Record) error

	// ListByDateRange returns the employee's records with start <= date <= end, oldest first
	ListByDateRange(ctx context.Context, employeeID string, start, end time.Time) ([]Record, error)

	// GetMyAttendance retrieves a filtered, paginated page of the employee's records
	GetMyAttendance(ctx context.Context, employeeID string, filter HistoryFilter) ([]Record, int64, error)
}
