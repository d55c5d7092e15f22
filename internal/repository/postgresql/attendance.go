package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const recordColumns = `
	id, employee_id, employee_name, employee_email, employee_mobile, date,
	shift_id, shift_name, scheduled_start, scheduled_end,
	check_ins, check_outs, breaks, namaz_breaks, tasks,
	status, total_working_hours, late_minutes, early_departure_minutes, overtime_hours,
	created_at, updated_at`

type attendanceRepository struct {
	db  *database.DB
	loc *time.Location
}

// NewAttendanceRepository returns the record store. loc is the business timezone that
// DATE columns are anchored to when read back.
func NewAttendanceRepository(db *database.DB, loc *time.Location) attendance.AttendanceRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &attendanceRepository{db: db, loc: loc}
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	docs, err := marshalDocuments(record)
	if err != nil {
		return attendance.Record{}, err
	}

	query := `
		INSERT INTO attendance_records (
			employee_id, employee_name, employee_email, employee_mobile, date,
			shift_id, shift_name, scheduled_start, scheduled_end,
			check_ins, check_outs, breaks, namaz_breaks, tasks,
			status, total_working_hours, late_minutes, early_departure_minutes, overtime_hours
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
		)
		ON CONFLICT (employee_id, date) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		record.EmployeeID,
		record.EmployeeName,
		record.EmployeeEmail,
		record.EmployeeMobile,
		clock.DayKey(record.Date),
		record.ShiftID,
		record.ShiftName,
		record.ScheduledStart,
		record.ScheduledEnd,
		docs.checkIns,
		docs.checkOuts,
		docs.breaks,
		docs.namazBreaks,
		docs.tasks,
		string(record.Status),
		record.TotalWorkingHours,
		record.LateMinutes,
		record.EarlyDepartureMinutes,
		record.Overtime.OvertimeHours,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordExists
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	record.CreatedAt = record.CreatedAt.In(a.loc)
	record.UpdatedAt = record.UpdatedAt.In(a.loc)
	return record, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	return a.getByEmployeeAndDate(ctx, employeeID, date, false)
}

// GetByEmployeeAndDateForUpdate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	return a.getByEmployeeAndDate(ctx, employeeID, date, true)
}

func (a *attendanceRepository) getByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, forUpdate bool) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		  AND date = $2
		LIMIT 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	record, err := a.scanRecord(q.QueryRow(ctx, query, employeeID, clock.DayKey(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No record for that day yet
		}
		return nil, fmt.Errorf("failed to get attendance record by employee and date: %w", err)
	}

	return &record, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, record attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	docs, err := marshalDocuments(record)
	if err != nil {
		return err
	}

	query := `
		UPDATE attendance_records SET
			shift_id = $2,
			shift_name = $3,
			scheduled_start = $4,
			scheduled_end = $5,
			check_ins = $6,
			check_outs = $7,
			breaks = $8,
			namaz_breaks = $9,
			tasks = $10,
			status = $11,
			total_working_hours = $12,
			late_minutes = $13,
			early_departure_minutes = $14,
			overtime_hours = $15,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		record.ID,
		record.ShiftID,
		record.ShiftName,
		record.ScheduledStart,
		record.ScheduledEnd,
		docs.checkIns,
		docs.checkOuts,
		docs.breaks,
		docs.namazBreaks,
		docs.tasks,
		string(record.Status),
		record.TotalWorkingHours,
		record.LateMinutes,
		record.EarlyDepartureMinutes,
		record.Overtime.OvertimeHours,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// ListByDateRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDateRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		  AND date BETWEEN $2 AND $3
		ORDER BY date ASC`

	rows, err := q.Query(ctx, query, employeeID, clock.DayKey(start), clock.DayKey(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	return a.collectRecords(rows)
}

// GetMyAttendance implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetMyAttendance(ctx context.Context, employeeID string, filter attendance.HistoryFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "employee_id = $1"
	args := []interface{}{employeeID}
	argIdx := 2

	// Date filter
	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND date = $%d", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}

	// Date range filters
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	// Status filter
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	// Count total
	countQuery := "SELECT COUNT(*) FROM attendance_records WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	// Build ORDER BY
	orderByField := "date"
	switch filter.SortBy {
	case "status":
		orderByField = "status"
	case "total_working_hours":
		orderByField = "total_working_hours"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	// Build query with pagination
	selectQuery := fmt.Sprintf(`SELECT %s
		FROM attendance_records
		WHERE %s
		ORDER BY %s %s, date DESC
		LIMIT $%d OFFSET $%d
	`, recordColumns, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	records, err := a.collectRecords(rows)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (a *attendanceRepository) collectRecords(rows pgx.Rows) ([]attendance.Record, error) {
	var records []attendance.Record
	for rows.Next() {
		record, err := a.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}
	return records, nil
}

func (a *attendanceRepository) scanRecord(row pgx.Row) (attendance.Record, error) {
	var (
		record    attendance.Record
		date      time.Time
		status    string
		checkIns  []byte
		checkOuts []byte
		breaks    []byte
		namaz     []byte
		tasks     []byte
	)

	err := row.Scan(
		&record.ID, &record.EmployeeID, &record.EmployeeName, &record.EmployeeEmail, &record.EmployeeMobile, &date,
		&record.ShiftID, &record.ShiftName, &record.ScheduledStart, &record.ScheduledEnd,
		&checkIns, &checkOuts, &breaks, &namaz, &tasks,
		&status, &record.TotalWorkingHours, &record.LateMinutes, &record.EarlyDepartureMinutes, &record.Overtime.OvertimeHours,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}

	// DATE comes back as UTC midnight; re-anchor it to the business day.
	record.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, a.loc)
	record.ScheduledStart = record.ScheduledStart.In(a.loc)
	record.ScheduledEnd = record.ScheduledEnd.In(a.loc)
	record.CreatedAt = record.CreatedAt.In(a.loc)
	record.UpdatedAt = record.UpdatedAt.In(a.loc)
	record.Status = attendance.Status(status)

	for _, doc := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"check_ins", checkIns, &record.CheckIns},
		{"check_outs", checkOuts, &record.CheckOuts},
		{"breaks", breaks, &record.Breaks},
		{"namaz_breaks", namaz, &record.NamazBreaks},
		{"tasks", tasks, &record.Tasks},
	} {
		if len(doc.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(doc.raw, doc.dst); err != nil {
			return attendance.Record{}, fmt.Errorf("failed to decode %s: %w", doc.name, err)
		}
	}

	return record, nil
}

type recordDocuments struct {
	checkIns, checkOuts, breaks, namazBreaks, tasks string
}

func marshalDocuments(record attendance.Record) (recordDocuments, error) {
	var docs recordDocuments
	for _, doc := range []struct {
		name string
		src  any
		n    int
		dst  *string
	}{
		{"check_ins", record.CheckIns, len(record.CheckIns), &docs.checkIns},
		{"check_outs", record.CheckOuts, len(record.CheckOuts), &docs.checkOuts},
		{"breaks", record.Breaks, len(record.Breaks), &docs.breaks},
		{"namaz_breaks", record.NamazBreaks, len(record.NamazBreaks), &docs.namazBreaks},
		{"tasks", record.Tasks, len(record.Tasks), &docs.tasks},
	} {
		if doc.n == 0 {
			*doc.dst = "[]"
			continue
		}
		raw, err := json.Marshal(doc.src)
		if err != nil {
			return recordDocuments{}, fmt.Errorf("failed to encode %s: %w", doc.name, err)
		}
		*doc.dst = string(raw)
	}
	return docs, nil
}
