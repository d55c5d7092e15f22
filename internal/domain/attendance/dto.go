package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// LIFECYCLE DTOs
// ========================================

type CheckInRequest struct {
	Employee       Employee    `json:"-"`
	Timestamp      *time.Time  `json:"timestamp,omitempty"`
	ShiftID        *string     `json:"shift_id,omitempty"`
	ScheduledStart *time.Time  `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time  `json:"scheduled_end,omitempty"`
	Location       *Location   `json:"location,omitempty"`
	DeviceInfo     *DeviceInfo `json:"device_info,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = appendEmployeeErrors(errs, r.Employee)

	if r.ShiftID != nil && !validator.IsValidUUID(*r.ShiftID) {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_id",
			Message: "shift_id must be a valid UUID",
		})
	}

	if (r.ScheduledStart == nil) != (r.ScheduledEnd == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "scheduled_end",
			Message: "scheduled_start and scheduled_end must be provided together",
		})
	} else if r.ScheduledStart != nil && !r.ScheduledEnd.After(*r.ScheduledStart) {
		errs = append(errs, validator.ValidationError{
			Field:   "scheduled_end",
			Message: "scheduled_end must be after scheduled_start",
		})
	}

	errs = appendLocationErrors(errs, r.Location)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CheckOutTask struct {
	ID          string     `json:"id"`
	TimeSpent   *int       `json:"time_spent,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type CheckOutRequest struct {
	Employee   Employee       `json:"-"`
	Timestamp  *time.Time     `json:"timestamp,omitempty"`
	Location   *Location      `json:"location,omitempty"`
	DeviceInfo *DeviceInfo    `json:"device_info,omitempty"`
	Tasks      []CheckOutTask `json:"tasks,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = appendEmployeeErrors(errs, r.Employee)

	for _, t := range r.Tasks {
		if validator.IsEmpty(t.ID) {
			errs = append(errs, validator.ValidationError{
				Field:   "tasks",
				Message: "every task must have an id",
			})
			break
		}
		if t.TimeSpent != nil && *t.TimeSpent < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "tasks",
				Message: "time_spent must not be negative",
			})
			break
		}
	}

	errs = appendLocationErrors(errs, r.Location)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// TaskUpdates converts the submitted tasks into record task updates.
func (r *CheckOutRequest) TaskUpdates() []TaskUpdate {
	updates := make([]TaskUpdate, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		updates = append(updates, TaskUpdate{
			ID:          t.ID,
			TimeSpent:   t.TimeSpent,
			Completed:   t.Completed,
			CompletedAt: t.CompletedAt,
		})
	}
	return updates
}

type StartBreakRequest struct {
	Employee  Employee `json:"-"`
	Kind      string   `json:"kind"`       // break, namaz
	Type      string   `json:"type"`       // lunch, tea, personal, other
	NamazType string   `json:"namaz_type"` // fajr, dhuhr, asr, maghrib, isha
	Reason    *string  `json:"reason,omitempty"`
}

func (r *StartBreakRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = appendEmployeeErrors(errs, r.Employee)

	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	if r.Kind == "" {
		r.Kind = string(BreakKindRegular)
	}

	switch BreakKind(r.Kind) {
	case BreakKindRegular:
		r.Type = strings.ToLower(strings.TrimSpace(r.Type))
		if r.Type == "" {
			r.Type = "other"
		}
		if !validator.IsInSlice(r.Type, validBreakTypes) {
			errs = append(errs, validator.ValidationError{
				Field:   "type",
				Message: "type must be one of: " + strings.Join(validBreakTypes, ", "),
			})
		}
	case BreakKindNamaz:
		r.NamazType = strings.ToLower(strings.TrimSpace(r.NamazType))
		if !validator.IsInSlice(r.NamazType, validNamazTypes) {
			errs = append(errs, validator.ValidationError{
				Field:   "namaz_type",
				Message: "namaz_type must be one of: " + strings.Join(validNamazTypes, ", "),
			})
		}
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be one of: break, namaz",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EndBreakRequest struct {
	Employee Employee   `json:"-"`
	BreakID  string     `json:"break_id"`
	End      *time.Time `json:"end,omitempty"`
}

func (r *EndBreakRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = appendEmployeeErrors(errs, r.Employee)

	if validator.IsEmpty(r.BreakID) {
		errs = append(errs, validator.ValidationError{
			Field:   "break_id",
			Message: "break_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type StartBreakResponse struct {
	BreakID string         `json:"break_id"`
	Kind    string         `json:"kind"`
	Record  RecordResponse `json:"record"`
}

// ========================================
// TASK DTOs
// ========================================

type AddTaskRequest struct {
	Employee      Employee `json:"-"`
	Description   string   `json:"description"`
	TimeAllocated *int     `json:"time_allocated,omitempty"`
	Priority      string   `json:"priority"`
}

func (r *AddTaskRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = appendEmployeeErrors(errs, r.Employee)

	if validator.IsEmpty(r.Description) {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description is required",
		})
	}

	if r.TimeAllocated != nil && *r.TimeAllocated < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "time_allocated",
			Message: "time_allocated must not be negative",
		})
	}

	r.Priority = strings.ToLower(strings.TrimSpace(r.Priority))
	if r.Priority == "" {
		r.Priority = "medium"
	}
	if !validator.IsInSlice(r.Priority, validPriorities) {
		errs = append(errs, validator.ValidationError{
			Field:   "priority",
			Message: "priority must be one of: low, medium, high",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateTaskRequest struct {
	Employee      Employee `json:"-"`
	ID            string   `json:"-"`
	Description   *string  `json:"description,omitempty"`
	Priority      *string  `json:"priority,omitempty"`
	TimeSpent     *int     `json:"time_spent,omitempty"`
	TimeAllocated *int     `json:"time_allocated,omitempty"`
	Completed     *bool    `json:"completed,omitempty"`
}

func (r *UpdateTaskRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = appendEmployeeErrors(errs, r.Employee)

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "task id is required",
		})
	}

	if r.Description != nil && validator.IsEmpty(*r.Description) {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description must not be empty",
		})
	}

	if r.Priority != nil {
		priority := strings.ToLower(strings.TrimSpace(*r.Priority))
		r.Priority = &priority
		if !validator.IsInSlice(priority, validPriorities) {
			errs = append(errs, validator.ValidationError{
				Field:   "priority",
				Message: "priority must be one of: low, medium, high",
			})
		}
	}

	if r.TimeSpent != nil && *r.TimeSpent < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "time_spent",
			Message: "time_spent must not be negative",
		})
	}

	if r.TimeAllocated != nil && *r.TimeAllocated < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "time_allocated",
			Message: "time_allocated must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r *UpdateTaskRequest) Patch() TaskPatch {
	return TaskPatch{
		Description:   r.Description,
		Priority:      r.Priority,
		TimeSpent:     r.TimeSpent,
		TimeAllocated: r.TimeAllocated,
		Completed:     r.Completed,
	}
}

type DeleteTaskRequest struct {
	Employee Employee
	ID       string
}

func (r *DeleteTaskRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = appendEmployeeErrors(errs, r.Employee)

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "task id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RECORD RESPONSE DTOs
// ========================================

type RecordResponse struct {
	ID                    string       `json:"id"`
	EmployeeID            string       `json:"employee_id"`
	EmployeeName          string       `json:"employee_name"`
	EmployeeEmail         string       `json:"employee_email,omitempty"`
	EmployeeMobile        string       `json:"employee_mobile,omitempty"`
	Date                  string       `json:"date"`
	ShiftID               *string      `json:"shift_id,omitempty"`
	ShiftName             string       `json:"shift_name"`
	ScheduledStart        time.Time    `json:"scheduled_start"`
	ScheduledEnd          time.Time    `json:"scheduled_end"`
	CheckIns              []CheckIn    `json:"check_ins"`
	CheckOuts             []CheckOut   `json:"check_outs"`
	Breaks                []Break      `json:"breaks"`
	NamazBreaks           []NamazBreak `json:"namaz_breaks"`
	Tasks                 []Task       `json:"tasks"`
	Status                string       `json:"status"`
	TotalWorkingHours     float64      `json:"total_working_hours"`
	LateMinutes           int          `json:"late_minutes"`
	EarlyDepartureMinutes int          `json:"early_departure_minutes"`
	Overtime              Overtime     `json:"overtime"`
	CreatedAt             string       `json:"created_at"`
	UpdatedAt             string       `json:"updated_at"`
}

type ListRecordResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Showing    string           `json:"showing"`
	Records    []RecordResponse `json:"records"`
}

// ========================================
// FILTER DTOs
// ========================================

type HistoryFilter struct {
	// Search & Filter
	Date      *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, status, total_working_hours
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	// Status validation
	if f.Status != nil {
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: " + strings.Join(validStatuses, ", "),
			})
		}
	}

	// Date validation
	if f.Date != nil && *f.Date != "" {
		if _, valid := validator.IsValidDate(*f.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	var start, end time.Time
	var startOK, endOK bool
	if f.StartDate != nil && *f.StartDate != "" {
		if start, startOK = validator.IsValidDate(*f.StartDate); !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if end, endOK = validator.IsValidDate(*f.EndDate); !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	// Sort validation
	if f.SortBy != "" {
		validSortFields := []string{"date", "status", "total_working_hours"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: date, status, total_working_hours",
			})
		}
	} else {
		f.SortBy = "date" // Default sort
	}

	if f.SortOrder != "" {
		validSortOrders := []string{"asc", "desc"}
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), validSortOrders) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// SummaryFilter bounds an aggregate over an inclusive date range. Empty dates default
// to the current month up to today.
type SummaryFilter struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

func (f *SummaryFilter) Validate() error {
	var errs validator.ValidationErrors

	var start, end time.Time
	var startOK, endOK bool
	if f.StartDate != "" {
		if start, startOK = validator.IsValidDate(f.StartDate); !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != "" {
		if end, endOK = validator.IsValidDate(f.EndDate); !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MonthlyFilter struct {
	Month string `json:"month"` // YYYY-MM, defaults to the current month
}

func (f *MonthlyFilter) Validate() error {
	if f.Month == "" {
		return nil
	}
	if _, valid := validator.IsValidMonth(f.Month); !valid {
		return validator.ValidationErrors{{
			Field:   "month",
			Message: "month must be in YYYY-MM format",
		}}
	}
	return nil
}

// ========================================
// AGGREGATE DTOs
// ========================================

type DailyStats struct {
	Date         string  `json:"date"`
	CheckInTime  *string `json:"check_in_time,omitempty"`
	WorkingHours float64 `json:"working_hours"`
	BreakMinutes int     `json:"break_minutes"`
	Status       string  `json:"status"`
}

type WeeklyStats struct {
	WeekStart           string  `json:"week_start"`
	PresentDays         int     `json:"present_days"`
	TotalDays           int     `json:"total_days"`
	LateCheckIns        int     `json:"late_check_ins"`
	TotalWorkingHours   float64 `json:"total_working_hours"`
	AverageWorkingHours float64 `json:"average_working_hours"`
	PunctualityScore    int     `json:"punctuality_score"`
}

type MonthlyStats struct {
	Month                string  `json:"month"`
	PresentDays          int     `json:"present_days"`
	TotalDays            int     `json:"total_days"`
	LateCheckIns         int     `json:"late_check_ins"`
	TotalWorkingHours    float64 `json:"total_working_hours"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	PunctualityScore     int     `json:"punctuality_score"`
	PerformanceScore     int     `json:"performance_score"`
}

type YearlyStats struct {
	Year                int     `json:"year"`
	TotalWorkingDays    int     `json:"total_working_days"`
	PresentDays         int     `json:"present_days"`
	TotalHours          float64 `json:"total_hours"`
	OvertimeHours       float64 `json:"overtime_hours"`
	AverageMonthlyHours float64 `json:"average_monthly_hours"`
}

type StatsResponse struct {
	Today DailyStats   `json:"today"`
	Week  WeeklyStats  `json:"week"`
	Month MonthlyStats `json:"month"`
	Year  YearlyStats  `json:"year"`
}

type MonthlyResponse struct {
	Stats   MonthlyStats     `json:"stats"`
	Records []RecordResponse `json:"records"`
}

type SummaryResponse struct {
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
	TotalRecords        int     `json:"total_records"`
	PresentDays         int     `json:"present_days"`
	LateDays            int     `json:"late_days"`
	EarlyDepartureDays  int     `json:"early_departure_days"`
	AbsentDays          int     `json:"absent_days"`
	WorkingDays         int     `json:"working_days"`
	TotalWorkingHours   float64 `json:"total_working_hours"`
	AverageWorkingHours float64 `json:"average_working_hours"`
	TotalBreakMinutes   int     `json:"total_break_minutes"`
	OvertimeHours       float64 `json:"overtime_hours"`
}

func appendEmployeeErrors(errs validator.ValidationErrors, e Employee) validator.ValidationErrors {
	if validator.IsEmpty(e.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	return errs
}

func appendLocationErrors(errs validator.ValidationErrors, loc *Location) validator.ValidationErrors {
	if loc == nil {
		return errs
	}
	if !validator.IsValidLatitude(loc.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "location.latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if !validator.IsValidLongitude(loc.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "location.longitude",
			Message: "longitude must be between -180 and 180",
		})
	}
	return errs
}
