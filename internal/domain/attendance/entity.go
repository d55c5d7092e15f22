package attendance

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusPresent        Status = "present"
	StatusLate           Status = "late"
	StatusEarlyDeparture Status = "early-departure"
	StatusAbsent         Status = "absent"
)

var validStatuses = []string{
	string(StatusPresent),
	string(StatusLate),
	string(StatusEarlyDeparture),
	string(StatusAbsent),
}

const (
	// GracePeriodMinutes is how long after the scheduled start a check-in still counts as on time.
	GracePeriodMinutes = 15

	// YearlyWorkingDays is the fixed number of working days assumed per year.
	YearlyWorkingDays = 252
)

type BreakKind string

const (
	BreakKindRegular BreakKind = "break"
	BreakKindNamaz   BreakKind = "namaz"
)

var (
	validBreakTypes = []string{"lunch", "tea", "personal", "other"}
	validNamazTypes = []string{"fajr", "dhuhr", "asr", "maghrib", "isha"}
	validPriorities = []string{"low", "medium", "high"}
)

// Employee is the identity snapshot of the authenticated caller.
type Employee struct {
	ID     string
	Name   string
	Email  string
	Mobile string
}

// Record is the single attendance aggregate for one employee on one calendar day.
type Record struct {
	ID             string
	EmployeeID     string
	EmployeeName   string
	EmployeeEmail  string
	EmployeeMobile string
	Date           time.Time

	ShiftID        *string
	ShiftName      string
	ScheduledStart time.Time
	ScheduledEnd   time.Time

	CheckIns    []CheckIn
	CheckOuts   []CheckOut
	Breaks      []Break
	NamazBreaks []NamazBreak
	Tasks       []Task

	Status                Status
	TotalWorkingHours     float64
	LateMinutes           int
	EarlyDepartureMinutes int
	Overtime              Overtime

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

type DeviceInfo struct {
	UserAgent string `json:"user_agent,omitempty"`
	Platform  string `json:"platform,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
}

type CheckIn struct {
	Timestamp   time.Time   `json:"timestamp"`
	Location    *Location   `json:"location,omitempty"`
	IsLate      bool        `json:"is_late"`
	LateMinutes int         `json:"late_minutes"`
	DeviceInfo  *DeviceInfo `json:"device_info,omitempty"`
}

type CheckOut struct {
	Timestamp      time.Time   `json:"timestamp"`
	Location       *Location   `json:"location,omitempty"`
	IsEarly        bool        `json:"is_early"`
	EarlyMinutes   int         `json:"early_minutes"`
	TasksCompleted int         `json:"tasks_completed"`
	DeviceInfo     *DeviceInfo `json:"device_info,omitempty"`
}

type Break struct {
	ID     string     `json:"id"`
	Type   string     `json:"type"`
	Start  time.Time  `json:"start"`
	End    *time.Time `json:"end,omitempty"`
	Reason *string    `json:"reason,omitempty"`
}

func (b Break) IsActive() bool { return b.End == nil }

func (b Break) MarshalJSON() ([]byte, error) {
	type alias Break
	return json.Marshal(struct {
		alias
		IsActive bool `json:"is_active"`
	}{alias(b), b.IsActive()})
}

// NamazBreak is a prayer break. It is kept apart from ordinary breaks but gates check-out the same way.
type NamazBreak struct {
	ID        string     `json:"id"`
	NamazType string     `json:"namaz_type"`
	Start     time.Time  `json:"start"`
	End       *time.Time `json:"end,omitempty"`
}

func (b NamazBreak) IsActive() bool { return b.End == nil }

func (b NamazBreak) MarshalJSON() ([]byte, error) {
	type alias NamazBreak
	return json.Marshal(struct {
		alias
		IsActive bool `json:"is_active"`
	}{alias(b), b.IsActive()})
}

type Task struct {
	ID            string     `json:"id"`
	Description   string     `json:"description"`
	TimeAllocated *int       `json:"time_allocated,omitempty"` // minutes
	TimeSpent     int        `json:"time_spent"`               // minutes
	Priority      string     `json:"priority"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Overtime struct {
	OvertimeHours float64 `json:"overtime_hours"`
}
