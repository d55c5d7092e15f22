package shift

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

// Shift is a named working window, stored as HH:MM times of day.
type Shift struct {
	ID        string
	Name      string
	StartTime string // HH:MM
	EndTime   string // HH:MM
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window anchors the shift to day. A shift whose end is not after its start ends on the next day.
func (s Shift) Window(day time.Time) (start, end time.Time, err error) {
	startMin, err := clock.ParseTimeOfDay(s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endMin, err := clock.ParseTimeOfDay(s.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start = clock.AtMinuteOfDay(day, startMin)
	end = clock.AtMinuteOfDay(day, endMin)
	if !end.After(start) {
		end = clock.AtMinuteOfDay(day.AddDate(0, 0, 1), endMin)
	}
	return start, end, nil
}

func (s Shift) IsOvernight() bool {
	return s.EndTime <= s.StartTime
}

type ShiftResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsOvernight bool   `json:"is_overnight"`
}

func (s Shift) ToResponse() ShiftResponse {
	return ShiftResponse{
		ID:          s.ID,
		Name:        s.Name,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		IsOvernight: s.IsOvernight(),
	}
}
