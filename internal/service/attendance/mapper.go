package attendance

import (
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

// toRecordResponse converts a Record entity to RecordResponse. Collections are never nil
// so they serialize as [] rather than null.
func toRecordResponse(r attendance.Record) attendance.RecordResponse {
	return attendance.RecordResponse{
		ID:                    r.ID,
		EmployeeID:            r.EmployeeID,
		EmployeeName:          r.EmployeeName,
		EmployeeEmail:         r.EmployeeEmail,
		EmployeeMobile:        r.EmployeeMobile,
		Date:                  clock.DayKey(r.Date),
		ShiftID:               r.ShiftID,
		ShiftName:             r.ShiftName,
		ScheduledStart:        r.ScheduledStart,
		ScheduledEnd:          r.ScheduledEnd,
		CheckIns:              nonNil(r.CheckIns),
		CheckOuts:             nonNil(r.CheckOuts),
		Breaks:                nonNil(r.Breaks),
		NamazBreaks:           nonNil(r.NamazBreaks),
		Tasks:                 nonNil(r.Tasks),
		Status:                string(r.Status),
		TotalWorkingHours:     r.TotalWorkingHours,
		LateMinutes:           r.LateMinutes,
		EarlyDepartureMinutes: r.EarlyDepartureMinutes,
		Overtime:              r.Overtime,
		CreatedAt:             r.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:             r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toRecordResponses(records []attendance.Record) []attendance.RecordResponse {
	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, toRecordResponse(r))
	}
	return responses
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
