package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

// The functions below never mutate their input, so repeated calls over the same records
// return identical results.

// ComputeDaily builds the snapshot of the day containing now. rec may be nil.
func ComputeDaily(rec *attendance.Record, now time.Time) attendance.DailyStats {
	stats := attendance.DailyStats{
		Date:   clock.DayKey(now),
		Status: string(attendance.StatusAbsent),
	}
	if rec == nil {
		return stats
	}

	stats.Date = clock.DayKey(rec.Date)
	stats.Status = string(rec.Status)
	if len(rec.CheckIns) > 0 {
		checkIn := rec.CheckIns[0].Timestamp.In(now.Location()).Format("15:04")
		stats.CheckInTime = &checkIn
	}

	if rec.HasOpenSession() {
		minutes := math.Round(rec.WorkedDuration(now).Minutes())
		stats.WorkingHours = attendance.Round2(minutes / 60)
	} else {
		stats.WorkingHours = rec.TotalWorkingHours
	}
	stats.BreakMinutes = int(math.Round(rec.BreakDuration(now).Minutes()))

	return stats
}

// ComputeWeekly aggregates the records of the week containing now, Monday through today.
func ComputeWeekly(records []attendance.Record, now time.Time) attendance.WeeklyStats {
	weekStart := clock.StartOfWeek(now)
	present, late := countPresence(records)

	totalHours := sumHours(records)
	avg := 0.0
	if present > 0 {
		avg = attendance.Round2(totalHours / float64(present))
	}

	return attendance.WeeklyStats{
		WeekStart:           clock.DayKey(weekStart),
		PresentDays:         present,
		TotalDays:           max(clock.WorkingDaysBetween(weekStart, now), clock.WeekdayIndex(now)+1),
		LateCheckIns:        late,
		TotalWorkingHours:   totalHours,
		AverageWorkingHours: avg,
		PunctualityScore:    punctualityScore(present, late),
	}
}

// ComputeMonthly aggregates the records of one calendar month.
func ComputeMonthly(records []attendance.Record, year int, month time.Month) attendance.MonthlyStats {
	present, late := countPresence(records)
	totalDays := clock.DaysInMonth(year, month)

	percentage := float64(present) / float64(totalDays) * 100
	punctuality := punctualityScore(present, late)

	return attendance.MonthlyStats{
		Month:                time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
		PresentDays:          present,
		TotalDays:            totalDays,
		LateCheckIns:         late,
		TotalWorkingHours:    sumHours(records),
		AttendancePercentage: attendance.Round2(percentage),
		PunctualityScore:     punctuality,
		PerformanceScore:     int(math.Round(percentage*0.7 + float64(punctuality)*0.3)),
	}
}

// ComputeYearly aggregates the records of one calendar year. Only days with status present
// count as present here; late days do not.
func ComputeYearly(records []attendance.Record, year int) attendance.YearlyStats {
	present := 0
	overtime := 0.0
	for _, r := range records {
		if r.Status == attendance.StatusPresent {
			present++
		}
		overtime += r.Overtime.OvertimeHours
	}

	totalHours := sumHours(records)
	return attendance.YearlyStats{
		Year:                year,
		TotalWorkingDays:    attendance.YearlyWorkingDays,
		PresentDays:         present,
		TotalHours:          totalHours,
		OvertimeHours:       attendance.Round2(overtime),
		AverageMonthlyHours: attendance.Round2(totalHours / 12),
	}
}

// ComputeSummary aggregates the records of the inclusive range [start, end].
func ComputeSummary(records []attendance.Record, start, end time.Time) attendance.SummaryResponse {
	summary := attendance.SummaryResponse{
		StartDate:    clock.DayKey(start),
		EndDate:      clock.DayKey(end),
		TotalRecords: len(records),
		WorkingDays:  clock.WorkingDaysBetween(start, end),
	}

	worked := 0
	overtime := 0.0
	for _, r := range records {
		switch r.Status {
		case attendance.StatusPresent:
			summary.PresentDays++
		case attendance.StatusLate:
			summary.LateDays++
		case attendance.StatusEarlyDeparture:
			summary.EarlyDepartureDays++
		case attendance.StatusAbsent:
			summary.AbsentDays++
		}
		if r.HasCheckedIn() {
			worked++
		}
		summary.TotalBreakMinutes += int(math.Round(r.BreakDuration(time.Time{}).Minutes()))
		overtime += r.Overtime.OvertimeHours
	}

	summary.TotalWorkingHours = sumHours(records)
	if worked > 0 {
		summary.AverageWorkingHours = attendance.Round2(summary.TotalWorkingHours / float64(worked))
	}
	summary.OvertimeHours = attendance.Round2(overtime)
	return summary
}

// countPresence counts records with status present or late, and how many of those started late.
func countPresence(records []attendance.Record) (present, late int) {
	for _, r := range records {
		if r.Status != attendance.StatusPresent && r.Status != attendance.StatusLate {
			continue
		}
		present++
		if r.LateMinutes > 0 {
			late++
		}
	}
	return present, late
}

func punctualityScore(present, late int) int {
	return int(math.Round(float64(present-late) / float64(max(present, 1)) * 100))
}

func sumHours(records []attendance.Record) float64 {
	total := 0.0
	for _, r := range records {
		total += r.TotalWorkingHours
	}
	return attendance.Round2(total)
}
