package attendance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"golang.org/x/sync/errgroup"
)

type StatsServiceImpl struct {
	attendance.AttendanceRepository
	clock clock.Clock
	loc   *time.Location
}

// GetHistory implements attendance.StatsService.
func (s *StatsServiceImpl) GetHistory(ctx context.Context, employeeID string, filter attendance.HistoryFilter) (attendance.ListRecordResponse, error) {
	if employeeID == "" {
		return attendance.ListRecordResponse{}, attendance.ErrUnauthenticated
	}
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordResponse{}, err
	}

	records, total, err := s.AttendanceRepository.GetMyAttendance(ctx, employeeID, filter)
	if err != nil {
		return attendance.ListRecordResponse{}, fmt.Errorf("failed to get attendance history: %w", err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	offset := (filter.Page - 1) * filter.Limit
	showing := fmt.Sprintf("%d-%d of %d", offset+1, min(filter.Page*filter.Limit, int(total)), total)
	if offset >= int(total) {
		showing = fmt.Sprintf("0 of %d", total)
	}

	return attendance.ListRecordResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Records:    toRecordResponses(records),
	}, nil
}

// GetMonthly implements attendance.StatsService.
func (s *StatsServiceImpl) GetMonthly(ctx context.Context, employeeID string, filter attendance.MonthlyFilter) (attendance.MonthlyResponse, error) {
	if employeeID == "" {
		return attendance.MonthlyResponse{}, attendance.ErrUnauthenticated
	}
	if err := filter.Validate(); err != nil {
		return attendance.MonthlyResponse{}, err
	}

	monthStart := clock.StartOfMonth(s.now())
	if filter.Month != "" {
		parsed, err := time.ParseInLocation("2006-01", filter.Month, s.loc)
		if err != nil {
			return attendance.MonthlyResponse{}, fmt.Errorf("failed to parse month: %w", err)
		}
		monthStart = parsed
	}
	monthEnd := monthStart.AddDate(0, 1, -1)

	records, err := s.AttendanceRepository.ListByDateRange(ctx, employeeID, monthStart, monthEnd)
	if err != nil {
		return attendance.MonthlyResponse{}, fmt.Errorf("failed to list monthly records: %w", err)
	}

	return attendance.MonthlyResponse{
		Stats:   ComputeMonthly(records, monthStart.Year(), monthStart.Month()),
		Records: toRecordResponses(records),
	}, nil
}

// GetSummary implements attendance.StatsService.
func (s *StatsServiceImpl) GetSummary(ctx context.Context, employeeID string, filter attendance.SummaryFilter) (attendance.SummaryResponse, error) {
	if employeeID == "" {
		return attendance.SummaryResponse{}, attendance.ErrUnauthenticated
	}
	if err := filter.Validate(); err != nil {
		return attendance.SummaryResponse{}, err
	}

	today := clock.StartOfDay(s.now())
	start, end := clock.StartOfMonth(today), today
	if filter.StartDate != "" {
		start, _ = time.ParseInLocation(clock.DateLayout, filter.StartDate, s.loc)
	}
	if filter.EndDate != "" {
		end, _ = time.ParseInLocation(clock.DateLayout, filter.EndDate, s.loc)
	}
	if end.Before(start) {
		// only reachable when a single bound was given
		start, end = end, start
	}

	records, err := s.AttendanceRepository.ListByDateRange(ctx, employeeID, start, end)
	if err != nil {
		return attendance.SummaryResponse{}, fmt.Errorf("failed to list records for summary: %w", err)
	}

	return ComputeSummary(records, start, end), nil
}

// GetStats implements attendance.StatsService. The four windows are loaded concurrently.
func (s *StatsServiceImpl) GetStats(ctx context.Context, employeeID string) (attendance.StatsResponse, error) {
	if employeeID == "" {
		return attendance.StatsResponse{}, attendance.ErrUnauthenticated
	}

	now := s.now()
	today := clock.StartOfDay(now)
	monthStart := clock.StartOfMonth(today)
	yearStart := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, s.loc)

	var resp attendance.StatsResponse
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rec, err := s.AttendanceRepository.GetByEmployeeAndDate(gCtx, employeeID, today)
		if err != nil {
			return fmt.Errorf("failed to get today's record: %w", err)
		}
		resp.Today = ComputeDaily(rec, now)
		return nil
	})

	g.Go(func() error {
		records, err := s.AttendanceRepository.ListByDateRange(gCtx, employeeID, clock.StartOfWeek(today), today)
		if err != nil {
			return fmt.Errorf("failed to list weekly records: %w", err)
		}
		resp.Week = ComputeWeekly(records, now)
		return nil
	})

	g.Go(func() error {
		records, err := s.AttendanceRepository.ListByDateRange(gCtx, employeeID, monthStart, monthStart.AddDate(0, 1, -1))
		if err != nil {
			return fmt.Errorf("failed to list monthly records: %w", err)
		}
		resp.Month = ComputeMonthly(records, today.Year(), today.Month())
		return nil
	})

	g.Go(func() error {
		records, err := s.AttendanceRepository.ListByDateRange(gCtx, employeeID, yearStart, yearStart.AddDate(1, 0, -1))
		if err != nil {
			return fmt.Errorf("failed to list yearly records: %w", err)
		}
		resp.Year = ComputeYearly(records, today.Year())
		return nil
	})

	if err := g.Wait(); err != nil {
		return attendance.StatsResponse{}, err
	}

	return resp, nil
}

func (s *StatsServiceImpl) now() time.Time {
	return s.clock.Now().In(s.loc)
}

func NewStatsService(attendanceRepo attendance.AttendanceRepository, clk clock.Clock, loc *time.Location) attendance.StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsServiceImpl{
		AttendanceRepository: attendanceRepo,
		clock:                clk,
		loc:                  loc,
	}
}
