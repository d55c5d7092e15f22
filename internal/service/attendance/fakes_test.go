package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

// memoryRepository is an in-memory AttendanceRepository. Records are copied on the way in
// and out so callers never share slices with the store.
type memoryRepository struct {
	mu      sync.Mutex
	records map[string]attendance.Record
	seq     int
	failGet error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[string]attendance.Record)}
}

func recordKey(employeeID string, day time.Time) string {
	return employeeID + "/" + clock.DayKey(day)
}

func (m *memoryRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := recordKey(record.EmployeeID, record.Date)
	if _, ok := m.records[key]; ok {
		return attendance.Record{}, attendance.ErrRecordExists
	}
	m.seq++
	record.ID = fmt.Sprintf("rec-%d", m.seq)
	m.records[key] = cloneRecord(record)
	return cloneRecord(record), nil
}

func (m *memoryRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failGet != nil {
		return nil, m.failGet
	}
	rec, ok := m.records[recordKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	clone := cloneRecord(rec)
	return &clone, nil
}

func (m *memoryRepository) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	return m.GetByEmployeeAndDate(ctx, employeeID, date)
}

func (m *memoryRepository) Update(ctx context.Context, record attendance.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := recordKey(record.EmployeeID, record.Date)
	if _, ok := m.records[key]; !ok {
		return attendance.ErrRecordNotFound
	}
	m.records[key] = cloneRecord(record)
	return nil
}

func (m *memoryRepository) ListByDateRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []attendance.Record
	for _, r := range m.records {
		if r.EmployeeID != employeeID || r.Date.Before(clock.StartOfDay(start)) || r.Date.After(end) {
			continue
		}
		out = append(out, cloneRecord(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *memoryRepository) GetMyAttendance(ctx context.Context, employeeID string, filter attendance.HistoryFilter) ([]attendance.Record, int64, error) {
	all, _ := m.ListByDateRange(ctx, employeeID, time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC))
	sort.Slice(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })

	from := min((filter.Page-1)*filter.Limit, len(all))
	to := min(from+filter.Limit, len(all))
	return all[from:to], int64(len(all)), nil
}

// snapshot and restore emulate a transaction rollback.
func (m *memoryRepository) snapshot() map[string]attendance.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[string]attendance.Record, len(m.records))
	for k, v := range m.records {
		snap[k] = cloneRecord(v)
	}
	return snap
}

func (m *memoryRepository) restore(snap map[string]attendance.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = snap
}

func (m *memoryRepository) put(rec attendance.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[recordKey(rec.EmployeeID, rec.Date)] = cloneRecord(rec)
}

func cloneRecord(r attendance.Record) attendance.Record {
	r.CheckIns = append([]attendance.CheckIn(nil), r.CheckIns...)
	r.CheckOuts = append([]attendance.CheckOut(nil), r.CheckOuts...)
	r.Breaks = append([]attendance.Break(nil), r.Breaks...)
	r.NamazBreaks = append([]attendance.NamazBreak(nil), r.NamazBreaks...)
	r.Tasks = append([]attendance.Task(nil), r.Tasks...)
	return r
}

// rollbackTransactor restores the repository when fn fails.
type rollbackTransactor struct {
	repo *memoryRepository
}

func (t rollbackTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.repo.snapshot()
	if err := fn(ctx); err != nil {
		t.repo.restore(snap)
		return err
	}
	return nil
}

type memoryShiftRepository map[string]shift.Shift

func (m memoryShiftRepository) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	s, ok := m[id]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return s, nil
}

func (m memoryShiftRepository) List(ctx context.Context) ([]shift.Shift, error) {
	out := make([]shift.Shift, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

// manualClock is a Clock whose time only moves when Set is called.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordedOperation struct {
	operation string
	err       error
}

type fakeRecorder struct {
	mu         sync.Mutex
	operations []recordedOperation
}

func (f *fakeRecorder) ObserveOperation(operation string, err error, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operations = append(f.operations, recordedOperation{operation, err})
}

func (f *fakeRecorder) LockSwept(int) {}
