package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type stubAttendanceService struct {
	attendance.AttendanceService

	checkInReq    attendance.CheckInRequest
	updateTaskReq attendance.UpdateTaskRequest
	deleteTaskReq attendance.DeleteTaskRequest
	err           error
}

func (s *stubAttendanceService) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.RecordResponse, error) {
	s.checkInReq = req
	if s.err != nil {
		return attendance.RecordResponse{}, s.err
	}
	return attendance.RecordResponse{ID: "rec-1", EmployeeID: req.Employee.ID, Status: "present", Date: "2025-03-14"}, nil
}

func (s *stubAttendanceService) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.RecordResponse, error) {
	return attendance.RecordResponse{}, s.err
}

func (s *stubAttendanceService) GetToday(ctx context.Context, employeeID string) (attendance.RecordResponse, error) {
	return attendance.RecordResponse{}, s.err
}

func (s *stubAttendanceService) GetQuickStatus(ctx context.Context, employeeID string) (attendance.QuickStatus, error) {
	return attendance.DeriveQuickStatus(true, false, true, false), s.err
}

func (s *stubAttendanceService) UpdateTask(ctx context.Context, req attendance.UpdateTaskRequest) (attendance.Task, error) {
	s.updateTaskReq = req
	return attendance.Task{ID: req.ID, Description: "updated"}, s.err
}

func (s *stubAttendanceService) DeleteTask(ctx context.Context, req attendance.DeleteTaskRequest) error {
	s.deleteTaskReq = req
	return s.err
}

type stubStatsService struct {
	attendance.StatsService

	historyFilter attendance.HistoryFilter
}

func (s *stubStatsService) GetHistory(ctx context.Context, employeeID string, filter attendance.HistoryFilter) (attendance.ListRecordResponse, error) {
	s.historyFilter = filter
	return attendance.ListRecordResponse{Page: filter.Page, Limit: filter.Limit, Showing: "0 of 0", Records: []attendance.RecordResponse{}}, nil
}

type stubShiftService struct{}

func (stubShiftService) List(ctx context.Context) ([]shift.ShiftResponse, error) {
	return []shift.ShiftResponse{{ID: "s1", Name: "Morning", StartTime: "08:00", EndTime: "16:00"}}, nil
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

type routerEnv struct {
	handler    http.Handler
	jwtService jwt.Service
	attendance *stubAttendanceService
	stats      *stubStatsService
	events     *stubSubscriber
	token      string
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()

	env := &routerEnv{
		jwtService: jwt.NewJWTService(handlerTestSecret, "1h"),
		attendance: &stubAttendanceService{},
		stats:      &stubStatsService{},
		events:     &stubSubscriber{},
	}
	env.handler = NewRouter(
		config.AppConfig{Env: "test", AllowedOrigins: []string{"http://localhost:3000"}},
		env.jwtService,
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("# metrics\n")) }),
		NewAttendanceHandler(env.attendance, env.stats),
		NewShiftHandler(stubShiftService{}),
		NewStreamHandler(env.events),
	)

	token, _, err := env.jwtService.GenerateAccessToken(jwt.Identity{
		EmployeeID: "emp-1",
		Name:       "Ayu Lestari",
		Email:      "ayu@example.com",
	})
	require.NoError(t, err)
	env.token = token
	return env
}

func (e *routerEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestRouter_RequiresAccessToken(t *testing.T) {
	env := newRouterEnv(t)
	env.token = ""

	rec, body := env.do(t, http.MethodGet, "/api/v1/attendance/today", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Message)
}

func TestRouter_RejectsNonAccessToken(t *testing.T) {
	env := newRouterEnv(t)

	_, token, err := env.jwtService.JWTAuth().Encode(map[string]interface{}{
		"employee_id": "emp-1",
		"type":        "refresh",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	env.token = token

	rec, body := env.do(t, http.MethodGet, "/api/v1/attendance/quick-status", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", body.Message)
}

func TestRouter_CheckIn(t *testing.T) {
	env := newRouterEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/v1/attendance/check-in", map[string]interface{}{
		"location": map[string]interface{}{"latitude": -6.2, "longitude": 106.8},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "Checked in successfully", body.Message)
	assert.Empty(t, body.Error)

	var data attendance.RecordResponse
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "emp-1", data.EmployeeID)

	got := env.attendance.checkInReq
	assert.Equal(t, "Ayu Lestari", got.Employee.Name)
	assert.Equal(t, "ayu@example.com", got.Employee.Email)
	require.NotNil(t, got.Location)
	assert.Equal(t, 106.8, got.Location.Longitude)
	require.NotNil(t, got.DeviceInfo)
	assert.NotEmpty(t, got.DeviceInfo.IPAddress)
}

func TestRouter_CheckInEmptyBody(t *testing.T) {
	env := newRouterEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/v1/attendance/check-in", nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, body.Success)
}

func TestRouter_MalformedBody(t *testing.T) {
	env := newRouterEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/check-in", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+env.token)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		method     string
		path       string
		wantStatus int
	}{
		{"already checked in", attendance.ErrAlreadyCheckedIn, http.MethodPost, "/api/v1/attendance/check-in", http.StatusBadRequest},
		{"break in progress", attendance.ErrBreakInProgress, http.MethodPost, "/api/v1/attendance/check-out", http.StatusBadRequest},
		{"pending tasks", attendance.ErrPendingTasks, http.MethodPost, "/api/v1/attendance/check-out", http.StatusBadRequest},
		{"no record today", attendance.ErrNoRecordForToday, http.MethodGet, "/api/v1/attendance/today", http.StatusNotFound},
		{"task not found", attendance.ErrTaskNotFound, http.MethodDelete, "/api/v1/attendance/tasks/t-9", http.StatusNotFound},
		{"shift not found", shift.ErrShiftNotFound, http.MethodPost, "/api/v1/attendance/check-in", http.StatusNotFound},
		{"record exists", attendance.ErrRecordExists, http.MethodPost, "/api/v1/attendance/check-in", http.StatusConflict},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := newRouterEnv(t)
			env.attendance.err = c.err

			rec, body := env.do(t, c.method, c.path, nil)

			assert.Equal(t, c.wantStatus, rec.Code)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestRouter_UnexpectedError(t *testing.T) {
	env := newRouterEnv(t)
	env.attendance.err = errors.New("failed to get attendance record: connection refused")

	rec, body := env.do(t, http.MethodGet, "/api/v1/attendance/today", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An unexpected error occurred", body.Message)
	assert.Equal(t, "failed to get attendance record: connection refused", body.Error)
}

func TestRouter_ValidationError(t *testing.T) {
	env := newRouterEnv(t)
	env.attendance.err = validator.ValidationErrors{{Field: "break_id", Message: "break_id is required"}}

	rec, body := env.do(t, http.MethodPost, "/api/v1/attendance/check-in", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, "break_id is required", body.Details["break_id"])
}

func TestRouter_QuickStatus(t *testing.T) {
	env := newRouterEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/attendance/quick-status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var qs attendance.QuickStatus
	require.NoError(t, json.Unmarshal(body.Data, &qs))
	assert.Equal(t, attendance.CurrentStatusOnBreak, qs.CurrentStatus)
	assert.False(t, qs.CanCheckOut)
}

func TestRouter_TaskRoutes(t *testing.T) {
	env := newRouterEnv(t)

	rec, body := env.do(t, http.MethodPut, "/api/v1/attendance/tasks/t-1", map[string]interface{}{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task updated", body.Message)
	assert.Equal(t, "t-1", env.attendance.updateTaskReq.ID)
	assert.Equal(t, "emp-1", env.attendance.updateTaskReq.Employee.ID)
	require.NotNil(t, env.attendance.updateTaskReq.Completed)
	assert.True(t, *env.attendance.updateTaskReq.Completed)

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/attendance/tasks/t-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t-2", env.attendance.deleteTaskReq.ID)
}

func TestRouter_HistoryQuery(t *testing.T) {
	env := newRouterEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/api/v1/attendance/history?page=2&limit=10&status=late&start_date=2025-03-01&sort_order=asc", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	f := env.stats.historyFilter
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 10, f.Limit)
	require.NotNil(t, f.Status)
	assert.Equal(t, "late", *f.Status)
	require.NotNil(t, f.StartDate)
	assert.Equal(t, "2025-03-01", *f.StartDate)
	assert.Nil(t, f.EndDate)
	assert.Equal(t, "asc", f.SortOrder)
}

func TestRouter_Shifts(t *testing.T) {
	env := newRouterEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/shifts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var shifts []shift.ShiftResponse
	require.NoError(t, json.Unmarshal(body.Data, &shifts))
	require.Len(t, shifts, 1)
	assert.Equal(t, "Morning", shifts[0].Name)
}

func TestRouter_PublicEndpoints(t *testing.T) {
	env := newRouterEnv(t)
	env.token = ""

	rec, _ := env.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# metrics")
}
