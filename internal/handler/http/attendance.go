package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	GetToday(w http.ResponseWriter, r *http.Request)
	GetQuickStatus(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
	GetMonthly(w http.ResponseWriter, r *http.Request)
	GetSummary(w http.ResponseWriter, r *http.Request)
	GetStats(w http.ResponseWriter, r *http.Request)
	AddTask(w http.ResponseWriter, r *http.Request)
	UpdateTask(w http.ResponseWriter, r *http.Request)
	DeleteTask(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	statsService      attendance.StatsService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, statsService attendance.StatsService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		statsService:      statsService,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	employee, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	var req attendance.CheckInRequest
	if err := decodeBody(r, &req); err != nil {
		slog.Error("Failed to decode check-in request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Employee = employee
	req.DeviceInfo = deviceInfo(r, req.DeviceInfo)

	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Checked in successfully", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	employee, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	var req attendance.CheckOutRequest
	if err := decodeBody(r, &req); err != nil {
		slog.Error("Failed to decode check-out request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Employee = employee
	req.DeviceInfo = deviceInfo(r, req.DeviceInfo)

	result, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, "Checked out successfully", result)
}

// StartBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	employee, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	var req attendance.StartBreakRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Employee = employee

	result, err := h.attendanceService.StartBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Break started", result)
}

// EndBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	employee, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	var req attendance.EndBreakRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Employee = employee

	result, err := h.attendanceService.EndBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, "Break ended", result)
}

// GetToday implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetToday(w http.ResponseWriter, r *http.Request) {
	employee, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	result, err := h.attendanceService.GetToday(r.Context(), employee.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, "Today's attendance retrieved", result)
}

// GetQuickStatus implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetQuickStatus(w http.ResponseWriter, r *http.Request) {
	employee, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	result, err := h.attendanceService.GetQuickStatus(r.Context(), employee.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, "Quick status retrieved", result)
}

// GetHistory implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetHistory(w http.ResponseWriter, r *http.Request) {
	employee, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	query := r.URL.Query()
	filter := attendance.HistoryFilter{}

	// Date filter
	if date := query.Get("date"); date != "" {
		filter.Date = &date
	}

	// Date range filters
	if startDate := query.Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}

	if endDate := query.Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}

	// Status filter
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}

	// Pagination
	page := 1
	if p := query.Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	filter.Page = page

	limit := 20
	if l := query.Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			limit = limitNum
		}
	}
	filter.Limit = limit

	// Sorting
	filter.SortBy = query.Get("sort_by")
	filter.SortOrder = query.Get("sort_order")

	result, err := h.statsService.GetHistory(r.Context(), employee.ID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, "Attendance history retrieved", result)
}

// GetMonthly implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMonthly(w http.ResponseWriter, r *http.Request) {
	employee, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	filter := attendance.MonthlyFilter{Month: r.URL.Query().Get("month")}

	result, err := h.statsService.GetMonthly(r.Context(), employee.ID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, "Monthly attendance retrieved", result)
}

// GetSummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	employee, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	filter := attendance.SummaryFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	result, err := h.statsService.GetSummary(r.Context(), employee.ID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, "Attendance summary retrieved", result)
}

// GetStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetStats(w http.ResponseWriter, r *http.Request) {
	employee, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	result, err := h.statsService.GetStats(r.Context(), employee.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, "Attendance statistics retrieved", result)
}

// AddTask implements AttendanceHandler.
func (h *attendanceHandlerImpl) AddTask(w http.ResponseWriter, r *http.Request) {
	employee, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	var req attendance.AddTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Employee = employee

	result, err := h.attendanceService.AddTask(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Task added", result)
}

// UpdateTask implements AttendanceHandler.
func (h *attendanceHandlerImpl) UpdateTask(w http.ResponseWriter, r *http.Request) {
	employee, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	var req attendance.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Employee = employee
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.UpdateTask(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, "Task updated", result)
}

// DeleteTask implements AttendanceHandler.
func (h *attendanceHandlerImpl) DeleteTask(w http.ResponseWriter, r *http.Request) {
	employee, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	req := attendance.DeleteTaskRequest{
		Employee: employee,
		ID:       chi.URLParam(r, "id"),
	}

	if err := h.attendanceService.DeleteTask(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, "Task deleted", nil)
}

// decodeBody decodes an optional JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// deviceInfo fills in what the request itself reveals when the client sent no device info.
func deviceInfo(r *http.Request, provided *attendance.DeviceInfo) *attendance.DeviceInfo {
	info := attendance.DeviceInfo{}
	if provided != nil {
		info = *provided
	}
	if info.UserAgent == "" {
		info.UserAgent = r.UserAgent()
	}
	if info.IPAddress == "" {
		info.IPAddress = r.RemoteAddr
	}
	if info == (attendance.DeviceInfo{}) {
		return nil
	}
	return &info
}
