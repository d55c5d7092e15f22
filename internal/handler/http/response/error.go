package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Authentication
	case errors.Is(err, attendance.ErrUnauthenticated):
		Unauthorized(w, "Authentication required")

	// Missing entities
	case errors.Is(err, attendance.ErrNoRecordForToday):
		NotFound(w, "No attendance record found for today")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrBreakNotFound):
		NotFound(w, "Break not found")
	case errors.Is(err, attendance.ErrTaskNotFound):
		NotFound(w, "Task not found")
	case errors.Is(err, shift.ErrShiftNotFound):
		NotFound(w, "Shift not found")

	// Session state conflicts
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		BadRequest(w, "You have already checked in. Please check out first", nil)
	case errors.Is(err, attendance.ErrNotCheckedIn):
		BadRequest(w, "You have not checked in yet", nil)
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		BadRequest(w, "You have already checked out", nil)
	case errors.Is(err, attendance.ErrBreakInProgress):
		BadRequest(w, "Please end your active break first", nil)
	case errors.Is(err, attendance.ErrPendingTasks):
		BadRequest(w, "Please complete all tasks before checking out", nil)
	case errors.Is(err, attendance.ErrAlreadyEnded):
		BadRequest(w, "Break has already ended", nil)
	case errors.Is(err, attendance.ErrInvalidTimestamp):
		BadRequest(w, "Timestamp is out of order with the recorded events", nil)
	case errors.Is(err, attendance.ErrInvalidBreakKind):
		BadRequest(w, "Break kind must be break or namaz", nil)
	case errors.Is(err, attendance.ErrRecordExists):
		Conflict(w, "Attendance record already exists for this date")

	// Default
	default:
		slog.Error("unexpected error", "error", err)
		InternalServerError(w, "An unexpected error occurred", err)
	}
}
