package attendance

import "errors"

// Attendance domain errors
var (
	// Session errors
	ErrAlreadyCheckedIn  = errors.New("you have already checked in")
	ErrNotCheckedIn      = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut = errors.New("you have already checked out")
	ErrPendingTasks      = errors.New("all submitted tasks must be completed before checking out")
	ErrInvalidTimestamp  = errors.New("timestamp is out of order with the recorded events")

	// Break errors
	ErrBreakInProgress  = errors.New("a break is still in progress")
	ErrBreakNotFound    = errors.New("break not found")
	ErrAlreadyEnded     = errors.New("break has already ended")
	ErrInvalidBreakKind = errors.New("break kind must be break or namaz")

	// General errors
	ErrNoRecordForToday = errors.New("no attendance record for today")
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrRecordExists     = errors.New("attendance record already exists for this date")
	ErrTaskNotFound     = errors.New("task not found")
	ErrUnauthenticated  = errors.New("authentication required")
)
