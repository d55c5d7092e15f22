package attendance

const (
	CurrentStatusCheckedOut   = "Checked out"
	CurrentStatusOnBreak      = "On break"
	CurrentStatusWorking      = "Working"
	CurrentStatusNotCheckedIn = "Not checked in"
)

type QuickStatus struct {
	CanCheckIn           bool   `json:"can_check_in"`
	CanCheckOut          bool   `json:"can_check_out"`
	HasActiveBreaks      bool   `json:"has_active_breaks"`
	HasActiveNamazBreaks bool   `json:"has_active_namaz_breaks"`
	IsCheckedIn          bool   `json:"is_checked_in"`
	HasCheckedOut        bool   `json:"has_checked_out"`
	CurrentStatus        string `json:"current_status"`
}

// ComputeQuickStatus derives the quick status of a day. A nil record means nothing happened yet.
func ComputeQuickStatus(r *Record) QuickStatus {
	if r == nil {
		return DeriveQuickStatus(false, false, false, false)
	}
	return DeriveQuickStatus(r.HasCheckedIn(), r.HasCheckedOut(), r.HasActiveBreaks(), r.HasActiveNamazBreaks())
}

func DeriveQuickStatus(hasCheckedIn, hasCheckedOut, hasActiveBreaks, hasActiveNamazBreaks bool) QuickStatus {
	qs := QuickStatus{
		CanCheckIn:           !hasCheckedIn || hasCheckedOut,
		CanCheckOut:          hasCheckedIn && !hasCheckedOut && !hasActiveBreaks && !hasActiveNamazBreaks,
		HasActiveBreaks:      hasActiveBreaks,
		HasActiveNamazBreaks: hasActiveNamazBreaks,
		IsCheckedIn:          hasCheckedIn,
		HasCheckedOut:        hasCheckedOut,
	}

	switch {
	case hasCheckedOut:
		qs.CurrentStatus = CurrentStatusCheckedOut
	case hasActiveBreaks || hasActiveNamazBreaks:
		qs.CurrentStatus = CurrentStatusOnBreak
	case hasCheckedIn:
		qs.CurrentStatus = CurrentStatusWorking
	default:
		qs.CurrentStatus = CurrentStatusNotCheckedIn
	}
	return qs
}
