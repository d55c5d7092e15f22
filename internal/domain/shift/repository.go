package shift

import "context"

type ShiftRepository interface {
	// GetByID returns ErrShiftNotFound when no shift has the id
	GetByID(ctx context.Context, id string) (Shift, error)

	// List returns every shift ordered by start time
	List(ctx context.Context) ([]Shift, error)
}
