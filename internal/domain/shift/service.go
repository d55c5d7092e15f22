package shift

import "context"

type ShiftService interface {
	List(ctx context.Context) ([]ShiftResponse, error)
}
