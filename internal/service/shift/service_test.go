package shift

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubShiftRepository struct {
	shifts []shift.Shift
	err    error
}

func (s stubShiftRepository) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	for _, sh := range s.shifts {
		if sh.ID == id {
			return sh, nil
		}
	}
	return shift.Shift{}, shift.ErrShiftNotFound
}

func (s stubShiftRepository) List(ctx context.Context) ([]shift.Shift, error) {
	return s.shifts, s.err
}

func TestShiftService_List(t *testing.T) {
	svc := NewShiftService(stubShiftRepository{shifts: []shift.Shift{
		{ID: "a", Name: "Morning", StartTime: "08:00", EndTime: "16:00"},
		{ID: "b", Name: "Night", StartTime: "22:00", EndTime: "06:00"},
	}})

	shifts, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.False(t, shifts[0].IsOvernight)
	assert.True(t, shifts[1].IsOvernight)
}

func TestShiftService_ListEmpty(t *testing.T) {
	shifts, err := NewShiftService(stubShiftRepository{}).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, shifts)
	assert.Empty(t, shifts)
}

func TestShiftService_ListError(t *testing.T) {
	_, err := NewShiftService(stubShiftRepository{err: errors.New("boom")}).List(context.Background())
	assert.ErrorContains(t, err, "failed to list shifts")
}
