package mocks

import (
	"context"
	"time"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/stretchr/testify/mock"
)

type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) GetUpcomingSlots(ctx context.Context, courseID string, from time.Time) ([]models.ScheduleSlot, error) {
	args := m.Called(ctx, courseID, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScheduleSlot), args.Error(1)
}
