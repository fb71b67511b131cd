package repository

import (
	"context"
	"time"

	models "github.com/chrisdamba/tacticalbooking/internal"
)

type SlotRepository struct {
	db DBConn
}

func NewSlotRepository(db DBConn) *SlotRepository {
	return &SlotRepository{db: db}
}

func (r *SlotRepository) GetUpcomingSlots(ctx context.Context, courseID string, from time.Time) ([]models.ScheduleSlot, error) {
	query := `
        SELECT id, course_id, start_date, end_date, max_participants, current_participants
        FROM course_dates
        WHERE course_id = $1 AND start_date >= $2
        ORDER BY start_date ASC
    `
	rows, err := r.db.Query(ctx, query, courseID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := []models.ScheduleSlot{}
	for rows.Next() {
		var slot models.ScheduleSlot
		if err := rows.Scan(
			&slot.ID, &slot.CourseID, &slot.StartDate, &slot.EndDate,
			&slot.MaxParticipants, &slot.CurrentParticipants,
		); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}
