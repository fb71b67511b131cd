package selection

import (
	"time"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/samber/lo"
)

// Available drops slots that are at or over capacity.
func Available(slots []models.ScheduleSlot) []models.ScheduleSlot {
	return lo.Filter(slots, func(slot models.ScheduleSlot, _ int) bool {
		return slot.HasCapacity()
	})
}

// MatchDate finds the first slot starting on the same calendar day as date.
// Time of day is ignored; the comparison happens in date's location.
func MatchDate(date time.Time, slots []models.ScheduleSlot) (models.ScheduleSlot, bool) {
	y, m, d := date.Date()
	return lo.Find(slots, func(slot models.ScheduleSlot) bool {
		sy, sm, sd := slot.StartDate.In(date.Location()).Date()
		return sy == y && sm == m && sd == d
	})
}
