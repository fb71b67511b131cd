package selection

import (
	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/samber/lo"
)

type CourseLookup interface {
	Course(id string) (models.Course, bool)
}

type Item struct {
	Extra    models.Extra `json:"extra"`
	Quantity int          `json:"quantity"`
}

// Selection is the in-progress state of one booking flow. It is not safe for
// concurrent use; the owner serialises access.
type Selection struct {
	catalog CourseLookup
	course  *models.Course
	slot    *models.ScheduleSlot
	items   []Item
}

func New(catalog CourseLookup) *Selection {
	return &Selection{catalog: catalog}
}

// SelectCourse replaces the chosen course and always clears the chosen slot.
// An unknown id leaves no course selected.
func (s *Selection) SelectCourse(courseID string) {
	s.slot = nil
	course, ok := s.catalog.Course(courseID)
	if !ok {
		s.course = nil
		return
	}
	s.course = &course
}

// SelectSlot sets or, given nil, clears the chosen slot. The caller is
// responsible for passing a slot of the selected course.
func (s *Selection) SelectSlot(slot *models.ScheduleSlot) {
	if slot == nil {
		s.slot = nil
		return
	}
	cp := *slot
	s.slot = &cp
}

func (s *Selection) IncreaseQuantity(extra models.Extra) {
	for i := range s.items {
		if s.items[i].Extra.ID == extra.ID {
			s.items[i].Quantity++
			return
		}
	}
	s.items = append(s.items, Item{Extra: extra, Quantity: 1})
}

// DecreaseQuantity removes the entry when its quantity reaches zero.
func (s *Selection) DecreaseQuantity(extraID string) {
	for i := range s.items {
		if s.items[i].Extra.ID != extraID {
			continue
		}
		if s.items[i].Quantity > 1 {
			s.items[i].Quantity--
			return
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return
	}
}

func (s *Selection) CalculateTotal() int64 {
	if s.course == nil {
		return 0
	}
	return s.course.Price + lo.SumBy(s.items, func(item Item) int64 {
		return item.Extra.Price * int64(item.Quantity)
	})
}

func (s *Selection) Reset() {
	s.course = nil
	s.slot = nil
	s.items = nil
}

// Clone returns an independent copy sharing only the catalog.
func (s *Selection) Clone() *Selection {
	cp := &Selection{catalog: s.catalog, items: s.Items()}
	if s.course != nil {
		course := *s.course
		cp.course = &course
	}
	cp.slot = s.Slot()
	return cp
}

func (s *Selection) Course() (models.Course, bool) {
	if s.course == nil {
		return models.Course{}, false
	}
	return *s.course, true
}

func (s *Selection) Slot() *models.ScheduleSlot {
	if s.slot == nil {
		return nil
	}
	cp := *s.slot
	return &cp
}

// Items returns the chosen extras in the order they were first added.
func (s *Selection) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Selection) Quantity(extraID string) int {
	item, ok := lo.Find(s.items, func(item Item) bool {
		return item.Extra.ID == extraID
	})
	if !ok {
		return 0
	}
	return item.Quantity
}
