// Package flow keeps the in-progress booking flows of signed-in users. Each flow
// owns one Selection from the moment the user picks a course until the booking
// is completed or abandoned.
package flow

import (
	"sync"
	"time"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/chrisdamba/tacticalbooking/internal/selection"
	"github.com/google/uuid"
)

const DefaultTTL = 30 * time.Minute

type entry struct {
	owner   string
	sel     *selection.Selection
	touched time.Time
}

type Registry struct {
	mu      sync.Mutex
	catalog selection.CourseLookup
	flows   map[uuid.UUID]*entry
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*Registry)

func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func NewRegistry(catalog selection.CourseLookup, opts ...Option) *Registry {
	r := &Registry{
		catalog: catalog,
		flows:   make(map[uuid.UUID]*entry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start opens a new flow for owner with courseID already selected.
func (r *Registry) Start(owner, courseID string) (uuid.UUID, error) {
	sel := selection.New(r.catalog)
	sel.Reset()
	sel.SelectCourse(courseID)
	if _, ok := sel.Course(); !ok {
		return uuid.Nil, models.ErrCourseNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()
	id := uuid.New()
	r.flows[id] = &entry{owner: owner, sel: sel, touched: r.now()}
	return id, nil
}

// Update runs fn against the flow's selection while holding the registry lock.
func (r *Registry) Update(owner string, id uuid.UUID, fn func(*selection.Selection) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookupLocked(owner, id)
	if err != nil {
		return err
	}
	e.touched = r.now()
	return fn(e.sel)
}

// Discard resets and forgets the flow. Unknown flows are ignored.
func (r *Registry) Discard(owner string, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookupLocked(owner, id)
	if err != nil {
		return
	}
	e.sel.Reset()
	delete(r.flows, id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

func (r *Registry) lookupLocked(owner string, id uuid.UUID) (*entry, error) {
	e, ok := r.flows[id]
	if !ok || e.owner != owner {
		return nil, models.ErrFlowNotFound
	}
	if r.now().Sub(e.touched) > r.ttl {
		delete(r.flows, id)
		return nil, models.ErrFlowNotFound
	}
	return e, nil
}

func (r *Registry) sweepLocked() {
	now := r.now()
	for id, e := range r.flows {
		if now.Sub(e.touched) > r.ttl {
			delete(r.flows, id)
		}
	}
}
