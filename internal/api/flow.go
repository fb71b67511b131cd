package api

import (
	"net/http"
	"time"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/chrisdamba/tacticalbooking/internal/selection"
	"github.com/chrisdamba/tacticalbooking/internal/utils"
	"github.com/google/uuid"
)

type flowView struct {
	ID     uuid.UUID            `json:"id"`
	Course *models.Course       `json:"course,omitempty"`
	Slot   *models.ScheduleSlot `json:"slot"`
	Extras []selection.Item     `json:"extras"`
	Total  int64                `json:"total"`
}

func newFlowView(id uuid.UUID, sel *selection.Selection) flowView {
	view := flowView{
		ID:     id,
		Slot:   sel.Slot(),
		Extras: sel.Items(),
		Total:  sel.CalculateTotal(),
	}
	if course, ok := sel.Course(); ok {
		view.Course = &course
	}
	return view
}

func (h *Handlers) location() *time.Location {
	if h.Location == nil {
		return time.UTC
	}
	return h.Location
}

func flowID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, models.ErrInvalidUUID
	}
	return id, nil
}

// withFlow runs fn on the caller's flow and renders the resulting view.
func (h *Handlers) withFlow(w http.ResponseWriter, r *http.Request, status int, fn func(*selection.Selection) error) {
	id, err := flowID(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	var view flowView
	err = h.Flows.Update(identity(r).UserID, id, func(sel *selection.Selection) error {
		if err := fn(sel); err != nil {
			return err
		}
		view = newFlowView(id, sel)
		return nil
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	utils.RenderResponse(r, w, status, view)
}

func (h *Handlers) StartFlow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.StartFlowRequest
		if !h.decodeAndValidate(w, r, &req) {
			return
		}

		owner := identity(r).UserID
		id, err := h.Flows.Start(owner, req.CourseID)
		if err != nil {
			h.renderError(w, r, err)
			return
		}

		var view flowView
		err = h.Flows.Update(owner, id, func(sel *selection.Selection) error {
			view = newFlowView(id, sel)
			return nil
		})
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusCreated, view)
	}
}

func (h *Handlers) GetFlow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.withFlow(w, r, http.StatusOK, func(*selection.Selection) error {
			return nil
		})
	}
}

// SelectDate picks the first open course date starting on the given day. A
// day without one clears the chosen date.
func (h *Handlers) SelectDate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SelectDateRequest
		if !h.decodeAndValidate(w, r, &req) {
			return
		}
		date, err := time.ParseInLocation(time.DateOnly, req.Date, h.location())
		if err != nil {
			renderBadRequest(w, r, "invalid date")
			return
		}
		id, err := flowID(r)
		if err != nil {
			h.renderError(w, r, err)
			return
		}

		var courseID string
		err = h.Flows.Update(identity(r).UserID, id, func(sel *selection.Selection) error {
			course, ok := sel.Course()
			if !ok {
				return models.ErrIncompleteSelection
			}
			courseID = course.ID
			return nil
		})
		if err != nil {
			h.renderError(w, r, err)
			return
		}

		// slots are loaded outside the registry lock
		slots, err := h.Bookings.AvailableSlots(r.Context(), courseID)
		if err != nil {
			h.renderError(w, r, err)
			return
		}

		h.withFlow(w, r, http.StatusOK, func(sel *selection.Selection) error {
			if course, ok := sel.Course(); !ok || course.ID != courseID {
				return models.ErrIncompleteSelection
			}
			slot, ok := selection.MatchDate(date, slots)
			if !ok {
				sel.SelectSlot(nil)
				return nil
			}
			sel.SelectSlot(&slot)
			return nil
		})
	}
}

func (h *Handlers) IncreaseExtra() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		extra, ok := h.Catalog.Extra(r.PathValue("extraID"))
		if !ok {
			h.renderError(w, r, models.ErrExtraNotFound)
			return
		}
		h.withFlow(w, r, http.StatusOK, func(sel *selection.Selection) error {
			sel.IncreaseQuantity(extra)
			return nil
		})
	}
}

func (h *Handlers) DecreaseExtra() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		extraID := r.PathValue("extraID")
		h.withFlow(w, r, http.StatusOK, func(sel *selection.Selection) error {
			sel.DecreaseQuantity(extraID)
			return nil
		})
	}
}

func (h *Handlers) DiscardFlow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := flowID(r)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		h.Flows.Discard(identity(r).UserID, id)
		utils.RenderResponse(r, w, http.StatusNoContent, nil)
	}
}

// CompleteFlow books a snapshot of the flow. The flow survives a failed
// booking so the user can pick another date.
func (h *Handlers) CompleteFlow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := flowID(r)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		owner := identity(r).UserID

		var snapshot *selection.Selection
		err = h.Flows.Update(owner, id, func(sel *selection.Selection) error {
			snapshot = sel.Clone()
			return nil
		})
		if err != nil {
			h.renderError(w, r, err)
			return
		}

		booking, err := h.Bookings.CompleteBooking(r.Context(), owner, snapshot)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		h.Flows.Discard(owner, id)
		utils.RenderResponse(r, w, http.StatusCreated, booking)
	}
}
