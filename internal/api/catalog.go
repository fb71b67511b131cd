package api

import (
	"net/http"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/chrisdamba/tacticalbooking/internal/utils"
	"github.com/samber/lo"
)

func (h *Handlers) ListCourses() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RenderResponse(r, w, http.StatusOK, h.Catalog.Courses())
	}
}

// ListExtras optionally narrows the list with ?category=.
func (h *Handlers) ListExtras() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		extras := h.Catalog.Extras()
		if c := r.URL.Query().Get("category"); c != "" {
			category := models.ExtraCategory(c)
			if !category.Valid() {
				renderBadRequest(w, r, "unknown extra category")
				return
			}
			extras = lo.Filter(extras, func(e models.Extra, _ int) bool {
				return e.Category == category
			})
		}
		utils.RenderResponse(r, w, http.StatusOK, extras)
	}
}

func (h *Handlers) ListSlots() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slots, err := h.Bookings.AvailableSlots(r.Context(), r.PathValue("id"))
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, slots)
	}
}
