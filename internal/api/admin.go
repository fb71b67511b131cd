package api

import (
	"net/http"
	"strconv"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/chrisdamba/tacticalbooking/internal/utils"
)

func (h *Handlers) ListRegistrants() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		req := models.GetRegistrantsRequest{Cursor: q.Get("cursor")}

		if raw := q.Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				renderBadRequest(w, r, "invalid limit")
				return
			}
			req.Limit = limit
		}
		if req.Cursor != "" {
			if _, _, err := utils.DecodeCursor(req.Cursor); err != nil {
				renderBadRequest(w, r, "invalid cursor")
				return
			}
		}

		res, err := h.Bookings.AllRegistrants(r.Context(), req)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, res)
	}
}
