package api

import (
	"net/http"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/chrisdamba/tacticalbooking/internal/utils"
)

func (h *Handlers) CreateDepositSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateDepositSessionRequest
		if !h.decodeAndValidate(w, r, &req) {
			return
		}

		url, err := h.Payments.CreateDepositSession(r.Context(), identity(r).UserID, req.BookingID)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, models.CreateDepositSessionResponse{URL: url})
	}
}

func (h *Handlers) VerifyPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.VerifyPaymentRequest
		if err := utils.JsonDecodeBody(r, &req); err != nil {
			renderBadRequest(w, r, "error json decoding body")
			return
		}

		res, err := h.Payments.VerifyPayment(r.Context(), req.SessionID)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, res)
	}
}

// DashboardView is where the payment provider sends the browser back to.
func (h *Handlers) DashboardView() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := h.Dashboard.HandleReturn(r.Context(), identity(r).UserID, r.URL)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, view)
	}
}
