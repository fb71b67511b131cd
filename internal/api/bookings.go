package api

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/chrisdamba/tacticalbooking/internal/ports"
	"github.com/chrisdamba/tacticalbooking/internal/utils"
)

// room for multipart boundaries and the other form fields
const multipartOverhead = 1 << 20

func (h *Handlers) ListBookings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := h.Dashboard.Bookings(r.Context(), identity(r).UserID)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, views)
	}
}

func (h *Handlers) SubmitForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var detail models.BookingDetail
		if !h.decodeAndValidate(w, r, &detail) {
			return
		}
		err := h.Bookings.SubmitBookingForm(r.Context(), identity(r).UserID, r.PathValue("id"), &detail)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusNoContent, nil)
	}
}

// UploadDocument accepts the identity document as the multipart field "file".
func (h *Handlers) UploadDocument() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+multipartOverhead)
		if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.renderError(w, r, models.ErrDocumentTooLarge)
				return
			}
			renderBadRequest(w, r, "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			renderBadRequest(w, r, "missing file")
			return
		}
		defer file.Close()

		contentType, body, err := documentContentType(file, header.Header.Get("Content-Type"))
		if err != nil {
			renderBadRequest(w, r, "unreadable file")
			return
		}

		booking, err := h.Bookings.UploadDocument(r.Context(), identity(r).UserID, r.PathValue("id"), ports.Document{
			Filename:    header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Body:        body,
		})
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, booking)
	}
}

func (h *Handlers) DocumentURL(admin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h.Bookings.DocumentURL(r.Context(), identity(r).UserID, r.PathValue("id"), admin)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		utils.RenderResponse(r, w, http.StatusOK, res)
	}
}

// documentContentType trusts a declared type unless it is missing or generic,
// in which case the first bytes are sniffed.
func documentContentType(f io.Reader, declared string) (string, io.Reader, error) {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		return mt, f, nil
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), f), nil
}
