package utils

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ApiError is the body of every failed response: {"error": "..."}.
type ApiError struct {
	StatusCode int    `json:"-"`
	Msg        string `json:"error,omitempty"`
}

const (
	contentTypeJSON = "application/json"
	maxJSONBody     = 1 << 20
)

func (o *ApiError) Error() string {
	return fmt.Sprintf("%d: %s", o.StatusCode, o.Msg)
}

// JsonDecodeBody reads at most 1 MiB of the request body into dst.
func JsonDecodeBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

func NewInternalServerError(msg string) ApiError {
	return ApiError{http.StatusInternalServerError, msg}
}

func NewBadRequest(msg string) ApiError {
	return ApiError{http.StatusBadRequest, msg}
}

func NewUnauthorized(msg string) ApiError {
	return ApiError{http.StatusUnauthorized, msg}
}

func NewForbidden(msg string) ApiError {
	return ApiError{http.StatusForbidden, msg}
}

// RenderResponse writes res as JSON. HEAD requests and 204 responses carry
// headers only. A value that cannot be encoded becomes a 500.
func RenderResponse(r *http.Request, w http.ResponseWriter, statusCode int, res interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)

	var body []byte
	if res != nil && statusCode != http.StatusNoContent {
		var err error
		body, err = json.Marshal(res)
		if err != nil {
			ae := NewInternalServerError("internal server error")
			statusCode = ae.StatusCode
			body, _ = json.Marshal(&ae)
		}
	}

	w.WriteHeader(statusCode)
	if r.Method != http.MethodHead && len(body) > 0 {
		w.Write(body)
	}
}

func AllowedMethods(next http.HandlerFunc, methods ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !lo.Contains(methods, r.Method) {
			w.Header().Set("Allow", strings.Join(methods, ", "))
			RenderResponse(r, w, http.StatusMethodNotAllowed, nil)
			return
		}
		next(w, r)
	}
}

func AllowedContentTypes(next http.HandlerFunc, mediaTypes ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if !lo.Contains(mediaTypes, mt) {
			RenderResponse(r, w, http.StatusUnsupportedMediaType, nil)
			return
		}
		next(w, r)
	}
}

// EncodeCursor packs the (created_at, id) position of the last row returned.
func EncodeCursor(t time.Time, id uuid.UUID) string {
	cursor := fmt.Sprintf("%s,%s", t.Format(time.RFC3339Nano), id.String())
	return base64.StdEncoding.EncodeToString([]byte(cursor))
}

func DecodeCursor(encoded string) (time.Time, uuid.UUID, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("decoding cursor: %w", err)
	}
	rawTime, rawID, ok := strings.Cut(string(decoded), ",")
	if !ok {
		return time.Time{}, uuid.Nil, fmt.Errorf("invalid cursor format")
	}
	t, err := time.Parse(time.RFC3339Nano, rawTime)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("cursor time: %w", err)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("cursor id: %w", err)
	}
	return t, id, nil
}
