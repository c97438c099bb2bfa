package notifications

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/tutorhub/pkg/notifications"
	"github.com/dmitrymomot/tutorhub/svc/reminder"
	"github.com/dmitrymomot/tutorhub/svc/tutoring"
)

// JSONResponse is the envelope of every JSON body.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	errUnauthorized = errors.New("authentication required")
	errForbidden    = errors.New("operator role required")
	errBadRequest   = errors.New("bad request")
)

func writeJSON(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any, meta map[string]any) {
	writeJSON(w, status, JSONResponse{Data: data, Meta: meta})
}

// errorStatus maps service errors to HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, errBadRequest),
		errors.Is(err, notifications.ErrInvalidFilter),
		errors.Is(err, notifications.ErrInvalidNotification),
		errors.Is(err, reminder.ErrInvalidLead):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, notifications.ErrNotificationNotFound),
		errors.Is(err, tutoring.ErrBookingNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, reminder.ErrBookingNotConfirmed):
		return http.StatusConflict, "booking_not_confirmed"
	case errors.Is(err, reminder.ErrReminderAlreadySent):
		return http.StatusConflict, "reminder_already_sent"
	}
	return http.StatusInternalServerError, "internal_error"
}
