package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tutorhub/pkg/logger"
	"github.com/dmitrymomot/tutorhub/pkg/notifications"
	"github.com/dmitrymomot/tutorhub/svc/reminder"
)

// Streamer serves the caller's live event stream.
type Streamer interface {
	Stream(w http.ResponseWriter, r *http.Request, recipient string) error
}

// Reminders exposes manual reminders and reminder statistics. An empty
// requester sends on behalf of an operator.
type Reminders interface {
	SendManual(ctx context.Context, requester, bookingID string, lead notifications.ReminderLead) (int, error)
	Stats(ctx context.Context) (reminder.Stats, error)
}

// Service is the HTTP surface over the caller's own notifications.
type Service struct {
	manager   *notifications.Manager
	streamer  Streamer
	reminders Reminders
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithStreamer mounts GET /stream.
func WithStreamer(st Streamer) Option {
	return func(s *Service) {
		s.streamer = st
	}
}

// WithReminders mounts the /reminders routes.
func WithReminders(r Reminders) Option {
	return func(s *Service) {
		s.reminders = r
	}
}

func NewService(manager *notifications.Manager, opts ...Option) *Service {
	s := &Service{manager: manager, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the router. Every route requires a caller identity in the
// request context, see SetUserIDToContext and TrustedHeader. Manual reminders
// are limited to the booking's participants unless the caller has
// RoleOperator; reminder stats are operator-only.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requireUser)

	r.Get("/", s.list)
	r.Get("/unread-count", s.unreadCount)
	r.Patch("/read", s.markRead)
	r.Patch("/read-all", s.markAllRead)

	if s.streamer != nil {
		r.Get("/stream", s.stream)
	}
	if s.reminders != nil {
		r.With(s.requireOperator).Get("/reminders/stats", s.reminderStats)
		r.Post("/reminders/{bookingID}", s.sendReminder)
	}

	r.Get("/{id}", s.get)
	r.Delete("/{id}", s.delete)

	return r
}

func (s *Service) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserIDFromContext(r.Context()) == "" {
			s.fail(w, r, errUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isOperator(r.Context()) {
			s.fail(w, r, errForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.LogAttrs(r.Context(), slog.LevelError, "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.UserID(GetUserIDFromContext(r.Context())),
			logger.Error(err),
		)
		writeJSON(w, status, JSONResponse{Error: &ErrorDetail{Code: code, Message: http.StatusText(status)}})
		return
	}
	writeJSON(w, status, JSONResponse{Error: &ErrorDetail{Code: code, Message: err.Error()}})
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, key)
	}
	return v, nil
}

func (s *Service) list(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	unreadOnly := false
	if raw := r.URL.Query().Get("unreadOnly"); raw != "" {
		if unreadOnly, err = strconv.ParseBool(raw); err != nil {
			s.fail(w, r, fmt.Errorf("%w: unreadOnly must be a boolean", errBadRequest))
			return
		}
	}

	result, err := s.manager.List(r.Context(), GetUserIDFromContext(r.Context()), notifications.ListParams{
		Page:       page,
		Limit:      limit,
		UnreadOnly: unreadOnly,
		Category:   notifications.Category(r.URL.Query().Get("category")),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, http.StatusOK, result.Notifications, map[string]any{
		"total":       result.Total,
		"unreadCount": result.UnreadCount,
		"page":        result.Page,
		"limit":       result.Limit,
		"totalPages":  result.TotalPages,
	})
}

func (s *Service) unreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.manager.UnreadCount(r.Context(), GetUserIDFromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int{"unreadCount": count}, nil)
}

type markReadRequest struct {
	IDs []string `json:"ids"`
}

func (s *Service) markRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, r, fmt.Errorf("%w: invalid JSON body", errBadRequest))
		return
	}
	if len(req.IDs) == 0 {
		s.fail(w, r, fmt.Errorf("%w: ids must not be empty", errBadRequest))
		return
	}

	if err := s.manager.MarkAsRead(r.Context(), GetUserIDFromContext(r.Context()), req.IDs...); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.MarkAllRead(r.Context(), GetUserIDFromContext(r.Context())); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) get(w http.ResponseWriter, r *http.Request) {
	n, err := s.manager.Get(r.Context(), GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, n, nil)
}

func (s *Service) delete(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(r.Context(), GetUserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) stream(w http.ResponseWriter, r *http.Request) {
	if err := s.streamer.Stream(w, r, GetUserIDFromContext(r.Context())); err != nil {
		s.logger.LogAttrs(r.Context(), slog.LevelWarn, "live stream ended with error",
			logger.UserID(GetUserIDFromContext(r.Context())),
			logger.Error(err),
		)
	}
}

func (s *Service) reminderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reminders.Stats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, stats, nil)
}

func (s *Service) sendReminder(w http.ResponseWriter, r *http.Request) {
	lead := notifications.ReminderLead(r.URL.Query().Get("lead"))
	if lead == "" {
		lead = notifications.Lead24Hours
	}

	requester := GetUserIDFromContext(r.Context())
	if isOperator(r.Context()) {
		requester = ""
	}

	created, err := s.reminders.SendManual(r.Context(), requester, chi.URLParam(r, "bookingID"), lead)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusAccepted, map[string]int{"created": created}, nil)
}
