package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"

	"github.com/dmitrymomot/tutorhub/pkg/email"
	"github.com/dmitrymomot/tutorhub/pkg/logger"
)

// Manager orchestrates notification storage and delivery.
type Manager struct {
	storage   Storage
	live      LiveChannel
	mailer    email.EmailSender
	directory Directory
	templates *templates
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
	emails    sync.WaitGroup
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for the Manager.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLiveChannel enables real-time push to connected recipients.
func WithLiveChannel(live LiveChannel) ManagerOption {
	return func(m *Manager) {
		m.live = live
	}
}

// WithMailer enables email delivery. The directory resolves recipient addresses.
func WithMailer(sender email.EmailSender, directory Directory) ManagerOption {
	return func(m *Manager) {
		m.mailer = sender
		m.directory = directory
	}
}

// WithConfig overrides DefaultConfig. Zero fields keep their defaults.
func WithConfig(cfg Config) ManagerOption {
	return func(m *Manager) {
		def := DefaultConfig()
		if cfg.EmailTimeout <= 0 {
			cfg.EmailTimeout = def.EmailTimeout
		}
		if cfg.DefaultPageLimit <= 0 {
			cfg.DefaultPageLimit = def.DefaultPageLimit
		}
		if cfg.MaxPageLimit <= 0 {
			cfg.MaxPageLimit = def.MaxPageLimit
		}
		if cfg.CleanupDaysOld <= 0 {
			cfg.CleanupDaysOld = def.CleanupDaysOld
		}
		if cfg.AppURL == "" {
			cfg.AppURL = def.AppURL
		}
		if cfg.Currency == "" {
			cfg.Currency = def.Currency
		}
		m.cfg = cfg
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new notification manager.
func NewManager(storage Storage, opts ...ManagerOption) *Manager {
	m := &Manager{
		storage: storage,
		cfg:     DefaultConfig(),
		logger:  slog.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	unit, err := currency.ParseISO(m.cfg.Currency)
	if err != nil {
		m.logger.Warn("unknown currency, falling back to USD",
			slog.String("currency", m.cfg.Currency),
			logger.Error(err),
		)
		unit = currency.USD
	}
	m.templates = newTemplates(m.cfg.AppURL, unit)

	return m
}

// CreateParams describes a notification to create.
type CreateParams struct {
	Recipient      string
	Sender         string
	Title          string
	Message        string
	Type           Type
	Category       Category
	Priority       Priority
	Data           Payload
	ActionRequired bool
	ActionURL      string
	ExpiresAt      *time.Time
	SendEmail      bool
}

// Validate reports every missing or invalid field joined with ErrInvalidNotification.
func (p CreateParams) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Recipient) == "" {
		errs = append(errs, errors.New("recipient is required"))
	}
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if strings.TrimSpace(p.Message) == "" {
		errs = append(errs, errors.New("message is required"))
	}
	switch {
	case p.Type == "":
		errs = append(errs, errors.New("type is required"))
	case !p.Type.Valid():
		errs = append(errs, fmt.Errorf("unknown type %q", p.Type))
	case p.Data != nil && p.Data.NotificationType() != p.Type:
		errs = append(errs, fmt.Errorf("payload for %q does not match type %q", p.Data.NotificationType(), p.Type))
	}
	switch {
	case p.Category == "":
		errs = append(errs, errors.New("category is required"))
	case !p.Category.Valid():
		errs = append(errs, fmt.Errorf("unknown category %q", p.Category))
	}
	if p.Priority != "" && !p.Priority.Valid() {
		errs = append(errs, fmt.Errorf("unknown priority %q", p.Priority))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidNotification}, errs...)...)
}

// Create persists a notification, pushes it to the recipient's live connection
// and, if requested, schedules an email. Only validation and persistence
// errors are returned.
func (m *Manager) Create(ctx context.Context, params CreateParams) (*Notification, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	priority := params.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	now := m.now()
	notif := Notification{
		ID:             uuid.New().String(),
		Recipient:      params.Recipient,
		Sender:         params.Sender,
		Title:          params.Title,
		Message:        params.Message,
		Type:           params.Type,
		Category:       params.Category,
		Priority:       priority,
		ActionRequired: params.ActionRequired,
		ActionURL:      params.ActionURL,
		Data:           params.Data,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      params.ExpiresAt,
	}

	if err := m.storage.Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	m.push(ctx, notif)

	if params.SendEmail {
		m.dispatchEmail(ctx, notif)
	}

	return &notif, nil
}

func (m *Manager) push(ctx context.Context, notif Notification) {
	if m.live == nil || !m.live.IsConnected(notif.Recipient) {
		return
	}
	if err := m.live.Emit(ctx, notif.Recipient, EventNewNotification, notif.PushEvent()); err != nil {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to push notification, but it was stored successfully",
			logger.NotificationID(notif.ID),
			logger.UserID(notif.Recipient),
			logger.Error(err),
		)
	}
}

// dispatchEmail sends in the background, detached from the caller's
// cancellation and bounded by EmailTimeout. There is no retry.
func (m *Manager) dispatchEmail(ctx context.Context, notif Notification) {
	m.emails.Add(1)
	go func() {
		defer m.emails.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.EmailTimeout)
		defer cancel()

		if err := m.sendEmail(ctx, notif); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to send notification email",
				logger.NotificationID(notif.ID),
				logger.UserID(notif.Recipient),
				slog.String("type", string(notif.Type)),
				logger.Error(err),
			)
			return
		}

		if err := m.storage.MarkEmailSent(ctx, notif.ID, m.now()); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelWarn, "Email sent but flag was not persisted",
				logger.NotificationID(notif.ID),
				logger.Error(err),
			)
		}
	}()
}

func (m *Manager) sendEmail(ctx context.Context, notif Notification) error {
	if m.mailer == nil || m.directory == nil {
		return ErrEmailNotConfigured
	}

	contact, err := m.directory.Contact(ctx, notif.Recipient)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient: %w", err)
	}
	if contact.Email == "" {
		return ErrRecipientEmailUnknown
	}

	subject, body := m.templates.render(notif, contact)
	html, err := email.Render(ctx, body)
	if err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	return m.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   contact.Email,
		Subject:  subject,
		BodyHTML: html,
		Tag:      string(notif.Type),
	})
}

// Wait blocks until all in-flight emails have finished.
func (m *Manager) Wait() {
	m.emails.Wait()
}

// ListParams selects one page of a recipient's notifications.
// Page is 1-based; zero values use the configured defaults.
type ListParams struct {
	Page       int
	Limit      int
	UnreadOnly bool
	Category   Category
}

// Page is one page of notifications plus counters for the recipient.
type Page struct {
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
	UnreadCount   int            `json:"unreadCount"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
	TotalPages    int            `json:"totalPages"`
}

// List returns notifications newest first. Total counts matches of the
// filter; UnreadCount is always the recipient's overall unread count.
func (m *Manager) List(ctx context.Context, recipient string, params ListParams) (*Page, error) {
	if params.Category != "" && !params.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidFilter, params.Category)
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = m.cfg.DefaultPageLimit
	}
	params.Limit = min(params.Limit, m.cfg.MaxPageLimit)
	if params.Page > math.MaxInt/params.Limit {
		return nil, fmt.Errorf("%w: page %d is out of range", ErrInvalidFilter, params.Page)
	}

	filter := Filter{UnreadOnly: params.UnreadOnly, Category: params.Category}
	items, err := m.storage.List(ctx, recipient, ListOptions{
		Filter: filter,
		Offset: (params.Page - 1) * params.Limit,
		Limit:  params.Limit,
	})
	if err != nil {
		return nil, err
	}

	total, err := m.storage.Count(ctx, recipient, filter)
	if err != nil {
		return nil, err
	}

	unread, err := m.UnreadCount(ctx, recipient)
	if err != nil {
		return nil, err
	}

	return &Page{
		Notifications: items,
		Total:         total,
		UnreadCount:   unread,
		Page:          params.Page,
		Limit:         params.Limit,
		TotalPages:    (total + params.Limit - 1) / params.Limit,
	}, nil
}

func (m *Manager) Get(ctx context.Context, recipient, notifID string) (*Notification, error) {
	return m.storage.Get(ctx, recipient, notifID)
}

func (m *Manager) UnreadCount(ctx context.Context, recipient string) (int, error) {
	return m.storage.Count(ctx, recipient, Filter{UnreadOnly: true})
}

// MarkAsRead marks the given notifications read. IDs that do not belong to
// the recipient are ignored; repeating the call is a no-op.
func (m *Manager) MarkAsRead(ctx context.Context, recipient string, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}
	return m.storage.MarkRead(ctx, recipient, notifIDs, m.now())
}

// MarkAllRead marks all notifications as read for a recipient.
func (m *Manager) MarkAllRead(ctx context.Context, recipient string) error {
	return m.storage.MarkAllRead(ctx, recipient, m.now())
}

// Delete removes one notification. Deleting another recipient's
// notification or an unknown ID succeeds without effect.
func (m *Manager) Delete(ctx context.Context, recipient, notifID string) error {
	return m.storage.Delete(ctx, recipient, notifID)
}

// Cleanup deletes read notifications older than daysOld days across all
// recipients. Non-positive daysOld uses the configured default.
func (m *Manager) Cleanup(ctx context.Context, daysOld int) (int64, error) {
	if daysOld <= 0 {
		daysOld = m.cfg.CleanupDaysOld
	}
	cutoff := m.now().Add(-time.Duration(daysOld) * 24 * time.Hour)

	deleted, err := m.storage.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up notifications: %w", err)
	}

	m.logger.LogAttrs(ctx, slog.LevelInfo, "Cleaned up read notifications",
		logger.Count(int(deleted)),
		slog.Time("cutoff", cutoff),
	)
	return deleted, nil
}
