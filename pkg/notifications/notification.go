package notifications

import (
	"time"
)

// Type identifies what happened. It selects the email template.
type Type string

const (
	TypeBookingPending  Type = "booking_pending"
	TypeBookingApproved Type = "booking_approved"
	TypeBookingRejected Type = "booking_rejected"
	TypePaymentReceived Type = "payment_received"
	TypePaymentRefunded Type = "payment_refunded"
	TypeClassReminder   Type = "class_reminder"
	TypeMessage         Type = "message"
	TypeGeneral         Type = "general"
)

// Valid reports whether t is a known notification type.
func (t Type) Valid() bool {
	switch t {
	case TypeBookingPending, TypeBookingApproved, TypeBookingRejected,
		TypePaymentReceived, TypePaymentRefunded, TypeClassReminder,
		TypeMessage, TypeGeneral:
		return true
	}
	return false
}

// Category groups notifications for client-side filtering.
type Category string

const (
	CategoryBooking  Category = "booking"
	CategoryPayment  Category = "payment"
	CategoryMessage  Category = "message"
	CategoryReminder Category = "reminder"
	CategorySystem   Category = "system"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryBooking, CategoryPayment, CategoryMessage, CategoryReminder, CategorySystem:
		return true
	}
	return false
}

// Priority drives UI emphasis.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Toast reports whether the client should surface a transient alert in
// addition to the notification list entry.
func (p Priority) Toast() bool {
	return p == PriorityHigh || p == PriorityUrgent
}

// Notification is a persisted, recipient-scoped record of a domain event.
// Only IsRead, EmailSent and UpdatedAt change after creation.
type Notification struct {
	ID             string     `json:"id"`
	Recipient      string     `json:"recipient"`
	Sender         string     `json:"sender,omitempty"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	Type           Type       `json:"type"`
	Category       Category   `json:"category"`
	Priority       Priority   `json:"priority"`
	IsRead         bool       `json:"isRead"`
	ActionRequired bool       `json:"actionRequired"`
	ActionURL      string     `json:"actionUrl,omitempty"`
	Data           Payload    `json:"data,omitempty"`
	EmailSent      bool       `json:"emailSent"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}

// EventNewNotification is the real-time event name for freshly created notifications.
const EventNewNotification = "new_notification"

// PushEvent is the public projection of a Notification sent over the live channel.
type PushEvent struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Type           Type      `json:"type"`
	Priority       Priority  `json:"priority"`
	Category       Category  `json:"category"`
	ActionRequired bool      `json:"actionRequired"`
	ActionURL      string    `json:"actionUrl,omitempty"`
	Data           Payload   `json:"data,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Toast          bool      `json:"toast"`
}

// PushEvent builds the live channel payload for n.
func (n Notification) PushEvent() PushEvent {
	return PushEvent{
		ID:             n.ID,
		Title:          n.Title,
		Message:        n.Message,
		Type:           n.Type,
		Priority:       n.Priority,
		Category:       n.Category,
		ActionRequired: n.ActionRequired,
		ActionURL:      n.ActionURL,
		Data:           n.Data,
		CreatedAt:      n.CreatedAt,
		Toast:          n.Priority.Toast(),
	}
}
