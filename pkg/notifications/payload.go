package notifications

// Payload is the snapshot of the triggering event stored with a notification.
// The set of implementations is closed: one struct per notification Type.
type Payload interface {
	NotificationType() Type
	payload()
}

// ReminderLead is how long before a class a reminder is sent.
type ReminderLead string

const (
	Lead1Hour   ReminderLead = "1h"
	Lead24Hours ReminderLead = "24h"
)

func (l ReminderLead) Valid() bool {
	return l == Lead1Hour || l == Lead24Hours
}

// Amount returns a pointer to v, for optional money fields.
func Amount(v float64) *float64 {
	return &v
}

// BookingPendingData is sent to a teacher when a student requests a class.
type BookingPendingData struct {
	BookingID   string   `json:"bookingId,omitempty" bson:"bookingId,omitempty"`
	StudentName string   `json:"studentName,omitempty" bson:"studentName,omitempty"`
	Subject     string   `json:"subject,omitempty" bson:"subject,omitempty"`
	Date        string   `json:"date,omitempty" bson:"date,omitempty"`
	Time        string   `json:"time,omitempty" bson:"time,omitempty"`
	Duration    int      `json:"duration,omitempty" bson:"duration,omitempty"`
	Amount      *float64 `json:"amount,omitempty" bson:"amount,omitempty"`
	Notes       string   `json:"notes,omitempty" bson:"notes,omitempty"`
}

// BookingApprovedData is sent to a student whose booking was accepted.
type BookingApprovedData struct {
	BookingID   string `json:"bookingId,omitempty" bson:"bookingId,omitempty"`
	TeacherName string `json:"teacherName,omitempty" bson:"teacherName,omitempty"`
	Subject     string `json:"subject,omitempty" bson:"subject,omitempty"`
	Date        string `json:"date,omitempty" bson:"date,omitempty"`
	Time        string `json:"time,omitempty" bson:"time,omitempty"`
	MeetingLink string `json:"meetingLink,omitempty" bson:"meetingLink,omitempty"`
}

// BookingRejectedData is sent to a student whose booking was declined.
type BookingRejectedData struct {
	BookingID    string   `json:"bookingId,omitempty" bson:"bookingId,omitempty"`
	TeacherName  string   `json:"teacherName,omitempty" bson:"teacherName,omitempty"`
	Subject      string   `json:"subject,omitempty" bson:"subject,omitempty"`
	Date         string   `json:"date,omitempty" bson:"date,omitempty"`
	Reason       string   `json:"reason,omitempty" bson:"reason,omitempty"`
	RefundAmount *float64 `json:"refundAmount,omitempty" bson:"refundAmount,omitempty"`
}

// PaymentReceivedData is sent to a teacher once a class payment completes.
type PaymentReceivedData struct {
	BookingID       string   `json:"bookingId,omitempty" bson:"bookingId,omitempty"`
	PaymentID       string   `json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	StudentName     string   `json:"studentName,omitempty" bson:"studentName,omitempty"`
	Subject         string   `json:"subject,omitempty" bson:"subject,omitempty"`
	Date            string   `json:"date,omitempty" bson:"date,omitempty"`
	Amount          *float64 `json:"amount,omitempty" bson:"amount,omitempty"`
	PlatformFee     *float64 `json:"platformFee,omitempty" bson:"platformFee,omitempty"`
	TeacherEarnings *float64 `json:"teacherEarnings,omitempty" bson:"teacherEarnings,omitempty"`
}

// PaymentRefundedData is sent to the payer when a refund is processed.
type PaymentRefundedData struct {
	BookingID    string   `json:"bookingId,omitempty" bson:"bookingId,omitempty"`
	PaymentID    string   `json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	Subject      string   `json:"subject,omitempty" bson:"subject,omitempty"`
	RefundAmount *float64 `json:"refundAmount,omitempty" bson:"refundAmount,omitempty"`
	Reason       string   `json:"reason,omitempty" bson:"reason,omitempty"`
}

// ClassReminderData is sent to both participants ahead of a class.
type ClassReminderData struct {
	BookingID       string       `json:"bookingId,omitempty" bson:"bookingId,omitempty"`
	Subject         string       `json:"subject,omitempty" bson:"subject,omitempty"`
	Date            string       `json:"date,omitempty" bson:"date,omitempty"`
	Time            string       `json:"time,omitempty" bson:"time,omitempty"`
	Lead            ReminderLead `json:"lead,omitempty" bson:"lead,omitempty"`
	Role            string       `json:"role,omitempty" bson:"role,omitempty"`
	CounterpartName string       `json:"counterpartName,omitempty" bson:"counterpartName,omitempty"`
	MeetingLink     string       `json:"meetingLink,omitempty" bson:"meetingLink,omitempty"`
}

// MessageData accompanies chat message notifications.
type MessageData struct {
	ConversationID string `json:"conversationId,omitempty" bson:"conversationId,omitempty"`
	SenderName     string `json:"senderName,omitempty" bson:"senderName,omitempty"`
	Preview        string `json:"preview,omitempty" bson:"preview,omitempty"`
}

// GeneralData carries free-form system announcements.
type GeneralData struct {
	Reference string `json:"reference,omitempty" bson:"reference,omitempty"`
}

func (BookingPendingData) NotificationType() Type  { return TypeBookingPending }
func (BookingApprovedData) NotificationType() Type { return TypeBookingApproved }
func (BookingRejectedData) NotificationType() Type { return TypeBookingRejected }
func (PaymentReceivedData) NotificationType() Type { return TypePaymentReceived }
func (PaymentRefundedData) NotificationType() Type { return TypePaymentRefunded }
func (ClassReminderData) NotificationType() Type   { return TypeClassReminder }
func (MessageData) NotificationType() Type         { return TypeMessage }
func (GeneralData) NotificationType() Type         { return TypeGeneral }

func (BookingPendingData) payload()  {}
func (BookingApprovedData) payload() {}
func (BookingRejectedData) payload() {}
func (PaymentReceivedData) payload() {}
func (PaymentRefundedData) payload() {}
func (ClassReminderData) payload()   {}
func (MessageData) payload()         {}
func (GeneralData) payload()         {}
