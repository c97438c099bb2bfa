package tutoring

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

type User struct {
	ID    string `bson:"_id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Role  Role   `bson:"role" json:"role"`
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// DateLayout and TimeLayout are the formats of booking dates and start times
// shown to users.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Booking is a scheduled class between a student and a teacher.
// Date holds the calendar day at UTC midnight; StartTime is "15:04" in the
// marketplace's local zone.
type Booking struct {
	ID          string        `bson:"_id" json:"id"`
	StudentID   string        `bson:"studentId" json:"studentId"`
	TeacherID   string        `bson:"teacherId" json:"teacherId"`
	Subject     string        `bson:"subject" json:"subject"`
	Date        time.Time     `bson:"date" json:"date"`
	StartTime   string        `bson:"startTime" json:"startTime"`
	Duration    int           `bson:"duration" json:"duration"`
	Status      BookingStatus `bson:"status" json:"status"`
	Amount      float64       `bson:"amount" json:"amount"`
	MeetingLink string        `bson:"meetingLink,omitempty" json:"meetingLink,omitempty"`
	Notes       string        `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// StartsAt combines the booking day and start time in loc.
func (b Booking) StartsAt(loc *time.Location) (time.Time, error) {
	clock, err := time.Parse(TimeLayout, b.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time %q: %w", b.StartTime, err)
	}
	y, m, d := b.Date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// Day returns the booking day formatted with DateLayout.
func (b Booking) Day() string {
	return b.Date.Format(DateLayout)
}

// DayOf returns the calendar day of t, in t's location, as UTC midnight.
// It is the representation used by Booking.Date.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID              string        `bson:"_id" json:"id"`
	BookingID       string        `bson:"bookingId" json:"bookingId"`
	PayerID         string        `bson:"payerId" json:"payerId"`
	Amount          float64       `bson:"amount" json:"amount"`
	PlatformFee     float64       `bson:"platformFee" json:"platformFee"`
	TeacherEarnings float64       `bson:"teacherEarnings" json:"teacherEarnings"`
	RefundAmount    *float64      `bson:"refundAmount,omitempty" json:"refundAmount,omitempty"`
	RefundReason    string        `bson:"refundReason,omitempty" json:"refundReason,omitempty"`
	Status          PaymentStatus `bson:"status" json:"status"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt" json:"updatedAt"`
}
