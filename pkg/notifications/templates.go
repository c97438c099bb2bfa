package notifications

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const placeholder = "N/A"

type emailField struct {
	Label string
	Value string
}

type emailContent struct {
	Subject     string
	Heading     string
	Greeting    string
	Intro       string
	Fields      []emailField
	ActionLabel string
	ActionURL   string
}

// templates renders notification emails. Selection is by notification type;
// a payload of the wrong shape or a missing one renders placeholders.
type templates struct {
	appURL  string
	unit    currency.Unit
	printer *message.Printer
}

func newTemplates(appURL string, unit currency.Unit) *templates {
	return &templates{
		appURL:  strings.TrimRight(appURL, "/"),
		unit:    unit,
		printer: message.NewPrinter(language.English),
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

func (t *templates) money(v *float64) string {
	if v == nil {
		return placeholder
	}
	return t.printer.Sprint(currency.Symbol(t.unit.Amount(*v)))
}

func (t *templates) link(path string) string {
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	}
	return t.appURL + "/" + strings.TrimLeft(path, "/")
}

func (t *templates) content(n Notification, to Contact) emailContent {
	c := emailContent{
		Subject:     n.Title,
		Heading:     n.Title,
		Greeting:    "Hi " + orNA(to.Name) + ",",
		Intro:       n.Message,
		ActionLabel: "Open TutorHub",
		ActionURL:   t.link(n.ActionURL),
	}

	switch n.Type {
	case TypeBookingPending:
		d, _ := n.Data.(BookingPendingData)
		duration := placeholder
		if d.Duration > 0 {
			duration = strconv.Itoa(d.Duration) + " minutes"
		}
		c.Subject = "New booking request: " + orNA(d.Subject)
		c.Heading = "You have a new booking request"
		c.Intro = orNA(d.StudentName) + " would like to book a class with you."
		c.Fields = []emailField{
			{"Student", orNA(d.StudentName)},
			{"Subject", orNA(d.Subject)},
			{"Date", orNA(d.Date)},
			{"Time", orNA(d.Time)},
			{"Duration", duration},
			{"Amount", t.money(d.Amount)},
			{"Notes", orNA(d.Notes)},
		}
		c.ActionLabel = "Review booking"

	case TypeBookingApproved:
		d, _ := n.Data.(BookingApprovedData)
		c.Subject = "Booking confirmed: " + orNA(d.Subject)
		c.Heading = "Your booking has been approved"
		c.Intro = orNA(d.TeacherName) + " accepted your booking request."
		c.Fields = []emailField{
			{"Teacher", orNA(d.TeacherName)},
			{"Subject", orNA(d.Subject)},
			{"Date", orNA(d.Date)},
			{"Time", orNA(d.Time)},
			{"Meeting link", orNA(d.MeetingLink)},
		}
		c.ActionLabel = "View booking"

	case TypeBookingRejected:
		d, _ := n.Data.(BookingRejectedData)
		c.Subject = "Booking update: " + orNA(d.Subject)
		c.Heading = "Your booking request was declined"
		c.Intro = orNA(d.TeacherName) + " was unable to accept your booking request."
		c.Fields = []emailField{
			{"Teacher", orNA(d.TeacherName)},
			{"Subject", orNA(d.Subject)},
			{"Date", orNA(d.Date)},
			{"Reason", orNA(d.Reason)},
			{"Refund amount", t.money(d.RefundAmount)},
		}
		c.ActionLabel = "Find another teacher"

	case TypePaymentReceived:
		d, _ := n.Data.(PaymentReceivedData)
		c.Subject = "Payment received: " + orNA(d.Subject)
		c.Heading = "You received a payment"
		c.Intro = orNA(d.StudentName) + " paid for an upcoming class."
		c.Fields = []emailField{
			{"Student", orNA(d.StudentName)},
			{"Subject", orNA(d.Subject)},
			{"Date", orNA(d.Date)},
			{"Amount", t.money(d.Amount)},
			{"Platform fee", t.money(d.PlatformFee)},
			{"Your earnings", t.money(d.TeacherEarnings)},
		}
		c.ActionLabel = "View earnings"

	case TypePaymentRefunded:
		d, _ := n.Data.(PaymentRefundedData)
		c.Subject = "Refund processed: " + orNA(d.Subject)
		c.Heading = "Your refund has been processed"
		c.Intro = "We have refunded your payment."
		c.Fields = []emailField{
			{"Subject", orNA(d.Subject)},
			{"Refund amount", t.money(d.RefundAmount)},
			{"Reason", orNA(d.Reason)},
		}
		c.ActionLabel = "View payments"

	case TypeClassReminder:
		d, _ := n.Data.(ClassReminderData)
		when := placeholder
		switch d.Lead {
		case Lead1Hour:
			when = "1 hour"
		case Lead24Hours:
			when = "24 hours"
		}
		c.Subject = "Reminder: " + orNA(d.Subject) + " class in " + when
		c.Heading = "Your class starts in " + when
		c.Intro = "This is a reminder about your upcoming class."
		c.Fields = []emailField{
			{"Subject", orNA(d.Subject)},
			{"Date", orNA(d.Date)},
			{"Time", orNA(d.Time)},
			{"With", orNA(d.CounterpartName)},
			{"Meeting link", orNA(d.MeetingLink)},
		}
		c.ActionLabel = "View booking"
	}

	c.Subject = orNA(c.Subject)
	return c
}

// render returns the subject line and HTML body component for n.
func (t *templates) render(n Notification, to Contact) (string, templ.Component) {
	c := t.content(n, to)
	return c.Subject, emailLayout(c)
}

func emailLayout(c emailContent) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>`)
		b.WriteString(templ.EscapeString(c.Subject))
		b.WriteString(`</title></head><body style="font-family:Arial,sans-serif;color:#1f2937">`)
		b.WriteString(`<h1 style="font-size:20px">`)
		b.WriteString(templ.EscapeString(c.Heading))
		b.WriteString(`</h1><p>`)
		b.WriteString(templ.EscapeString(c.Greeting))
		b.WriteString(`</p><p>`)
		b.WriteString(templ.EscapeString(c.Intro))
		b.WriteString(`</p>`)
		if len(c.Fields) > 0 {
			b.WriteString(`<table cellpadding="6" style="border-collapse:collapse">`)
			for _, f := range c.Fields {
				b.WriteString(`<tr><td style="font-weight:bold">`)
				b.WriteString(templ.EscapeString(f.Label))
				b.WriteString(`</td><td>`)
				b.WriteString(templ.EscapeString(f.Value))
				b.WriteString(`</td></tr>`)
			}
			b.WriteString(`</table>`)
		}
		if c.ActionURL != "" {
			b.WriteString(`<p><a href="`)
			b.WriteString(templ.EscapeString(c.ActionURL))
			b.WriteString(`" style="background:#2563eb;color:#fff;padding:10px 16px;text-decoration:none;border-radius:4px">`)
			b.WriteString(templ.EscapeString(c.ActionLabel))
			b.WriteString(`</a></p>`)
		}
		b.WriteString(`<p style="color:#6b7280;font-size:12px">You are receiving this email because of activity on your TutorHub account.</p>`)
		b.WriteString(`</body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}
