package service

import (
	"context"
	"fmt"
	"time"

	"quietblock-api/core/utils"
)

// ReminderEmail is everything the notifier needs to build one reminder.
// Times are UTC; DisplayTimezone controls how they are rendered.
type ReminderEmail struct {
	RecipientEmail    string
	RecipientName     string
	BlockTitle        string
	StartTime         time.Time
	EndTime           time.Time
	DisplayTimezone   string
	DurationMinutes   int
	MinutesUntilStart int
	DashboardURL      string
}

// Notifier delivers a reminder. Implementations must be safe for
// concurrent use and must not retry internally; the scheduler owns
// retry semantics via the pending flag.
type Notifier interface {
	Send(ctx context.Context, email ReminderEmail) error
}

// SMTPNotifier sends reminder emails over SMTP. It is stateless: all
// configuration is injected at construction.
type SMTPNotifier struct {
	conf utils.EmailConfig
}

func NewSMTPNotifier(conf utils.EmailConfig) *SMTPNotifier {
	return &SMTPNotifier{conf: conf}
}

var _ Notifier = (*SMTPNotifier)(nil)

func (n *SMTPNotifier) Send(ctx context.Context, email ReminderEmail) error {
	subject := fmt.Sprintf("Quiet block starting in %d minutes: %s", email.MinutesUntilStart, email.BlockTitle)

	greeting := "Hi"
	if email.RecipientName != "" {
		greeting = "Hi " + email.RecipientName
	}

	body := fmt.Sprintf(
		"<h3>Your quiet block is coming up</h3>"+
			"<p>%s,</p>"+
			"<p><strong>%s</strong> starts in %d minutes.</p>"+
			"<p>%s &ndash; %s (%d minutes)</p>",
		greeting,
		email.BlockTitle,
		email.MinutesUntilStart,
		FormatInZone(email.StartTime, email.DisplayTimezone),
		FormatInZone(email.EndTime, email.DisplayTimezone),
		email.DurationMinutes,
	)
	if email.DashboardURL != "" {
		body += fmt.Sprintf(`<p><a href="%s">View your schedule</a></p>`, email.DashboardURL)
	}

	return utils.SendEmailTLS(n.conf, utils.EmailMessage{
		To:      []string{email.RecipientEmail},
		Subject: subject,
		Body:    body,
		IsHTML:  true,
	})
}

// FormatInZone renders a UTC instant in the named display timezone.
// This is the only place display conversion happens; everything else
// stays in UTC.
func FormatInZone(t time.Time, tzName string) string {
	loc := utils.LocationOrUTC(tzName)
	return t.In(loc).Format("Mon, 02 Jan 2006 15:04 MST")
}
