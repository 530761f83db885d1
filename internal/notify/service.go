package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/telepsych-site/internal/leads"
	"github.com/wolfman30/telepsych-site/internal/scheduling"
	"github.com/wolfman30/telepsych-site/pkg/logging"
)

// Service sends practice staff an email for each new lead and booking.
type Service struct {
	email      EmailSender
	recipients []string
	logger     *logging.Logger
}

// NewService creates a notification service. recipients is a comma-separated
// address list; an empty list disables notifications.
func NewService(email EmailSender, recipients string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	var to []string
	for _, r := range strings.Split(recipients, ",") {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	return &Service{email: email, recipients: to, logger: logger}
}

// Enabled reports whether there is a sender and at least one recipient.
func (s *Service) Enabled() bool {
	return s != nil && s.email != nil && len(s.recipients) > 0
}

// NotifyNewLead emails the practice when a contact form lead arrives.
func (s *Service) NotifyNewLead(ctx context.Context, lead *leads.Lead) error {
	if !s.Enabled() || lead == nil {
		return nil
	}

	subject := fmt.Sprintf("New Lead - %s", lead.Name)
	if lead.Urgent {
		subject = "URGENT " + subject
	}
	body := fmt.Sprintf(`A new lead has come in.

Name: %s
Email: %s
Phone: %s
Service: %s
Insurance: %s
Preferred contact: %s
Source: %s%s
Message: %s
`, lead.Name, lead.Email, orDash(lead.Phone), orDash(lead.ServiceType), orDash(lead.InsuranceProvider),
		lead.PreferredContact, lead.Source, campaignLine(lead), orDash(lead.Message))

	return s.send(ctx, subject, body, "lead_id", lead.ID)
}

// NotifyAppointment emails the practice when a booking is confirmed.
func (s *Service) NotifyAppointment(ctx context.Context, c scheduling.Confirmation) error {
	if !s.Enabled() {
		return nil
	}

	subject := fmt.Sprintf("Appointment Booked - %s, %s at %s", c.Name, c.DisplayDate, c.Time)
	body := fmt.Sprintf(`A new appointment request was booked online.

Reference: %s
Patient: %s
Email: %s
Phone: %s
Service: %s
When: %s at %s
`, c.Reference, c.Name, c.Email, c.Phone, c.Service, c.DisplayDate, c.Time)

	return s.send(ctx, subject, body, "reference", c.Reference)
}

func (s *Service) send(ctx context.Context, subject, body string, logKey, logValue string) error {
	var errs []error
	for _, recipient := range s.recipients {
		if err := s.email.Send(ctx, EmailMessage{To: recipient, Subject: subject, Body: body}); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		s.logger.Warn("notify: email delivery failed", logKey, logValue, "failed", len(errs))
		return fmt.Errorf("notify: %d notification(s) failed: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

func campaignLine(lead *leads.Lead) string {
	var parts []string
	if lead.UTMSource != "" {
		parts = append(parts, "source="+lead.UTMSource)
	}
	if lead.UTMMedium != "" {
		parts = append(parts, "medium="+lead.UTMMedium)
	}
	if lead.UTMCampaign != "" {
		parts = append(parts, "campaign="+lead.UTMCampaign)
	}
	if len(parts) == 0 {
		return ""
	}
	return "\nCampaign: " + strings.Join(parts, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
