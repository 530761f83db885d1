package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/telepsych-site/internal/scheduling"
	"github.com/wolfman30/telepsych-site/pkg/logging"
)

// Notifier tells the practice about a confirmed booking.
type Notifier interface {
	NotifyAppointment(ctx context.Context, c scheduling.Confirmation) error
}

// RepositorySubmitter completes a wizard submission by saving the appointment
// and emailing the practice.
type RepositorySubmitter struct {
	repo     Repository
	notifier Notifier
	logger   *logging.Logger
}

var _ scheduling.Submitter = (*RepositorySubmitter)(nil)

func NewRepositorySubmitter(repo Repository, notifier Notifier, logger *logging.Logger) *RepositorySubmitter {
	if logger == nil {
		logger = logging.Default()
	}
	return &RepositorySubmitter{repo: repo, notifier: notifier, logger: logger}
}

// Submit books the slot. A slot taken since it was offered surfaces as
// scheduling.ErrSlotUnavailable. Notification failures are logged only.
func (s *RepositorySubmitter) Submit(ctx context.Context, req scheduling.BookingRequest) (scheduling.Confirmation, error) {
	appt, err := s.repo.Book(ctx, req)
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return scheduling.Confirmation{}, fmt.Errorf("%w: %s %s", scheduling.ErrSlotUnavailable, req.Date, req.Time)
		}
		return scheduling.Confirmation{}, err
	}

	conf := scheduling.NewConfirmation(appt.ID, req, appt.CreatedAt)
	s.logger.Info("appointment booked", "appointment_id", appt.ID, "date", appt.Date, "time", appt.Time)

	if s.notifier != nil {
		if err := s.notifier.NotifyAppointment(ctx, conf); err != nil {
			s.logger.Warn("appointment notification failed", "appointment_id", appt.ID, "error", err)
		}
	}
	return conf, nil
}
