package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultSubmitDelay mirrors the latency of the demo booking backend.
const DefaultSubmitDelay = 2 * time.Second

// Submitter hands a completed draft to the booking backend.
type Submitter interface {
	Submit(ctx context.Context, req BookingRequest) (Confirmation, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, req BookingRequest) (Confirmation, error)

func (f SubmitterFunc) Submit(ctx context.Context, req BookingRequest) (Confirmation, error) {
	return f(ctx, req)
}

// SimulatedSubmitter accepts every booking after a fixed delay. It is the
// stand-in for the external booking API.
type SimulatedSubmitter struct {
	Delay time.Duration
	Now   func() time.Time
}

func (s SimulatedSubmitter) Submit(ctx context.Context, req BookingRequest) (Confirmation, error) {
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Confirmation{}, ctx.Err()
	case <-timer.C:
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return NewConfirmation(uuid.NewString(), req, now()), nil
}

// NewConfirmation copies the booked details into a confirmation record.
func NewConfirmation(reference string, req BookingRequest, at time.Time) Confirmation {
	display := req.Date
	if day, err := ParseDate(req.Date, time.UTC); err == nil {
		display = day.Format("Monday, January 2, 2006")
	}
	return Confirmation{
		Reference:   reference,
		Date:        req.Date,
		DisplayDate: display,
		Time:        req.Time,
		Service:     req.ServiceType,
		Name:        req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		ConfirmedAt: at.UTC(),
	}
}
