package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/telepsych-site/internal/analytics"
)

// openAll marks every slot available.
type openAll struct{}

func (openAll) Availability(_ context.Context, date time.Time) ([]TimeSlot, error) {
	times := SlotTimes(date)
	out := make([]TimeSlot, len(times))
	for i, t := range times {
		out[i] = TimeSlot{Time: t, Available: true}
	}
	return out, nil
}

// closedAt marks a single slot unavailable.
type closedAt string

func (c closedAt) Availability(ctx context.Context, date time.Time) ([]TimeSlot, error) {
	slots, _ := openAll{}.Availability(ctx, date)
	for i := range slots {
		if slots[i].Time == string(c) {
			slots[i].Available = false
		}
	}
	return slots, nil
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) Track(_ context.Context, evt analytics.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, evt.Name)
}

func (l *eventLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func sundayClock() time.Time {
	return time.Date(2025, time.March, 9, 10, 0, 0, 0, time.UTC)
}

var janeDoe = Details{
	Name:    "Jane Doe",
	Email:   "jane@example.com",
	Phone:   "9195550123",
	Service: "Initial ADHD Consultation",
}

func newTestWizard(t *testing.T, provider AvailabilityProvider, submitter Submitter, opts ...Option) *Wizard {
	t.Helper()
	opts = append([]Option{WithClock(sundayClock)}, opts...)
	return NewWizard(provider, submitter, opts...)
}

func waitSettled(t *testing.T, w *Wizard) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, w.Wait(ctx))
}

func TestWizardHappyPathScenario(t *testing.T) {
	events := &eventLog{}
	w := newTestWizard(t, openAll{}, SimulatedSubmitter{Delay: 10 * time.Millisecond}, WithAnalytics(events))
	ctx := context.Background()

	require.Equal(t, StateSelectingDate, w.State())
	require.NoError(t, w.SelectDate(ctx, "2025-03-10"))
	require.Equal(t, StateSelectingTime, w.State())
	require.NoError(t, w.SelectTime(ctx, "09:00"))
	require.Equal(t, StateEnteringDetails, w.State())
	require.NoError(t, w.UpdateDetails(janeDoe))
	require.NoError(t, w.Submit(ctx))
	assert.Equal(t, StateSubmitting, w.State())

	waitSettled(t, w)

	view := w.View()
	require.Equal(t, StateConfirmed, view.State)
	require.NotNil(t, view.Confirmation)
	assert.Equal(t, "2025-03-10", view.Confirmation.Date)
	assert.Equal(t, "Monday, March 10, 2025", view.Confirmation.DisplayDate)
	assert.Equal(t, "09:00", view.Confirmation.Time)
	assert.Equal(t, "Initial ADHD Consultation", view.Confirmation.Service)
	assert.Equal(t, "9195550123", view.Confirmation.Phone)
	assert.NotEmpty(t, view.Confirmation.Reference)

	assert.Equal(t, []string{
		"appointment_date_selected",
		"appointment_time_selected",
		"appointment_booked",
	}, events.names())
}

func TestWizardSubmitRequiresEveryField(t *testing.T) {
	cases := map[string]func(d *Details){
		"name":    func(d *Details) { d.Name = "" },
		"email":   func(d *Details) { d.Email = "  " },
		"phone":   func(d *Details) { d.Phone = "" },
		"service": func(d *Details) { d.Service = "" },
	}
	for field, blank := range cases {
		t.Run(field, func(t *testing.T) {
			w := newTestWizard(t, openAll{}, SimulatedSubmitter{})
			ctx := context.Background()
			require.NoError(t, w.SelectDate(ctx, "2025-03-10"))
			require.NoError(t, w.SelectTime(ctx, "09:00"))

			d := janeDoe
			blank(&d)
			require.NoError(t, w.UpdateDetails(d))

			err := w.Submit(ctx)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, []string{field}, verr.Missing)
			assert.Equal(t, StateEnteringDetails, w.State())
		})
	}
}

func TestWizardCloseResetsFromEveryState(t *testing.T) {
	ctx := context.Background()
	steps := []func(w *Wizard){
		func(w *Wizard) {},
		func(w *Wizard) { _ = w.SelectDate(ctx, "2025-03-10") },
		func(w *Wizard) {
			_ = w.SelectDate(ctx, "2025-03-10")
			_ = w.SelectTime(ctx, "09:00")
			_ = w.UpdateDetails(janeDoe)
		},
		func(w *Wizard) {
			_ = w.SelectDate(ctx, "2025-03-10")
			_ = w.SelectTime(ctx, "09:00")
			_ = w.UpdateDetails(janeDoe)
			_ = w.Submit(ctx)
			waitSettled(t, w)
		},
	}
	for i, step := range steps {
		w := newTestWizard(t, openAll{}, SimulatedSubmitter{})
		step(w)
		w.Close()

		view := w.View()
		assert.Equal(t, StateSelectingDate, view.State, "step %d", i)
		assert.Equal(t, BookingRequest{}, w.Draft(), "step %d", i)
		assert.Empty(t, view.Slots, "step %d", i)
		assert.Nil(t, view.Confirmation, "step %d", i)
		assert.NotEmpty(t, view.Dates, "step %d", i)
	}
}

func TestWizardCloseDuringSubmitDiscardsCompletion(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	submitter := SubmitterFunc(func(ctx context.Context, req BookingRequest) (Confirmation, error) {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return NewConfirmation("late", req, time.Now()), nil
	})
	w := newTestWizard(t, openAll{}, submitter)
	ctx := context.Background()
	require.NoError(t, w.SelectDate(ctx, "2025-03-10"))
	require.NoError(t, w.SelectTime(ctx, "09:00"))
	require.NoError(t, w.UpdateDetails(janeDoe))
	require.NoError(t, w.Submit(ctx))
	<-started

	inflight := w.Done()
	w.Close()

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("submission context was not cancelled")
	}
	<-inflight

	assert.Equal(t, StateSelectingDate, w.State())
	assert.Nil(t, w.View().Confirmation)
}

func TestWizardWaitCoversAbandonedSubmission(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	submitter := SubmitterFunc(func(ctx context.Context, req BookingRequest) (Confirmation, error) {
		close(started)
		<-ctx.Done()
		<-release
		return Confirmation{}, ctx.Err()
	})
	w := newTestWizard(t, openAll{}, submitter)
	ctx := context.Background()
	require.NoError(t, w.SelectDate(ctx, "2025-03-10"))
	require.NoError(t, w.SelectTime(ctx, "09:00"))
	require.NoError(t, w.UpdateDetails(janeDoe))
	require.NoError(t, w.Submit(ctx))
	<-started

	w.Close()
	assert.Equal(t, StateSelectingDate, w.State())

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Wait(short), context.DeadlineExceeded)

	close(release)
	waitSettled(t, w)
	assert.Equal(t, StateSelectingDate, w.State())
	assert.NoError(t, w.LastError())
}

func TestWizardFailedSubmitReturnsToDetails(t *testing.T) {
	events := &eventLog{}
	submitter := SubmitterFunc(func(context.Context, BookingRequest) (Confirmation, error) {
		return Confirmation{}, errors.New("booking api unavailable")
	})
	w := newTestWizard(t, openAll{}, submitter, WithAnalytics(events))
	ctx := context.Background()
	require.NoError(t, w.SelectDate(ctx, "2025-03-10"))
	require.NoError(t, w.SelectTime(ctx, "09:00"))
	require.NoError(t, w.UpdateDetails(janeDoe))
	require.NoError(t, w.Submit(ctx))
	waitSettled(t, w)

	assert.Equal(t, StateEnteringDetails, w.State())
	require.Error(t, w.LastError())
	assert.Contains(t, w.View().Error, "booking api unavailable")
	assert.Equal(t, "Jane Doe", w.Draft().FullName)
	assert.Contains(t, events.names(), "appointment_submit_failed")

	// Recoverable: a retry with a working backend confirms.
	w.submitter = SimulatedSubmitter{}
	require.NoError(t, w.Submit(ctx))
	waitSettled(t, w)
	assert.Equal(t, StateConfirmed, w.State())
}

func TestWizardBackwardTransitions(t *testing.T) {
	w := newTestWizard(t, openAll{}, SimulatedSubmitter{})
	ctx := context.Background()

	assert.ErrorIs(t, w.ChangeDate(), ErrInvalidTransition)
	require.NoError(t, w.SelectDate(ctx, "2025-03-10"))
	require.NoError(t, w.ChangeDate())
	assert.Equal(t, StateSelectingDate, w.State())
	assert.Empty(t, w.Draft().Date)

	require.NoError(t, w.SelectDate(ctx, "2025-03-11"))
	require.NoError(t, w.SelectTime(ctx, "10:30"))
	require.NoError(t, w.UpdateDetails(janeDoe))
	require.NoError(t, w.ChangeTime())
	assert.Equal(t, StateSelectingTime, w.State())
	assert.Empty(t, w.Draft().Time)
	assert.Equal(t, "Jane Doe", w.Draft().FullName)
}

func TestWizardRejectsInvalidEvents(t *testing.T) {
	w := newTestWizard(t, closedAt("09:00"), SimulatedSubmitter{})
	ctx := context.Background()

	assert.ErrorIs(t, w.SelectTime(ctx, "09:00"), ErrInvalidTransition)
	assert.ErrorIs(t, w.Submit(ctx), ErrInvalidTransition)
	assert.ErrorIs(t, w.UpdateDetails(janeDoe), ErrInvalidTransition)
	assert.ErrorIs(t, w.SelectDate(ctx, "2025-03-16"), ErrDateUnavailable) // Sunday
	assert.ErrorIs(t, w.SelectDate(ctx, "2025-04-30"), ErrDateUnavailable) // past horizon

	require.NoError(t, w.SelectDate(ctx, "2025-03-10"))
	assert.ErrorIs(t, w.SelectTime(ctx, "12:00"), ErrUnknownSlot)
	assert.ErrorIs(t, w.SelectTime(ctx, "09:00"), ErrSlotUnavailable)
	assert.Equal(t, StateSelectingTime, w.State())
}

type transitions struct{ states []string }

func (o *transitions) ObserveBookingTransition(state string) { o.states = append(o.states, state) }

func TestWizardReportsTransitions(t *testing.T) {
	obs := &transitions{}
	w := newTestWizard(t, openAll{}, SimulatedSubmitter{}, WithObserver(obs))
	ctx := context.Background()
	require.NoError(t, w.SelectDate(ctx, "2025-03-10"))
	require.NoError(t, w.SelectTime(ctx, "09:00"))
	w.Close()

	assert.Equal(t, []string{"selecting_time", "entering_details", "selecting_date"}, obs.states)
}
