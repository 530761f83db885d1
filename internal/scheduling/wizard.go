package scheduling

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/telepsych-site/internal/analytics"
)

// State is a step of the booking wizard.
type State int

const (
	StateSelectingDate State = iota
	StateSelectingTime
	StateEnteringDetails
	StateSubmitting
	StateConfirmed
)

func (s State) String() string {
	switch s {
	case StateSelectingDate:
		return "selecting_date"
	case StateSelectingTime:
		return "selecting_time"
	case StateEnteringDetails:
		return "entering_details"
	case StateSubmitting:
		return "submitting"
	case StateConfirmed:
		return "confirmed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Services offered in the booking form.
var Services = []string{
	"Initial ADHD Consultation",
	"Medication Management",
	"Follow-up Appointment",
	"Crisis Intervention",
	"Family Consultation",
}

// Details are the contact fields entered in step three.
type Details struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Notes   string `json:"notes"`
}

// BookingRequest is the draft carried through the wizard.
type BookingRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ServiceType string `json:"service_type"`
	Notes       string `json:"notes"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

func (r BookingRequest) details() Details {
	return Details{Name: r.FullName, Email: r.Email, Phone: r.Phone, Service: r.ServiceType, Notes: r.Notes}
}

// Validate reports every required field that is blank.
func (r BookingRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.FullName) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(r.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(r.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(r.ServiceType) == "" {
		missing = append(missing, "service")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Confirmation is what the final step shows.
type Confirmation struct {
	Reference   string    `json:"reference"`
	Date        string    `json:"date"`
	DisplayDate string    `json:"display_date"`
	Time        string    `json:"time"`
	Service     string    `json:"service"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// View is a point-in-time snapshot used for rendering.
type View struct {
	State        State         `json:"state"`
	Dates        []DateOption  `json:"dates"`
	Slots        []TimeSlot    `json:"slots,omitempty"`
	SelectedDate string        `json:"selected_date,omitempty"`
	SelectedTime string        `json:"selected_time,omitempty"`
	Details      Details       `json:"details"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// TransitionObserver is notified with the target state of every transition.
type TransitionObserver interface {
	ObserveBookingTransition(state string)
}

// Option customizes a Wizard.
type Option func(*Wizard)

func WithAnalytics(c analytics.Client) Option {
	return func(w *Wizard) { w.analytics = analytics.OrNoop(c) }
}

func WithClock(now func() time.Time) Option {
	return func(w *Wizard) {
		if now != nil {
			w.now = now
		}
	}
}

func WithObserver(o TransitionObserver) Option {
	return func(w *Wizard) { w.observer = o }
}

// Wizard drives the date -> time -> details -> confirmation booking flow for
// one widget instance. Events are serialized; the submission runs in the
// background and can be abandoned with Close.
type Wizard struct {
	provider  AvailabilityProvider
	submitter Submitter
	analytics analytics.Client
	observer  TransitionObserver
	now       func() time.Time

	mu           sync.Mutex
	state        State
	dates        []DateOption
	slots        []TimeSlot
	draft        BookingRequest
	confirmation *Confirmation
	lastErr      error
	generation   uint64
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewWizard opens a wizard at the date step with an empty draft.
func NewWizard(provider AvailabilityProvider, submitter Submitter, opts ...Option) *Wizard {
	w := &Wizard{
		provider:  provider,
		submitter: submitter,
		analytics: analytics.Noop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.resetLocked()
	return w
}

func (w *Wizard) resetLocked() {
	w.state = StateSelectingDate
	w.dates = AvailableDates(w.now())
	w.slots = nil
	w.draft = BookingRequest{}
	w.confirmation = nil
	w.lastErr = nil
	// An abandoned submission closes its own channel when its goroutine exits.
	if w.cancel == nil {
		w.done = closedChan()
	}
	w.cancel = nil
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (w *Wizard) transitionLocked(to State) {
	w.state = to
	if w.observer != nil {
		w.observer.ObserveBookingTransition(to.String())
	}
}

func invalid(action string, from State) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, from)
}

// State returns the current step.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// View returns a copy of everything needed to render the wizard.
func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		State:        w.state,
		Dates:        append([]DateOption(nil), w.dates...),
		Slots:        append([]TimeSlot(nil), w.slots...),
		SelectedDate: w.draft.Date,
		SelectedTime: w.draft.Time,
		Details:      w.draft.details(),
	}
	if w.confirmation != nil {
		c := *w.confirmation
		v.Confirmation = &c
	}
	if w.lastErr != nil {
		v.Error = w.lastErr.Error()
	}
	return v
}

// Draft returns a copy of the booking draft.
func (w *Wizard) Draft() BookingRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// SelectDate picks one of the offered dates and loads its slots.
func (w *Wizard) SelectDate(ctx context.Context, date string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSelectingDate {
		return invalid("select a date", w.state)
	}
	opt, ok := findDate(w.dates, date)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDateUnavailable, date)
	}
	slots, err := w.provider.Availability(ctx, opt.Day)
	if err != nil {
		return fmt.Errorf("scheduling: load slots for %s: %w", date, err)
	}

	w.slots = slots
	w.draft.Date = opt.Date
	w.draft.Time = ""
	w.lastErr = nil
	w.transitionLocked(StateSelectingTime)
	w.analytics.Track(ctx, analytics.Event{
		Name:     "appointment_date_selected",
		Category: analytics.CategoryBooking,
		Label:    opt.Date,
	})
	return nil
}

// ChangeDate goes back from the time step to the date step.
func (w *Wizard) ChangeDate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSelectingTime {
		return invalid("change the date", w.state)
	}
	w.slots = nil
	w.draft.Date = ""
	w.draft.Time = ""
	w.transitionLocked(StateSelectingDate)
	return nil
}

// SelectTime picks an open slot of the selected date.
func (w *Wizard) SelectTime(ctx context.Context, t string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSelectingTime {
		return invalid("select a time", w.state)
	}
	slot, ok := findSlot(w.slots, t)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSlot, t)
	}
	if !slot.Available {
		return fmt.Errorf("%w: %s", ErrSlotUnavailable, t)
	}

	w.draft.Time = slot.Time
	w.transitionLocked(StateEnteringDetails)
	w.analytics.Track(ctx, analytics.Event{
		Name:     "appointment_time_selected",
		Category: analytics.CategoryBooking,
		Label:    slot.Time,
	})
	return nil
}

// ChangeTime goes back from the details step to the time step. Entered
// details are kept.
func (w *Wizard) ChangeTime() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateEnteringDetails {
		return invalid("change the time", w.state)
	}
	w.draft.Time = ""
	w.lastErr = nil
	w.transitionLocked(StateSelectingTime)
	return nil
}

// UpdateDetails replaces the contact fields of the draft.
func (w *Wizard) UpdateDetails(d Details) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateEnteringDetails {
		return invalid("edit details", w.state)
	}
	w.draft.FullName = d.Name
	w.draft.Email = d.Email
	w.draft.Phone = d.Phone
	w.draft.ServiceType = d.Service
	w.draft.Notes = d.Notes
	return nil
}

// Submit validates the draft and starts the background submission. A
// validation failure leaves the wizard in the details step.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateEnteringDetails {
		return invalid("submit", w.state)
	}
	if err := w.draft.Validate(); err != nil {
		return err
	}

	w.generation++
	gen := w.generation
	req := w.draft
	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	w.cancel = cancel
	w.done = done
	w.lastErr = nil
	w.transitionLocked(StateSubmitting)

	go func() {
		defer close(done)
		defer cancel()
		conf, err := w.submitter.Submit(subCtx, req)
		w.finishSubmit(subCtx, gen, conf, err)
	}()
	return nil
}

func (w *Wizard) finishSubmit(ctx context.Context, gen uint64, conf Confirmation, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Closed or restarted while in flight.
	if gen != w.generation || w.state != StateSubmitting {
		return
	}
	w.cancel = nil

	if err != nil {
		w.lastErr = fmt.Errorf("scheduling: submit booking: %w", err)
		w.transitionLocked(StateEnteringDetails)
		w.analytics.Track(ctx, analytics.Event{
			Name:     "appointment_submit_failed",
			Category: analytics.CategoryBooking,
			Label:    err.Error(),
		})
		return
	}

	w.confirmation = &conf
	w.transitionLocked(StateConfirmed)
	w.analytics.Track(ctx, analytics.Event{
		Name:     "appointment_booked",
		Category: analytics.CategoryConversion,
		Label:    "Online Appointment",
		Value:    1,
	})
}

// Done is closed once no submission goroutine is running, including one
// abandoned by Close.
func (w *Wizard) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// Wait blocks until the in-flight submission settles or ctx ends.
func (w *Wizard) Wait(ctx context.Context) error {
	select {
	case <-w.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastError returns the recoverable error of the last failed submission.
func (w *Wizard) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Close abandons the wizard from any state: a pending submission is cancelled
// and its result discarded, and the draft is reset.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	from := w.state
	w.generation++
	w.resetLocked()
	w.transitionLocked(StateSelectingDate)
	w.analytics.Track(context.Background(), analytics.Event{
		Name:     "appointment_scheduler_closed",
		Category: analytics.CategoryBooking,
		Label:    from.String(),
	})
}
