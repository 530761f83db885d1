package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/telepsych-site/internal/scheduling"
)

// Repository stores confirmed appointments.
type Repository interface {
	Book(ctx context.Context, req scheduling.BookingRequest) (*Appointment, error)
	BookedTimes(ctx context.Context, date string) ([]string, error)
	List(ctx context.Context, limit int) ([]*Appointment, error)
}

// InMemoryRepository keeps appointments in a map keyed by id.
type InMemoryRepository struct {
	mu           sync.RWMutex
	appointments map[string]*Appointment
	now          func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		appointments: make(map[string]*Appointment),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Book stores the appointment unless its slot is already taken.
func (r *InMemoryRepository) Book(ctx context.Context, req scheduling.BookingRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.Status == StatusBooked && a.Date == req.Date && a.Time == req.Time {
			return nil, ErrSlotTaken
		}
	}
	appt := fromRequest(uuid.NewString(), req, r.now())
	r.appointments[appt.ID] = appt
	copied := *appt
	return &copied, nil
}

// BookedTimes lists the taken slot times on date.
func (r *InMemoryRepository) BookedTimes(ctx context.Context, date string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, a := range r.appointments {
		if a.Status == StatusBooked && a.Date == date {
			out = append(out, a.Time)
		}
	}
	sort.Strings(out)
	return out, nil
}

// List returns appointments by date and time, soonest first.
func (r *InMemoryRepository) List(ctx context.Context, limit int) ([]*Appointment, error) {
	r.mu.RLock()
	out := make([]*Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		copied := *a
		out = append(out, &copied)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
