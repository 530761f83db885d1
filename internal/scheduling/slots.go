package scheduling

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const (
	openingMinute        = 8 * 60
	weekdayClosingMinute = 18 * 60
	saturdayClosingMin   = 15 * 60
	lunchStartMinute     = 12 * 60
	lunchEndMinute       = 13 * 60
	slotStepMinutes      = 30

	// DefaultAvailabilityRate is the share of slots the random provider marks open.
	DefaultAvailabilityRate = 0.7
)

// TimeSlot is a half-hour appointment start on a given date.
type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// AvailabilityProvider decides which slots of a date can be booked.
type AvailabilityProvider interface {
	Availability(ctx context.Context, date time.Time) ([]TimeSlot, error)
}

// SlotTimes lists the slot start times for a date: 08:00 until closing
// (18:00 on weekdays, 15:00 on Saturdays) in 30 minute steps, lunch hour excluded.
func SlotTimes(date time.Time) []string {
	starts := slotMinutes(date)
	out := make([]string, len(starts))
	for i, m := range starts {
		out[i] = minutesToClock(m)
	}
	return out
}

func slotMinutes(date time.Time) []int {
	closing := weekdayClosingMinute
	if date.Weekday() == time.Saturday {
		closing = saturdayClosingMin
	}
	out := make([]int, 0, (closing-openingMinute)/slotStepMinutes)
	for m := openingMinute; m < closing; m += slotStepMinutes {
		if m >= lunchStartMinute && m < lunchEndMinute {
			continue
		}
		out = append(out, m)
	}
	return out
}

func minutesToClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// RandomAvailability marks each slot open independently with a fixed
// probability. Results are advisory and differ between calls for the same date.
type RandomAvailability struct {
	mu   sync.Mutex
	rng  *rand.Rand
	rate float64
}

// NewRandomAvailability builds a provider from seed. A zero seed uses the clock,
// any other seed gives a reproducible sequence.
func NewRandomAvailability(seed int64) *RandomAvailability {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomAvailability{
		rng:  rand.New(rand.NewSource(seed)),
		rate: DefaultAvailabilityRate,
	}
}

func (p *RandomAvailability) Availability(_ context.Context, date time.Time) ([]TimeSlot, error) {
	times := SlotTimes(date)
	slots := make([]TimeSlot, len(times))

	p.mu.Lock()
	defer p.mu.Unlock()
	for i, t := range times {
		slots[i] = TimeSlot{Time: t, Available: p.rng.Float64() < p.rate}
	}
	return slots, nil
}

// BookedTimesLister reports the slot times already taken on a date.
type BookedTimesLister interface {
	BookedTimes(ctx context.Context, date string) ([]string, error)
}

// CalendarAvailability opens every slot that is not already booked and not
// already in the past.
type CalendarAvailability struct {
	booked BookedTimesLister
	now    func() time.Time
}

func NewCalendarAvailability(booked BookedTimesLister, now func() time.Time) *CalendarAvailability {
	if now == nil {
		now = time.Now
	}
	return &CalendarAvailability{booked: booked, now: now}
}

func (p *CalendarAvailability) Availability(ctx context.Context, date time.Time) ([]TimeSlot, error) {
	taken := map[string]struct{}{}
	if p.booked != nil {
		times, err := p.booked.BookedTimes(ctx, date.Format(dateLayout))
		if err != nil {
			return nil, fmt.Errorf("scheduling: booked times: %w", err)
		}
		for _, t := range times {
			taken[t] = struct{}{}
		}
	}

	now := p.now().In(date.Location())
	y, m, d := date.Date()
	starts := slotMinutes(date)
	slots := make([]TimeSlot, 0, len(starts))
	for _, minute := range starts {
		t := minutesToClock(minute)
		start := time.Date(y, m, d, minute/60, minute%60, 0, 0, date.Location())
		_, isTaken := taken[t]
		slots = append(slots, TimeSlot{Time: t, Available: !isTaken && start.After(now)})
	}
	return slots, nil
}

func findSlot(slots []TimeSlot, t string) (TimeSlot, bool) {
	for _, s := range slots {
		if s.Time == t {
			return s, true
		}
	}
	return TimeSlot{}, false
}
