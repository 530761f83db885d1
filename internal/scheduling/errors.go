package scheduling

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidTransition is returned when an event is not allowed in the current state.
	ErrInvalidTransition = errors.New("scheduling: invalid transition")

	// ErrDateUnavailable is returned when the chosen date is not one of the offered dates.
	ErrDateUnavailable = errors.New("scheduling: date not offered")

	// ErrUnknownSlot is returned when the chosen time is not a slot of the selected date.
	ErrUnknownSlot = errors.New("scheduling: unknown time slot")

	// ErrSlotUnavailable is returned when the chosen slot is already taken.
	ErrSlotUnavailable = errors.New("scheduling: time slot unavailable")
)

// ValidationError lists the required booking fields that were left empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "scheduling: missing required fields: " + strings.Join(e.Missing, ", ")
}
