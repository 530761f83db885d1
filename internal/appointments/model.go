// Package appointments exposes the booking wizard over HTTP and persists
// confirmed appointments.
package appointments

import (
	"errors"
	"time"

	"github.com/wolfman30/telepsych-site/internal/scheduling"
)

var (
	// ErrSlotTaken is returned when another booking already holds the date and time.
	ErrSlotTaken = errors.New("appointments: slot already booked")

	// ErrSessionNotFound is returned for unknown or expired wizard sessions.
	ErrSessionNotFound = errors.New("appointments: session not found")
)

// StatusBooked is the status of a confirmed appointment.
const StatusBooked = "booked"

// Appointment is a confirmed booking.
type Appointment struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	ServiceType string    `json:"service_type"`
	Notes       string    `json:"notes,omitempty"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Request returns the booking request the appointment was made from.
func (a *Appointment) Request() scheduling.BookingRequest {
	return scheduling.BookingRequest{
		FullName:    a.FullName,
		Email:       a.Email,
		Phone:       a.Phone,
		ServiceType: a.ServiceType,
		Notes:       a.Notes,
		Date:        a.Date,
		Time:        a.Time,
	}
}

func fromRequest(id string, req scheduling.BookingRequest, at time.Time) *Appointment {
	return &Appointment{
		ID:          id,
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		ServiceType: req.ServiceType,
		Notes:       req.Notes,
		Date:        req.Date,
		Time:        req.Time,
		Status:      StatusBooked,
		CreatedAt:   at,
	}
}
