// Package reviews stores patient testimonials and serves the approved ones.
package reviews

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidName   = errors.New("patient name is required")
	ErrInvalidText   = errors.New("review text is required")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrInvalidDate   = errors.New("treatment date must be YYYY-MM-DD")
	ErrNotFound      = errors.New("review not found")
)

// IsValidationError reports whether err is caused by bad client input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidText) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrInvalidDate)
}

// Review is a patient testimonial.
type Review struct {
	ID            string    `json:"id"`
	PatientName   string    `json:"patient_name"`
	Rating        int       `json:"rating"`
	ReviewText    string    `json:"review_text"`
	ServiceType   string    `json:"service_type,omitempty"`
	TreatmentDate string    `json:"treatment_date,omitempty"`
	Verified      bool      `json:"verified"`
	Approved      bool      `json:"approved"`
	CreatedAt     time.Time `json:"created_at"`
}

// SubmitRequest is the body of POST /api/reviews.
type SubmitRequest struct {
	PatientName   string `json:"patient_name"`
	Rating        int    `json:"rating"`
	ReviewText    string `json:"review_text"`
	ServiceType   string `json:"service_type"`
	TreatmentDate string `json:"treatment_date"`
}

// Validate trims the request and checks required fields.
func (r *SubmitRequest) Validate() error {
	r.PatientName = strings.TrimSpace(r.PatientName)
	r.ReviewText = strings.TrimSpace(r.ReviewText)
	r.ServiceType = strings.TrimSpace(r.ServiceType)
	r.TreatmentDate = strings.TrimSpace(r.TreatmentDate)

	if r.PatientName == "" {
		return ErrInvalidName
	}
	if r.ReviewText == "" {
		return ErrInvalidText
	}
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	if r.TreatmentDate != "" {
		if _, err := time.Parse(time.DateOnly, r.TreatmentDate); err != nil {
			return ErrInvalidDate
		}
	}
	return nil
}
