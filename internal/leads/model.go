package leads

import (
	"net/mail"
	"strings"
	"time"
)

// Status is the follow-up stage of a lead in the admin dashboard.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusScheduled Status = "scheduled"
	StatusClosed    Status = "closed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusScheduled, StatusClosed:
		return true
	}
	return false
}

const (
	// DefaultSource tags leads coming from the site's contact form.
	DefaultSource = "website_contact_form"

	// UrgentServiceType marks a lead as urgent on submission.
	UrgentServiceType = "Crisis Intervention"
)

// Lead represents a prospective patient submission from the contact form
type Lead struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone,omitempty"`
	ServiceType       string    `json:"service_type,omitempty"`
	InsuranceProvider string    `json:"insurance_provider,omitempty"`
	PreferredContact  string    `json:"preferred_contact"`
	Message           string    `json:"message,omitempty"`
	Source            string    `json:"source"`
	UTMCampaign       string    `json:"utm_campaign,omitempty"`
	UTMMedium         string    `json:"utm_medium,omitempty"`
	UTMSource         string    `json:"utm_source,omitempty"`
	Urgent            bool      `json:"urgent"`
	Status            Status    `json:"status"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	ServiceType       string `json:"service_type"`
	InsuranceProvider string `json:"insurance_provider"`
	PreferredContact  string `json:"preferred_contact"`
	Message           string `json:"message"`
	Source            string `json:"source"`
	UTMCampaign       string `json:"utm_campaign"`
	UTMMedium         string `json:"utm_medium"`
	UTMSource         string `json:"utm_source"`
}

// Normalize trims input and applies defaults for source and contact preference.
func (r *CreateLeadRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.ServiceType = strings.TrimSpace(r.ServiceType)
	r.InsuranceProvider = strings.TrimSpace(r.InsuranceProvider)
	r.PreferredContact = strings.ToLower(strings.TrimSpace(r.PreferredContact))
	r.Source = strings.TrimSpace(r.Source)
	if r.PreferredContact == "" {
		r.PreferredContact = "email"
	}
	if r.Source == "" {
		r.Source = DefaultSource
	}
}

// Validate validates the create lead request
func (r *CreateLeadRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(r.Email)); err != nil {
		return ErrInvalidEmail
	}
	switch strings.ToLower(strings.TrimSpace(r.PreferredContact)) {
	case "", "email", "phone", "text":
	default:
		return ErrInvalidPreferredContact
	}
	return nil
}

// Urgent reports whether the request should be triaged first.
func (r *CreateLeadRequest) Urgent() bool {
	return strings.EqualFold(strings.TrimSpace(r.ServiceType), UrgentServiceType)
}

func newLead(id string, req *CreateLeadRequest, now time.Time) *Lead {
	return &Lead{
		ID:                id,
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		ServiceType:       req.ServiceType,
		InsuranceProvider: req.InsuranceProvider,
		PreferredContact:  req.PreferredContact,
		Message:           req.Message,
		Source:            req.Source,
		UTMCampaign:       req.UTMCampaign,
		UTMMedium:         req.UTMMedium,
		UTMSource:         req.UTMSource,
		Urgent:            req.Urgent(),
		Status:            StatusNew,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// UpdateLeadRequest is the admin edit of a lead's status and notes.
type UpdateLeadRequest struct {
	Status *Status `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

func (r *UpdateLeadRequest) Validate() error {
	if r.Status == nil && r.Notes == nil {
		return ErrEmptyUpdate
	}
	if r.Status != nil && !r.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// ListFilter narrows the admin lead listing.
type ListFilter struct {
	Limit  int
	Status Status
	Search string
}

// Matches applies the filter's status and search term to a lead.
func (f ListFilter) Matches(l *Lead) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Name), term) ||
		strings.Contains(strings.ToLower(l.Email), term) ||
		(l.Phone != "" && strings.Contains(l.Phone, term))
}

// Metrics are the dashboard counters.
type Metrics struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Contacted int `json:"contacted"`
	Scheduled int `json:"scheduled"`
	Urgent    int `json:"urgent"`
}

// Summarize counts leads per dashboard bucket.
func Summarize(all []*Lead) Metrics {
	m := Metrics{Total: len(all)}
	for _, l := range all {
		switch l.Status {
		case StatusNew:
			m.New++
		case StatusContacted:
			m.Contacted++
		case StatusScheduled:
			m.Scheduled++
		}
		if l.Urgent {
			m.Urgent++
		}
	}
	return m
}
