package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrSubmissionRejected is returned when the API answers without success.
var ErrSubmissionRejected = errors.New("leads: submission rejected")

// Client posts contact-form submissions to the lead API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a lead API client. A nil httpClient gets a 10s timeout client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Submit sends the request and returns the new lead id.
func (c *Client) Submit(ctx context.Context, req CreateLeadRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("leads: marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/leads", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("leads: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("leads: post lead: %w", err)
	}
	defer resp.Body.Close()

	var out CreateLeadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("leads: decode response (status %d): %w", resp.StatusCode, err)
	}
	if !out.Success {
		if out.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrSubmissionRejected, out.Error)
		}
		return "", ErrSubmissionRejected
	}
	return out.LeadID, nil
}

// FormStatus is the submission state shown under the contact form.
type FormStatus string

const (
	FormIdle    FormStatus = "idle"
	FormSuccess FormStatus = "success"
	FormError   FormStatus = "error"
)

// FormFields are the user-editable contact form inputs.
type FormFields struct {
	Name              string
	Email             string
	Phone             string
	ServiceType       string
	InsuranceProvider string
	PreferredContact  string
	Message           string
}

// Attribution carries campaign parameters from the landing URL.
type Attribution struct {
	Campaign string
	Medium   string
	Source   string
}

// ContactForm holds the state of one contact form.
type ContactForm struct {
	client      *Client
	attribution Attribution

	mu     sync.Mutex
	fields FormFields
	status FormStatus
	err    error
}

// NewContactForm builds an idle form with email as the preferred contact.
func NewContactForm(client *Client, attribution Attribution) *ContactForm {
	return &ContactForm{
		client:      client,
		attribution: attribution,
		fields:      FormFields{PreferredContact: "email"},
		status:      FormIdle,
	}
}

// Set replaces the form inputs.
func (f *ContactForm) Set(fields FormFields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = fields
}

func (f *ContactForm) Fields() FormFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

func (f *ContactForm) Status() FormStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Err is the last submission failure, if any.
func (f *ContactForm) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Submit posts the current fields. On success the form is cleared; on any
// failure the fields are kept so the visitor can retry.
func (f *ContactForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	fields := f.fields
	f.mu.Unlock()

	_, err := f.client.Submit(ctx, CreateLeadRequest{
		Name:              fields.Name,
		Email:             fields.Email,
		Phone:             fields.Phone,
		ServiceType:       fields.ServiceType,
		InsuranceProvider: fields.InsuranceProvider,
		PreferredContact:  fields.PreferredContact,
		Message:           fields.Message,
		Source:            DefaultSource,
		UTMCampaign:       f.attribution.Campaign,
		UTMMedium:         f.attribution.Medium,
		UTMSource:         f.attribution.Source,
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.status = FormError
		f.err = err
		return err
	}
	f.status = FormSuccess
	f.err = nil
	f.fields = FormFields{PreferredContact: "email"}
	return nil
}
