package reviews

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/telepsych-site/pkg/logging"
)

// Client reads and submits reviews against the reviews API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger *logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient, logger: logger}
}

// Approved returns the published reviews. Any failure or an empty result
// yields DefaultReviews.
func (c *Client) Approved(ctx context.Context) []*Review {
	reviews, err := c.fetchApproved(ctx)
	if err != nil {
		c.logger.Warn("reviews: using defaults", "error", err)
		return DefaultReviews()
	}
	if len(reviews) == 0 {
		return DefaultReviews()
	}
	return reviews
}

func (c *Client) fetchApproved(ctx context.Context) ([]*Review, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/reviews?approved=true", nil)
	if err != nil {
		return nil, fmt.Errorf("reviews: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reviews: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reviews: unexpected status %d", resp.StatusCode)
	}
	var out ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("reviews: decode: %w", err)
	}
	if !out.Success {
		return nil, errors.New("reviews: service reported failure")
	}
	return out.Reviews, nil
}

// Submit posts a new review for moderation.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("reviews: marshal: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/reviews", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("reviews: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("reviews: submit: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("reviews: decode: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("reviews: submission rejected: %s", out.Error)
	}
	return nil
}

// AverageRating formats the mean rating to one decimal, "5.0" when empty.
func AverageRating(reviews []*Review) string {
	if len(reviews) == 0 {
		return "5.0"
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return strconv.FormatFloat(float64(sum)/float64(len(reviews)), 'f', 1, 64)
}
