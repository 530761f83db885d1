package reviews

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository persists reviews.
type Repository interface {
	Create(ctx context.Context, req *SubmitRequest) (*Review, error)
	List(ctx context.Context, approvedOnly bool) ([]*Review, error)
	Approve(ctx context.Context, id string) (*Review, error)
}

// InMemoryRepository keeps reviews in a map.
type InMemoryRepository struct {
	mu      sync.RWMutex
	reviews map[string]*Review
	now     func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		reviews: make(map[string]*Review),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new, unapproved review.
func (r *InMemoryRepository) Create(ctx context.Context, req *SubmitRequest) (*Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	review := &Review{
		ID:            uuid.New().String(),
		PatientName:   req.PatientName,
		Rating:        req.Rating,
		ReviewText:    req.ReviewText,
		ServiceType:   req.ServiceType,
		TreatmentDate: req.TreatmentDate,
		CreatedAt:     r.now(),
	}
	r.mu.Lock()
	r.reviews[review.ID] = review
	r.mu.Unlock()

	copied := *review
	return &copied, nil
}

// List returns reviews newest first.
func (r *InMemoryRepository) List(ctx context.Context, approvedOnly bool) ([]*Review, error) {
	r.mu.RLock()
	out := make([]*Review, 0, len(r.reviews))
	for _, review := range r.reviews {
		if approvedOnly && !review.Approved {
			continue
		}
		copied := *review
		out = append(out, &copied)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Approve publishes a review.
func (r *InMemoryRepository) Approve(ctx context.Context, id string) (*Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	review.Approved = true
	copied := *review
	return &copied, nil
}
