package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/models"
)

// Repository is the persistence contract the manager depends on.
type Repository interface {
	// FindByID returns (nil, nil) when no testimonial has the id.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error)
	// FindByStatusAndCutoff returns testimonials in status whose field is at or before the cutoff.
	FindByStatusAndCutoff(ctx context.Context, status string, before time.Time, field models.CutoffField) ([]models.Testimonial, error)
	// UpdateStatus applies patch only if the stored status equals patch.ExpectedStatus.
	// It reports false when no row matched.
	UpdateStatus(ctx context.Context, id uuid.UUID, patch models.StatusPatch) (bool, error)
	Create(ctx context.Context, t *models.Testimonial) error
}

// MediaStore deletes hosted video assets. A nil error means the asset is gone,
// including when it was already absent.
type MediaStore interface {
	DeleteAsset(ctx context.Context, assetID string) error
}

// Notifier observes committed transitions (audit trail, events).
type Notifier interface {
	TestimonialTransitioned(ctx context.Context, t models.Testimonial, from string, actor Actor)
}

// Actor identifies who triggered a transition.
type Actor struct {
	UserID *uuid.UUID
	Type   string
}

func UserActor(id uuid.UUID) Actor {
	return Actor{UserID: &id, Type: models.ActorUser}
}

var SystemActor = Actor{Type: models.ActorSystem}
