package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/models"
	"go.uber.org/zap"
)

// Manager is the only component allowed to change a testimonial's status.
type Manager struct {
	repo     Repository
	media    MediaStore
	notifier Notifier
	policy   Policy
	log      *zap.Logger
}

func NewManager(repo Repository, media MediaStore, notifier Notifier, policy Policy, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		repo:     repo,
		media:    media,
		notifier: notifier,
		policy:   policy,
		log:      log,
	}
}

func (m *Manager) Policy() Policy {
	return m.policy
}

// Approve moves a PENDING testimonial to APPROVED and starts its retention window.
func (m *Manager) Approve(ctx context.Context, id uuid.UUID, now time.Time, actor Actor) (*models.Testimonial, error) {
	return m.review(ctx, id, models.TestimonialStatusApproved, now, actor)
}

// Reject moves a PENDING testimonial to REJECTED and starts its retention window.
func (m *Manager) Reject(ctx context.Context, id uuid.UUID, now time.Time, actor Actor) (*models.Testimonial, error) {
	return m.review(ctx, id, models.TestimonialStatusRejected, now, actor)
}

func (m *Manager) review(ctx context.Context, id uuid.UUID, to string, now time.Time, actor Actor) (*models.Testimonial, error) {
	t, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	patch, err := ReviewPatch(t, to, now, m.policy)
	if err != nil {
		return nil, err
	}
	if err := m.commit(ctx, t, patch, now, actor); err != nil {
		return nil, err
	}

	m.log.Info("testimonial reviewed",
		zap.String("testimonial_id", t.ID.String()),
		zap.String("status", t.Status),
		zap.Timep("expires_at", t.ExpiresAt),
	)
	return t, nil
}

// DeleteNow purges media and moves the testimonial to DELETED outside the timed
// sweep. Deleting an already deleted testimonial succeeds without side effects.
func (m *Manager) DeleteNow(ctx context.Context, id uuid.UUID, now time.Time, actor Actor) (*models.Testimonial, error) {
	attempts := m.policy.deleteAttempts()
	for attempt := 1; ; attempt++ {
		t, err := m.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if t.IsDeleted() {
			return t, nil
		}

		storageErr, err := m.expire(ctx, t, now, actor)
		if storageErr != nil {
			m.log.Warn("media purge failed, testimonial deleted anyway",
				zap.String("testimonial_id", t.ID.String()),
				zap.Error(storageErr),
			)
		}
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, ErrInvalidTransition) || attempt >= attempts {
			return nil, err
		}
		m.log.Info("testimonial changed concurrently, retrying delete",
			zap.String("testimonial_id", id.String()),
			zap.Int("attempt", attempt),
		)
	}
}

// expire purges the media of t and then moves it to DELETED. storageErr reports a
// failed purge, which never blocks the transition; err is set only when the
// transition itself failed.
func (m *Manager) expire(ctx context.Context, t *models.Testimonial, now time.Time, actor Actor) (storageErr, err error) {
	patch, err := DeletePatch(t, now)
	if err != nil {
		return nil, err
	}
	storageErr = m.purge(ctx, t)
	if err := m.commit(ctx, t, patch, now, actor); err != nil {
		return storageErr, err
	}
	return storageErr, nil
}

func (m *Manager) purge(ctx context.Context, t *models.Testimonial) error {
	if t.Media == nil || t.Media.AssetID == "" {
		return nil
	}
	if m.media == nil {
		return fmt.Errorf("%w: no media store configured", ErrStorageFailure)
	}

	callCtx, cancel := context.WithTimeout(ctx, m.policy.mediaTimeout())
	defer cancel()

	if err := m.media.DeleteAsset(callCtx, t.Media.AssetID); err != nil {
		return fmt.Errorf("%w: delete asset %s: %w", ErrStorageFailure, t.Media.AssetID, err)
	}
	return nil
}

func (m *Manager) load(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	t, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: load testimonial %s: %w", ErrPersistenceFailure, id, err)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, nil
}

// commit writes patch conditionally on the status t was read with.
func (m *Manager) commit(ctx context.Context, t *models.Testimonial, patch models.StatusPatch, now time.Time, actor Actor) error {
	if !models.IsValidTestimonialTransition(patch.ExpectedStatus, patch.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, patch.ExpectedStatus, patch.Status)
	}

	applied, err := m.repo.UpdateStatus(ctx, t.ID, patch)
	if err != nil {
		return fmt.Errorf("%w: update testimonial %s: %w", ErrPersistenceFailure, t.ID, err)
	}
	if !applied {
		return fmt.Errorf("%w: testimonial %s is no longer %s", ErrInvalidTransition, t.ID, patch.ExpectedStatus)
	}

	from := t.Status
	patch.Apply(t)
	t.UpdatedAt = now

	if m.notifier != nil {
		m.notifier.TestimonialTransitioned(ctx, *t, from, actor)
	}
	return nil
}
