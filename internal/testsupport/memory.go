// Package testsupport holds in-memory collaborators for unit tests.
package testsupport

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/models"
	"github.com/testimonial-hub/backend/internal/repositories"
)

// MemoryRepo is an in-memory testimonial store with the same conditional update
// semantics as the postgres repository.
type MemoryRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]models.Testimonial

	// FindErr and UpdateErr, when set, are returned for the listed ids.
	FindErr   map[uuid.UUID]error
	UpdateErr map[uuid.UUID]error
	// CutoffErr is returned by FindByStatusAndCutoff for the listed statuses.
	CutoffErr map[string]error

	// BeforeUpdate runs before the conditional write, outside the lock. Tests use
	// it to interleave a concurrent transition.
	BeforeUpdate func(id uuid.UUID, patch models.StatusPatch)

	Updates int
}

func NewMemoryRepo(records ...models.Testimonial) *MemoryRepo {
	r := &MemoryRepo{records: make(map[uuid.UUID]models.Testimonial)}
	for _, t := range records {
		r.records[t.ID] = t
	}
	return r
}

func (r *MemoryRepo) Create(_ context.Context, t *models.Testimonial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if _, ok := r.records[t.ID]; ok {
		return errors.New("duplicate testimonial id")
	}
	r.records[t.ID] = clone(*t)
	return nil
}

func (r *MemoryRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Testimonial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FindErr[id]; err != nil {
		return nil, err
	}
	t, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	c := clone(t)
	return &c, nil
}

func (r *MemoryRepo) FindByStatusAndCutoff(_ context.Context, status string, before time.Time, field models.CutoffField) ([]models.Testimonial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.CutoffErr[status]; err != nil {
		return nil, err
	}

	var out []models.Testimonial
	for _, t := range r.records {
		if t.Status != status {
			continue
		}
		var ts *time.Time
		switch field {
		case models.CutoffRecordedAt:
			ts = &t.RecordedAt
		case models.CutoffExpiresAt:
			ts = t.ExpiresAt
		}
		if ts == nil || ts.After(before) {
			continue
		}
		out = append(out, clone(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(_ context.Context, id uuid.UUID, patch models.StatusPatch) (bool, error) {
	if r.BeforeUpdate != nil {
		r.BeforeUpdate(id, patch)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.UpdateErr[id]; err != nil {
		return false, err
	}
	t, ok := r.records[id]
	if !ok || t.Status != patch.ExpectedStatus {
		return false, nil
	}
	patch.Apply(&t)
	r.records[id] = t
	r.Updates++
	return true, nil
}

// Get returns the stored record, bypassing error injection.
func (r *MemoryRepo) Get(id uuid.UUID) (models.Testimonial, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.records[id]
	return clone(t), ok
}

func (r *MemoryRepo) List(_ context.Context, f repositories.TestimonialFilter) ([]models.Testimonial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Testimonial
	for _, t := range r.records {
		switch {
		case f.BusinessID != nil && t.BusinessID != *f.BusinessID:
			continue
		case f.CampaignID != nil && t.CampaignID != *f.CampaignID:
			continue
		case f.Status != nil && t.Status != *f.Status:
			continue
		case f.Status == nil && !f.IncludeDeleted && t.IsDeleted():
			continue
		}
		out = append(out, clone(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return out, nil
}

func (r *MemoryRepo) StatusesByCampaign(_ context.Context, campaignIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uuid.UUID][]string, len(campaignIDs))
	for _, id := range campaignIDs {
		for _, t := range r.records {
			if t.CampaignID == id {
				out[id] = append(out[id], t.Status)
			}
		}
	}
	return out, nil
}

func (r *MemoryRepo) LiveIDsByCampaign(_ context.Context, campaignID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for _, t := range r.records {
		if t.CampaignID == campaignID && !t.IsDeleted() {
			ids = append(ids, t.ID)
		}
	}
	return ids, nil
}

func clone(t models.Testimonial) models.Testimonial {
	if t.Media != nil {
		m := *t.Media
		t.Media = &m
	}
	return t
}

// FakeMediaStore records asset deletions and fails for configured assets.
type FakeMediaStore struct {
	mu      sync.Mutex
	Fail    map[string]error
	Deleted []string
	// Block, when set, makes DeleteAsset wait for ctx to finish.
	Block bool
}

func (f *FakeMediaStore) DeleteAsset(ctx context.Context, assetID string) error {
	if f.Block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail[assetID]; err != nil {
		return err
	}
	f.Deleted = append(f.Deleted, assetID)
	return nil
}

func (f *FakeMediaStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Deleted...)
}

// Pending builds a PENDING testimonial recorded at recordedAt.
func Pending(recordedAt time.Time) models.Testimonial {
	id := uuid.New()
	return models.Testimonial{
		ID:              id,
		CampaignID:      uuid.New(),
		BusinessID:      uuid.New(),
		Status:          models.TestimonialStatusPending,
		Media:           &models.MediaRef{AssetID: "testimonials/" + id.String(), URL: "https://media.example/" + id.String() + ".mp4"},
		DurationSeconds: 42,
		FileSizeBytes:   8 << 20,
		RecordedAt:      recordedAt,
		CreatedAt:       recordedAt,
		UpdatedAt:       recordedAt,
	}
}
