package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/events"
	"github.com/testimonial-hub/backend/internal/models"
	"github.com/testimonial-hub/backend/internal/repositories"
)

type fakeCampaigns struct {
	byID map[uuid.UUID]*models.Campaign
}

func newFakeCampaigns(cs ...models.Campaign) *fakeCampaigns {
	f := &fakeCampaigns{byID: map[uuid.UUID]*models.Campaign{}}
	for i := range cs {
		c := cs[i]
		f.byID[c.ID] = &c
	}
	return f
}

func (f *fakeCampaigns) Create(_ context.Context, c *models.Campaign) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCampaigns) GetByID(_ context.Context, id uuid.UUID) (*models.Campaign, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCampaigns) GetByShareToken(_ context.Context, token uuid.UUID) (*models.Campaign, error) {
	for _, c := range f.byID {
		if c.ShareToken == token && c.ArchivedAt == nil {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCampaigns) Update(_ context.Context, c *models.Campaign) error {
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCampaigns) MarkInvited(_ context.Context, c *models.Campaign) error {
	now := time.Now()
	if c.InvitedAt == nil {
		c.InvitedAt = &now
	}
	f.byID[c.ID].InvitedAt = c.InvitedAt
	return nil
}

func (f *fakeCampaigns) Archive(_ context.Context, c *models.Campaign) error {
	now := time.Now()
	c.ArchivedAt = &now
	f.byID[c.ID].ArchivedAt = &now
	return nil
}

func (f *fakeCampaigns) List(_ context.Context, fl repositories.CampaignFilter) ([]models.Campaign, error) {
	var out []models.Campaign
	for _, c := range f.byID {
		if fl.BusinessID != nil && c.BusinessID != *fl.BusinessID {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

type fakeBusinesses struct {
	byID map[uuid.UUID]models.Business
}

func (f *fakeBusinesses) GetByID(_ context.Context, id uuid.UUID) (*models.Business, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeBusinesses) Upsert(_ context.Context, b *models.Business) error {
	if f.byID == nil {
		f.byID = map[uuid.UUID]models.Business{}
	}
	b.UpdatedAt = time.Now()
	f.byID[b.ID] = *b
	return nil
}

type fakeMembers struct {
	members []models.BusinessMember
}

func (f *fakeMembers) Upsert(_ context.Context, businessID, userID uuid.UUID, email *string, role string) (*models.BusinessMember, error) {
	for i, m := range f.members {
		if m.BusinessID == businessID && m.UserID == userID {
			f.members[i].Role = role
			return &f.members[i], nil
		}
	}
	m := models.BusinessMember{BusinessID: businessID, UserID: userID, Email: email, Role: role}
	f.members = append(f.members, m)
	return &m, nil
}

func (f *fakeMembers) List(_ context.Context, businessID uuid.UUID) ([]models.BusinessMember, error) {
	var out []models.BusinessMember
	for _, m := range f.members {
		if m.BusinessID == businessID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (f *fakeAudit) Log(_ context.Context, e models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAudit) GetByEntity(_ context.Context, entityType string, id uuid.UUID, _, _ int) ([]models.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AuditLog
	for _, e := range f.entries {
		if e.EntityType == entityType && e.EntityID != nil && *e.EntityID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAudit) ListByBusiness(_ context.Context, businessID uuid.UUID, rf repositories.ActivityFilter) ([]models.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.AuditLog, 0)
	for _, e := range f.entries {
		if e.BusinessID == nil || *e.BusinessID != businessID {
			continue
		}
		if rf.EntityType != nil && e.EntityType != *rf.EntityType {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type published struct {
	stream string
	event  events.Event
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
}

func (f *fakePublisher) Publish(_ context.Context, stream string, e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, published{stream, e})
	return nil
}

func (f *fakePublisher) ofType(t string) []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []events.Event
	for _, p := range f.sent {
		if p.event.Type == t {
			out = append(out, p.event)
		}
	}
	return out
}

type fakeIdempotency struct {
	values map[string]string
}

func (f *fakeIdempotency) Reserve(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	if v, ok := f.values[key]; ok {
		return v, false, nil
	}
	f.values[key] = idempotencyPending
	return "", true, nil
}

func (f *fakeIdempotency) Complete(_ context.Context, key, value string, _ time.Duration) error {
	f.values[key] = value
	return nil
}

func (f *fakeIdempotency) Release(_ context.Context, key string) error {
	delete(f.values, key)
	return nil
}
