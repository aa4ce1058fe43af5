package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/models"
	"go.uber.org/zap"
)

type SweepFailure struct {
	TestimonialID uuid.UUID `json:"testimonial_id"`
	Kind          string    `json:"kind"`
	Error         string    `json:"error"`
}

// SweepResult summarizes one sweep. Category counters include every matched
// record, whether or not its transition succeeded.
type SweepResult struct {
	PendingExpired  int            `json:"pending_expired"`
	ApprovedExpired int            `json:"approved_expired"`
	RejectedExpired int            `json:"rejected_expired"`
	DeletedCount    int            `json:"deleted_count"`
	Failures        []SweepFailure `json:"failures"`
}

func (r *SweepResult) matched(c Category) {
	switch c {
	case CategoryPendingTimeout:
		r.PendingExpired++
	case CategoryApprovedExpired:
		r.ApprovedExpired++
	case CategoryRejectedExpired:
		r.RejectedExpired++
	}
}

func (r *SweepResult) fail(id uuid.UUID, err error) {
	r.Failures = append(r.Failures, SweepFailure{
		TestimonialID: id,
		Kind:          FailureKind(err),
		Error:         err.Error(),
	})
}

// Matched is the number of records the sweep found due.
func (r SweepResult) Matched() int {
	return r.PendingExpired + r.ApprovedExpired + r.RejectedExpired
}

// SweepExpired deletes every testimonial whose submission timeout or retention
// window has elapsed at now. It never fails as a whole: per-record problems are
// collected in the result and the sweep moves on.
func (m *Manager) SweepExpired(ctx context.Context, now time.Time) SweepResult {
	result := SweepResult{Failures: []SweepFailure{}}

	queries := []struct {
		status string
		field  models.CutoffField
		before time.Time
	}{
		{models.TestimonialStatusPending, models.CutoffRecordedAt, now.Add(-m.policy.SubmissionTimeout)},
		{models.TestimonialStatusApproved, models.CutoffExpiresAt, now},
		{models.TestimonialStatusRejected, models.CutoffExpiresAt, now},
	}

	for _, q := range queries {
		candidates, err := m.repo.FindByStatusAndCutoff(ctx, q.status, q.before, q.field)
		if err != nil {
			m.log.Error("sweep candidate query failed", zap.String("status", q.status), zap.Error(err))
			result.Failures = append(result.Failures, SweepFailure{
				Kind:  KindPersistenceFailure,
				Error: err.Error(),
			})
			continue
		}

		for i := range candidates {
			t := &candidates[i]
			category := ExpiryCategory(t, now, m.policy)
			if category == CategoryNone {
				continue
			}
			result.matched(category)

			storageErr, err := m.expire(ctx, t, now, SystemActor)
			if storageErr != nil {
				m.log.Warn("sweep media purge failed",
					zap.String("testimonial_id", t.ID.String()),
					zap.String("category", string(category)),
					zap.Error(storageErr),
				)
				result.fail(t.ID, storageErr)
			}
			if err != nil {
				m.log.Error("sweep transition failed",
					zap.String("testimonial_id", t.ID.String()),
					zap.String("category", string(category)),
					zap.Error(err),
				)
				result.fail(t.ID, err)
				continue
			}
			result.DeletedCount++
		}
	}

	m.log.Info("sweep finished",
		zap.Int("matched", result.Matched()),
		zap.Int("deleted", result.DeletedCount),
		zap.Int("failures", len(result.Failures)),
	)
	return result
}
