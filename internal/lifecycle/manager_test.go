package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/models"
	"github.com/testimonial-hub/backend/internal/testsupport"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) TestimonialTransitioned(_ context.Context, t models.Testimonial, from string, _ Actor) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, from+"->"+t.Status)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func newTestManager(records ...models.Testimonial) (*Manager, *testsupport.MemoryRepo, *testsupport.FakeMediaStore, *recordingNotifier) {
	repo := testsupport.NewMemoryRepo(records...)
	media := &testsupport.FakeMediaStore{}
	notifier := &recordingNotifier{}
	return NewManager(repo, media, notifier, DefaultPolicy(), nil), repo, media, notifier
}

func TestApproveSetsRetentionWindow(t *testing.T) {
	rec := testsupport.Pending(t0)
	m, repo, media, _ := newTestManager(rec)
	now := t0.Add(2 * time.Hour)

	got, err := m.Approve(context.Background(), rec.ID, now, SystemActor)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if got.Status != models.TestimonialStatusApproved {
		t.Errorf("status = %s, want APPROVED", got.Status)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(now.Add(15*24*time.Hour)) {
		t.Errorf("expires_at = %v, want %v", got.ExpiresAt, now.Add(15*24*time.Hour))
	}
	if got.ApprovedAt == nil || !got.ApprovedAt.Equal(now) {
		t.Errorf("approved_at = %v, want %v", got.ApprovedAt, now)
	}
	if got.RejectedAt != nil {
		t.Errorf("rejected_at = %v, want nil", got.RejectedAt)
	}

	stored, _ := repo.Get(rec.ID)
	if stored.Status != models.TestimonialStatusApproved || stored.Media == nil {
		t.Errorf("stored = %+v, want APPROVED with media", stored)
	}
	if calls := media.Calls(); len(calls) != 0 {
		t.Errorf("approve purged media: %v", calls)
	}
}

func TestRejectSetsRetentionWindow(t *testing.T) {
	rec := testsupport.Pending(t0)
	m, _, _, _ := newTestManager(rec)
	now := t0.Add(time.Hour)

	got, err := m.Reject(context.Background(), rec.ID, now, SystemActor)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if got.Status != models.TestimonialStatusRejected {
		t.Errorf("status = %s, want REJECTED", got.Status)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(now.Add(3*24*time.Hour)) {
		t.Errorf("expires_at = %v, want %v", got.ExpiresAt, now.Add(3*24*time.Hour))
	}
	if got.RejectedAt == nil || got.ApprovedAt != nil {
		t.Errorf("rejected_at = %v approved_at = %v", got.RejectedAt, got.ApprovedAt)
	}
}

func TestReviewErrors(t *testing.T) {
	approved := testsupport.Pending(t0)
	approved.Status = models.TestimonialStatusApproved
	deleted := testsupport.Pending(t0)
	deleted.Status = models.TestimonialStatusDeleted
	deleted.Media = nil
	broken := testsupport.Pending(t0)

	m, repo, _, _ := newTestManager(approved, deleted, broken)
	repo.FindErr = map[uuid.UUID]error{broken.ID: errors.New("connection reset")}

	tests := []struct {
		name string
		id   uuid.UUID
		op   func(context.Context, uuid.UUID, time.Time, Actor) (*models.Testimonial, error)
		want error
	}{
		{"approve missing", uuid.New(), m.Approve, ErrNotFound},
		{"reject missing", uuid.New(), m.Reject, ErrNotFound},
		{"approve approved", approved.ID, m.Approve, ErrInvalidTransition},
		{"reject approved", approved.ID, m.Reject, ErrInvalidTransition},
		{"approve deleted", deleted.ID, m.Approve, ErrInvalidTransition},
		{"reject deleted", deleted.ID, m.Reject, ErrInvalidTransition},
		{"approve unreadable", broken.ID, m.Approve, ErrPersistenceFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.op(context.Background(), tt.id, t0, SystemActor)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDeleteNowIsIdempotent(t *testing.T) {
	rec := testsupport.Pending(t0)
	m, repo, media, notifier := newTestManager(rec)
	now := t0.Add(time.Hour)

	for i := 0; i < 2; i++ {
		got, err := m.DeleteNow(context.Background(), rec.ID, now, SystemActor)
		if err != nil {
			t.Fatalf("DeleteNow #%d: %v", i+1, err)
		}
		if got.Status != models.TestimonialStatusDeleted {
			t.Fatalf("DeleteNow #%d status = %s", i+1, got.Status)
		}
	}

	stored, _ := repo.Get(rec.ID)
	if stored.Media != nil || stored.DeletedAt == nil || !stored.DeletedAt.Equal(now) {
		t.Errorf("stored = %+v, want cleared media and deleted_at", stored)
	}
	if calls := media.Calls(); len(calls) != 1 {
		t.Errorf("media deletes = %d, want 1", len(calls))
	}
	if notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.count())
	}
}

func TestDeleteNowMissing(t *testing.T) {
	m, _, _, _ := newTestManager()
	if _, err := m.DeleteNow(context.Background(), uuid.New(), t0, SystemActor); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteNowSurvivesStorageFailure(t *testing.T) {
	rec := testsupport.Pending(t0)
	m, repo, media, _ := newTestManager(rec)
	media.Fail = map[string]error{rec.Media.AssetID: errors.New("401 unauthorized")}

	got, err := m.DeleteNow(context.Background(), rec.ID, t0, SystemActor)
	if err != nil {
		t.Fatalf("DeleteNow: %v", err)
	}
	if got.Status != models.TestimonialStatusDeleted {
		t.Errorf("status = %s, want DELETED", got.Status)
	}
	if stored, _ := repo.Get(rec.ID); stored.Status != models.TestimonialStatusDeleted {
		t.Errorf("stored status = %s", stored.Status)
	}
}

func TestDeleteNowRetriesAfterConcurrentApprove(t *testing.T) {
	rec := testsupport.Pending(t0)
	m, repo, _, _ := newTestManager(rec)

	repo.BeforeUpdate = func(id uuid.UUID, patch models.StatusPatch) {
		repo.BeforeUpdate = nil
		expires := t0.Add(15 * 24 * time.Hour)
		approve := models.StatusPatch{
			ExpectedStatus: models.TestimonialStatusPending,
			Status:         models.TestimonialStatusApproved,
			ApprovedAt:     &t0,
			ExpiresAt:      &expires,
		}
		if ok, _ := repo.UpdateStatus(context.Background(), id, approve); !ok {
			t.Fatal("concurrent approve did not apply")
		}
	}

	got, err := m.DeleteNow(context.Background(), rec.ID, t0.Add(time.Hour), SystemActor)
	if err != nil {
		t.Fatalf("DeleteNow: %v", err)
	}
	if got.Status != models.TestimonialStatusDeleted {
		t.Errorf("status = %s, want DELETED", got.Status)
	}
	if stored, _ := repo.Get(rec.ID); stored.Status != models.TestimonialStatusDeleted {
		t.Errorf("stored status = %s, want DELETED", stored.Status)
	}
}

func TestConcurrentApproveOnlyOneWins(t *testing.T) {
	rec := testsupport.Pending(t0)
	m, repo, media, notifier := newTestManager(rec)

	// Hold both writers until each has read the PENDING record.
	var barrier sync.WaitGroup
	barrier.Add(2)
	repo.BeforeUpdate = func(uuid.UUID, models.StatusPatch) {
		barrier.Done()
		barrier.Wait()
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Approve(context.Background(), rec.ID, t0.Add(time.Duration(i+1)*time.Minute), SystemActor)
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInvalidTransition):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Errorf("successes = %d conflicts = %d, want 1 and 1", successes, conflicts)
	}
	if repo.Updates != 1 {
		t.Errorf("applied updates = %d, want 1", repo.Updates)
	}
	if notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.count())
	}
	if calls := media.Calls(); len(calls) != 0 {
		t.Errorf("media deletes = %v, want none", calls)
	}
}

func TestStatusNeverMovesBackward(t *testing.T) {
	rank := map[string]int{
		models.TestimonialStatusPending:  0,
		models.TestimonialStatusApproved: 1,
		models.TestimonialStatusRejected: 1,
		models.TestimonialStatusDeleted:  2,
	}
	ops := []string{"approve", "reject", "delete", "sweep"}

	// Every sequence of three operations from a fresh PENDING record.
	for _, a := range ops {
		for _, b := range ops {
			for _, c := range ops {
				seq := []string{a, b, c}
				t.Run(a+"/"+b+"/"+c, func(t *testing.T) {
					rec := testsupport.Pending(t0)
					m, repo, _, _ := newTestManager(rec)
					now := t0
					prev := models.TestimonialStatusPending

					for _, op := range seq {
						now = now.Add(11 * 24 * time.Hour)
						switch op {
						case "approve":
							_, _ = m.Approve(context.Background(), rec.ID, now, SystemActor)
						case "reject":
							_, _ = m.Reject(context.Background(), rec.ID, now, SystemActor)
						case "delete":
							_, _ = m.DeleteNow(context.Background(), rec.ID, now, SystemActor)
						case "sweep":
							m.SweepExpired(context.Background(), now)
						}
						stored, _ := repo.Get(rec.ID)
						if rank[stored.Status] < rank[prev] {
							t.Fatalf("%s moved %s back to %s", op, prev, stored.Status)
						}
						if prev == models.TestimonialStatusDeleted && stored.Status != prev {
							t.Fatalf("%s left DELETED", op)
						}
						if rank[stored.Status] == rank[prev] && stored.Status != prev {
							t.Fatalf("%s moved %s sideways to %s", op, prev, stored.Status)
						}
						prev = stored.Status
					}
				})
			}
		}
	}
}
