package repositories

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testimonial-hub/backend/internal/db"
	"github.com/testimonial-hub/backend/internal/models"
	"go.uber.org/zap"
)

func TestUpdateStatusIsConditional(t *testing.T) {
	where := strings.Fields(updateStatusSQL[strings.LastIndex(updateStatusSQL, "WHERE"):])
	if got := strings.Join(where, " "); got != "WHERE id = $1 AND status = $2" {
		t.Errorf("update guard = %q", got)
	}
}

// newTestPool connects to TEST_POSTGRES_DSN inside a throwaway schema with the
// migrations applied. Tests are skipped when the variable is unset.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(admin.Close)
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatal(err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema + ",public"
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	if err := db.RunMigrations(ctx, pool, "../../migrations", zap.NewNop()); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return pool
}

func seedPending(t *testing.T, pool *pgxpool.Pool, recordedAt time.Time) *models.Testimonial {
	t.Helper()
	ctx := context.Background()
	campaign := &models.Campaign{
		BusinessID:    uuid.New(),
		CreatedByID:   uuid.New(),
		Name:          "Spring",
		CustomerName:  "Anna",
		CustomerEmail: "anna@example.com",
		ShareToken:    uuid.New(),
	}
	if err := NewCampaignRepo(pool).Create(ctx, campaign); err != nil {
		t.Fatal(err)
	}
	rec := &models.Testimonial{
		CampaignID:      campaign.ID,
		BusinessID:      campaign.BusinessID,
		Status:          models.TestimonialStatusPending,
		Media:           &models.MediaRef{AssetID: "testimonials/a1", URL: "https://media.example/a1.mp4"},
		DurationSeconds: 42,
		FileSizeBytes:   1 << 20,
		RecordedAt:      recordedAt,
	}
	if err := NewTestimonialRepo(pool).Create(ctx, rec); err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestTestimonialRepoCompareAndSet(t *testing.T) {
	pool := newTestPool(t)
	repo := NewTestimonialRepo(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	rec := seedPending(t, pool, now.Add(-time.Hour))

	expires := now.Add(15 * 24 * time.Hour)
	approve := models.StatusPatch{
		ExpectedStatus: models.TestimonialStatusPending,
		Status:         models.TestimonialStatusApproved,
		ApprovedAt:     &now,
		ExpiresAt:      &expires,
	}
	ok, err := repo.UpdateStatus(ctx, rec.ID, approve)
	if err != nil || !ok {
		t.Fatalf("first approve = %v, %v", ok, err)
	}
	if ok, err := repo.UpdateStatus(ctx, rec.ID, approve); err != nil || ok {
		t.Errorf("stale approve = %v, %v, want not applied", ok, err)
	}

	got, err := repo.FindByID(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.TestimonialStatusApproved || got.ExpiresAt == nil || !got.ExpiresAt.Equal(expires) {
		t.Errorf("after approve = %+v", got)
	}

	deleted := models.StatusPatch{
		ExpectedStatus: models.TestimonialStatusApproved,
		Status:         models.TestimonialStatusDeleted,
		DeletedAt:      &now,
		ClearMedia:     true,
	}
	if ok, err := repo.UpdateStatus(ctx, rec.ID, deleted); err != nil || !ok {
		t.Fatalf("delete = %v, %v", ok, err)
	}
	got, _ = repo.FindByID(ctx, rec.ID)
	if got.Media != nil || got.ExpiresAt != nil || got.DeletedAt == nil {
		t.Errorf("after delete = %+v", got)
	}

	if ok, _ := repo.UpdateStatus(ctx, uuid.New(), approve); ok {
		t.Error("update of a missing row reported success")
	}
}

func TestTestimonialRepoConcurrentReview(t *testing.T) {
	pool := newTestPool(t)
	repo := NewTestimonialRepo(pool)
	now := time.Now().UTC()
	expires := now.Add(24 * time.Hour)

	for round := 0; round < 10; round++ {
		rec := seedPending(t, pool, now)
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			applied []string
		)
		for _, status := range []string{models.TestimonialStatusApproved, models.TestimonialStatusRejected} {
			wg.Add(1)
			go func(status string) {
				defer wg.Done()
				ok, err := repo.UpdateStatus(context.Background(), rec.ID, models.StatusPatch{
					ExpectedStatus: models.TestimonialStatusPending,
					Status:         status,
					ExpiresAt:      &expires,
				})
				if err != nil {
					t.Errorf("%s: %v", status, err)
					return
				}
				if ok {
					mu.Lock()
					applied = append(applied, status)
					mu.Unlock()
				}
			}(status)
		}
		wg.Wait()

		if len(applied) != 1 {
			t.Fatalf("round %d: applied = %v, want exactly one", round, applied)
		}
		got, _ := repo.FindByID(context.Background(), rec.ID)
		if got.Status != applied[0] {
			t.Errorf("round %d: stored %s, winner %s", round, got.Status, applied[0])
		}
	}
}
