package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/testimonial-hub/backend/internal/events"
	"github.com/testimonial-hub/backend/internal/lifecycle"
	"github.com/testimonial-hub/backend/internal/middleware"
	"github.com/testimonial-hub/backend/internal/models"
	"github.com/testimonial-hub/backend/internal/repositories"
	"github.com/testimonial-hub/backend/internal/services"
	"github.com/testimonial-hub/backend/internal/validation"
	"go.uber.org/zap"
)

var (
	testBusiness = uuid.New()
	testUser     = uuid.New()
)

type fakeTestimonials struct {
	err        error
	lastAction string
	lastActor  lifecycle.Actor
	submitted  services.SubmitInput
}

func (f *fakeTestimonials) result(id uuid.UUID, status string) (*models.Testimonial, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Testimonial{ID: id, BusinessID: testBusiness, Status: status}, nil
}

func (f *fakeTestimonials) Get(_ context.Context, _, id uuid.UUID) (*models.Testimonial, error) {
	return f.result(id, models.TestimonialStatusPending)
}

func (f *fakeTestimonials) Decide(_ context.Context, _, id uuid.UUID, action string, actor lifecycle.Actor) (*models.Testimonial, error) {
	f.lastAction, f.lastActor = action, actor
	return f.result(id, models.TestimonialStatusApproved)
}

func (f *fakeTestimonials) Delete(_ context.Context, _, id uuid.UUID, _ lifecycle.Actor) (*models.Testimonial, error) {
	return f.result(id, models.TestimonialStatusDeleted)
}

func (f *fakeTestimonials) List(context.Context, uuid.UUID, repositories.TestimonialFilter) ([]models.Testimonial, error) {
	return nil, f.err
}

func (f *fakeTestimonials) ListByCampaign(context.Context, uuid.UUID, uuid.UUID, repositories.TestimonialFilter) ([]models.Testimonial, error) {
	return nil, f.err
}

func (f *fakeTestimonials) Events(context.Context, uuid.UUID, uuid.UUID) ([]models.AuditLog, error) {
	return nil, f.err
}

func (f *fakeTestimonials) Submit(_ context.Context, _ uuid.UUID, in services.SubmitInput) (*models.Testimonial, error) {
	f.submitted = in
	return f.result(uuid.New(), models.TestimonialStatusPending)
}

// withIdentity stands in for AuthMiddleware.
func withIdentity(c *fiber.Ctx) error {
	c.Locals(middleware.CtxBusinessID, testBusiness)
	c.Locals(middleware.CtxUserID, testUser)
	c.Locals(middleware.CtxRole, models.RoleOwner)
	return c.Next()
}

func newTestimonialApp(svc *fakeTestimonials) *fiber.App {
	h := NewTestimonialHandler(svc, validation.New(), zap.NewNop())
	app := fiber.New()
	app.Use(middleware.RequestIDMiddleware(), withIdentity)
	app.Post("/testimonials/:id/decision", h.Decision)
	app.Delete("/testimonials/:id", h.DeleteTestimonial)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string, header map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %q: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func TestDecisionHandler(t *testing.T) {
	tests := []struct {
		name string
		id   string
		body string
		err  error
		want int
	}{
		{"approve", uuid.NewString(), `{"action":"approve"}`, nil, http.StatusOK},
		{"reject", uuid.NewString(), `{"action":"reject"}`, nil, http.StatusOK},
		{"unknown action", uuid.NewString(), `{"action":"publish"}`, nil, http.StatusBadRequest},
		{"missing action", uuid.NewString(), `{}`, nil, http.StatusBadRequest},
		{"malformed body", uuid.NewString(), `{`, nil, http.StatusBadRequest},
		{"bad id", "nope", `{"action":"approve"}`, nil, http.StatusBadRequest},
		{"not found", uuid.NewString(), `{"action":"approve"}`, fmt.Errorf("%w: x", lifecycle.ErrNotFound), http.StatusNotFound},
		{"already decided", uuid.NewString(), `{"action":"approve"}`, fmt.Errorf("%w: x", lifecycle.ErrInvalidTransition), http.StatusConflict},
		{"db down", uuid.NewString(), `{"action":"approve"}`, fmt.Errorf("%w: x", lifecycle.ErrPersistenceFailure), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeTestimonials{err: tt.err}
			status, body := do(t, newTestimonialApp(svc), "POST", "/testimonials/"+tt.id+"/decision", tt.body, nil)
			if status != tt.want {
				t.Fatalf("status = %d, want %d (%v)", status, tt.want, body)
			}
			if status == http.StatusOK {
				if body["ok"] != true {
					t.Errorf("body = %v", body)
				}
				if svc.lastActor.UserID == nil || *svc.lastActor.UserID != testUser {
					t.Errorf("actor = %+v", svc.lastActor)
				}
			}
			if status >= 400 && body["error"] == "" {
				t.Errorf("missing error message: %v", body)
			}
		})
	}
}

func TestDecisionValidationFields(t *testing.T) {
	_, body := do(t, newTestimonialApp(&fakeTestimonials{}), "POST", "/testimonials/"+uuid.NewString()+"/decision", `{"action":"publish"}`, nil)
	fields, _ := body["fields"].(map[string]any)
	rule, _ := fields["action"].(string)
	if !strings.HasPrefix(rule, "oneof") {
		t.Errorf("fields = %v", body["fields"])
	}
}

func TestDeleteHandlerReturnsDeleted(t *testing.T) {
	status, body := do(t, newTestimonialApp(&fakeTestimonials{}), "DELETE", "/testimonials/"+uuid.NewString(), "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	data, _ := body["data"].(map[string]any)
	if data["status"] != models.TestimonialStatusDeleted {
		t.Errorf("data = %v", data)
	}
}

type fakeViewer struct{}

func (fakeViewer) PublicView(_ context.Context, token uuid.UUID) (*models.PublicCampaign, error) {
	return &models.PublicCampaign{ID: token, Name: "Spring"}, nil
}

func TestSubmitHandler(t *testing.T) {
	svc := &fakeTestimonials{}
	h := NewPublicHandler(fakeViewer{}, svc, validation.New(), zap.NewNop())
	app := fiber.New()
	app.Post("/public/campaigns/:token/testimonials", h.SubmitTestimonial)
	path := "/public/campaigns/" + uuid.NewString() + "/testimonials"

	status, _ := do(t, app, "POST", path,
		`{"asset_id":"a1","url":"https://media.example/a1.mp4","duration_seconds":42,"file_size_bytes":1024}`,
		map[string]string{"Idempotency-Key": "k-1"})
	if status != http.StatusCreated {
		t.Fatalf("status = %d", status)
	}
	if svc.submitted.IdempotencyKey != "k-1" || svc.submitted.DurationSeconds != 42 {
		t.Errorf("submitted = %+v", svc.submitted)
	}

	status, _ = do(t, app, "POST", path, `{"asset_id":"a1","url":"not a url","duration_seconds":42}`, nil)
	if status != http.StatusBadRequest {
		t.Errorf("invalid url status = %d", status)
	}

	svc.err = fmt.Errorf("%w: 300s > 180s", services.ErrVideoTooLong)
	status, _ = do(t, app, "POST", path, `{"asset_id":"a1","url":"https://m.example/a","duration_seconds":300}`, nil)
	if status != http.StatusBadRequest {
		t.Errorf("too long status = %d", status)
	}

	status, _ = do(t, app, "POST", "/public/campaigns/not-a-token/testimonials", `{}`, nil)
	if status != http.StatusNotFound {
		t.Errorf("bad token status = %d", status)
	}
}

type fakeRunner struct {
	res lifecycle.SweepResult
}

func (f fakeRunner) Run(context.Context) lifecycle.SweepResult { return f.res }

func TestCleanupHandler(t *testing.T) {
	failed := uuid.New()
	h := NewCleanupHandler(fakeRunner{res: lifecycle.SweepResult{
		PendingExpired:  2,
		ApprovedExpired: 1,
		DeletedCount:    3,
		Failures: []lifecycle.SweepFailure{
			{TestimonialID: failed, Kind: lifecycle.KindStorageFailure, Error: "timeout"},
		},
	}})
	app := fiber.New()
	app.Post("/internal/cleanup", middleware.InternalTokenMiddleware("tok"), h.RunCleanup)

	status, _ := do(t, app, "POST", "/internal/cleanup", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("without token status = %d", status)
	}

	status, body := do(t, app, "POST", "/internal/cleanup", "", map[string]string{"Authorization": "Bearer tok"})
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["deleted_count"] != float64(3) || body["pending_expired"] != float64(2) || body["rejected_expired"] != float64(0) {
		t.Errorf("counts = %v", body)
	}
	failures, _ := body["failures"].([]any)
	if len(failures) != 1 {
		t.Fatalf("failures = %v", body["failures"])
	}
	f := failures[0].(map[string]any)
	if f["testimonial_id"] != failed.String() || f["kind"] != "storage_failure" {
		t.Errorf("failure = %v", f)
	}
}

func TestCleanupHandlerEmptyFailures(t *testing.T) {
	app := fiber.New()
	app.Post("/internal/cleanup", NewCleanupHandler(fakeRunner{}).RunCleanup)
	_, body := do(t, app, "POST", "/internal/cleanup", "", nil)
	if failures, ok := body["failures"].([]any); !ok || len(failures) != 0 {
		t.Errorf("failures = %#v, want empty list", body["failures"])
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: id", lifecycle.ErrNotFound), http.StatusNotFound},
		{services.ErrCampaignNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: x", lifecycle.ErrInvalidTransition), http.StatusConflict},
		{services.ErrCampaignArchived, http.StatusConflict},
		{services.ErrRequestInProgress, http.StatusConflict},
		{services.ErrInvalidAction, http.StatusBadRequest},
		{services.ErrVideoTooLarge, http.StatusBadRequest},
		{fmt.Errorf("%w: x", lifecycle.ErrStorageFailure), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got, _ := errorStatus(tt.err); got != tt.want {
				t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

type recordingConn struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (r *recordingConn) WriteMessage(_ int, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, data)
	return nil
}

func TestWSHubDispatchesByBusiness(t *testing.T) {
	hub := NewWSHub("secret", nil, zap.NewNop())
	mine, other := &recordingConn{}, &recordingConn{}
	hub.register(testBusiness, mine)
	hub.register(uuid.New(), other)

	hub.dispatch(events.Event{
		Type:    events.EventTestimonialStatusChanged,
		Payload: map[string]any{"business_id": testBusiness.String(), "new_status": "APPROVED"},
	})
	hub.dispatch(events.Event{Type: events.EventTestimonialStatusChanged, Payload: map[string]any{}})

	if len(mine.msgs) != 1 || !strings.Contains(string(mine.msgs[0]), "APPROVED") {
		t.Errorf("owner connection got %q", mine.msgs)
	}
	if len(other.msgs) != 0 {
		t.Errorf("other business received %d messages", len(other.msgs))
	}

	hub.unregister(testBusiness, mine)
	if _, ok := hub.connections[testBusiness]; ok {
		t.Error("empty business entry not removed")
	}
}

type fakeBusinessAPI struct {
	filter repositories.ActivityFilter
}

func (f *fakeBusinessAPI) Get(context.Context, uuid.UUID) (*models.Business, error) {
	return nil, services.ErrBusinessNotFound
}

func (f *fakeBusinessAPI) Save(context.Context, uuid.UUID, uuid.UUID, *string, string, services.BusinessInput) (*models.Business, error) {
	return &models.Business{}, nil
}

func (f *fakeBusinessAPI) Members(context.Context, uuid.UUID, uuid.UUID, *string, string) ([]models.BusinessMember, error) {
	return nil, nil
}

func (f *fakeBusinessAPI) Activity(_ context.Context, _ uuid.UUID, rf repositories.ActivityFilter) ([]models.AuditLog, error) {
	f.filter = rf
	return []models.AuditLog{{Action: "campaign_created"}}, nil
}

func TestBusinessActivity(t *testing.T) {
	svc := &fakeBusinessAPI{}
	h := NewBusinessHandler(svc, validation.New(), zap.NewNop())
	app := fiber.New()
	app.Use(middleware.RequestIDMiddleware(), withIdentity)
	app.Get("/business", h.GetBusiness)
	app.Get("/business/activity", h.ListActivity)

	status, body := do(t, app, http.MethodGet, "/business/activity?entity_type=campaign&since=2026-01-02T00:00:00Z&limit=5", "", nil)
	if status != http.StatusOK || body["ok"] != true {
		t.Fatalf("status = %d body = %v", status, body)
	}
	if svc.filter.EntityType == nil || *svc.filter.EntityType != "campaign" || svc.filter.Since == nil || svc.filter.Limit != 5 {
		t.Errorf("filter = %+v", svc.filter)
	}

	if status, _ := do(t, app, http.MethodGet, "/business/activity?since=yesterday", "", nil); status != http.StatusBadRequest {
		t.Errorf("bad since status = %d", status)
	}
	if status, _ := do(t, app, http.MethodGet, "/business", "", nil); status != http.StatusNotFound {
		t.Errorf("missing business status = %d", status)
	}
}
