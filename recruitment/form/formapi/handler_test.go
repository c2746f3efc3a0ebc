package formapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/hirekit/pkg/httpx"
	"github.com/Abraxas-365/hirekit/pkg/iam/auth"
	"github.com/Abraxas-365/hirekit/pkg/kernel"
	"github.com/Abraxas-365/hirekit/pkg/ratelimit"
	"github.com/Abraxas-365/hirekit/recruitment/form"
	"github.com/Abraxas-365/hirekit/recruitment/form/forminfra"
	"github.com/Abraxas-365/hirekit/recruitment/form/formsrv"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type testServer struct {
	app    *fiber.App
	tokens *auth.JWTService
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) *testServer {
	t.Helper()
	tokens := auth.NewJWTService("test-secret", "hirekit", time.Hour)
	handlers := NewHandlers(formsrv.NewFormService(forminfra.NewMemoryRepository()))

	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})
	RegisterRoutes(app, handlers, auth.NewUnifiedAuthMiddleware(tokens, nil))
	RegisterPublicRoutes(app, handlers, limiter)
	return &testServer{app: app, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path string, user kernel.UserID, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		token, err := s.tokens.GenerateAccessToken(user, "", map[string]any{"scopes": []string{auth.ScopeFormsAll}})
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func TestOwnerFormRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, http.MethodGet, "/api/forms/by-job/job-1", "owner-a", "")
	if status != http.StatusOK || !strings.Contains(string(body), `"form":null`) {
		t.Fatalf("expected empty lookup, got %d %s", status, body)
	}

	status, body = s.do(t, http.MethodPost, "/api/forms", "owner-a",
		`{"job_id":"job-1","fields":[{"name":"email","type":"email","required":true}],"settings":{"theme":"dark"}}`)
	if status != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d %s", status, body)
	}
	var created form.ApplicationForm
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !created.RequiresResume || created.MaxFileSizeMB != form.DefaultMaxFileSizeMB {
		t.Errorf("expected defaults, got %+v", created)
	}

	status, _ = s.do(t, http.MethodPost, "/api/forms", "owner-a", `{"job_id":"job-1"}`)
	if status != http.StatusConflict {
		t.Errorf("expected 409 for duplicate, got %d", status)
	}

	status, _ = s.do(t, http.MethodPost, "/api/forms", "owner-a", `{"job_id":"job-2","expires_at":"31/12/2026"}`)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed expiry, got %d", status)
	}

	status, _ = s.do(t, http.MethodPost, "/api/forms", "owner-a", `{"job_id":"job-3","fields":[{"label":"no name"}]}`)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid field, got %d", status)
	}

	status, _ = s.do(t, http.MethodGet, "/api/forms/"+created.ID.String(), "owner-b", "")
	if status != http.StatusForbidden {
		t.Errorf("expected 403 for other owner, got %d", status)
	}

	status, _ = s.do(t, http.MethodGet, "/api/forms/"+created.ID.String(), "", "")
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", status)
	}

	status, body = s.do(t, http.MethodPatch, "/api/forms/"+created.ID.String(), "owner-a", `{"is_public":false}`)
	if status != http.StatusOK || !strings.Contains(string(body), `"is_public":false`) {
		t.Errorf("expected patch to apply, got %d %s", status, body)
	}

	status, body = s.do(t, http.MethodGet, "/api/forms/stats", "owner-a", "")
	if status != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", status)
	}
	var stats form.FormStats
	_ = json.Unmarshal(body, &stats)
	if stats != (form.FormStats{TotalForms: 1, ActiveForms: 1, PublicForms: 0}) {
		t.Errorf("unexpected stats %+v", stats)
	}

	status, _ = s.do(t, http.MethodDelete, "/api/forms/"+created.ID.String(), "owner-a", "")
	if status != http.StatusNoContent {
		t.Errorf("expected 204, got %d", status)
	}
}

func TestPublicIntakeRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	status, _ := s.do(t, http.MethodGet, "/api/public/jobs/job-1/form", "", "")
	if status != http.StatusNotFound {
		t.Errorf("expected 404 before any form exists, got %d", status)
	}

	s.do(t, http.MethodPost, "/api/forms", "owner-a", `{"job_id":"job-1","is_active":false}`)
	status, body := s.do(t, http.MethodGet, "/api/public/jobs/job-1/form", "", "")
	if status != http.StatusNotFound {
		t.Errorf("expected 404 for inactive form, got %d", status)
	}
	var notFound map[string]any
	_ = json.Unmarshal(body, &notFound)
	if _, leaked := notFound["details"]; leaked {
		t.Errorf("expected public miss without details, got %s", body)
	}

	status, _ = s.do(t, http.MethodPost, "/api/public/jobs/job-1/form/submissions", "", "")
	if status != http.StatusNotFound {
		t.Errorf("expected inactive form to reject submissions, got %d", status)
	}

	s.do(t, http.MethodPost, "/api/forms", "owner-b", `{"job_id":"job-2"}`)
	status, body = s.do(t, http.MethodGet, "/api/public/jobs/job-2/form", "", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200 for visible form, got %d", status)
	}
	if strings.Contains(string(body), "owner_id") || strings.Contains(string(body), "submission_count") {
		t.Errorf("public view leaked owner data: %s", body)
	}

	for i := 0; i < 3; i++ {
		if status, body := s.do(t, http.MethodPost, "/api/public/jobs/job-2/form/submissions", "", ""); status != http.StatusAccepted {
			t.Fatalf("submit: expected 202, got %d %s", status, body)
		}
	}

	_, body = s.do(t, http.MethodGet, "/api/forms/by-job/job-2", "owner-b", "")
	var lookup form.FormByJobResponse
	_ = json.Unmarshal(body, &lookup)
	if lookup.Form == nil || lookup.Form.SubmissionCount != 3 {
		t.Errorf("expected 3 submissions, got %+v", lookup.Form)
	}
}

func TestPublicRoutesAreRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s := newTestServer(t, ratelimit.NewRedisLimiter(client, "test", 2, time.Minute))
	s.do(t, http.MethodPost, "/api/forms", "owner-a", `{"job_id":"job-1"}`)

	for i := 0; i < 2; i++ {
		if status, _ := s.do(t, http.MethodPost, "/api/public/jobs/job-1/form/submissions", "", ""); status != http.StatusAccepted {
			t.Fatalf("request %d: expected 202, got %d", i, status)
		}
	}
	if status, _ := s.do(t, http.MethodPost, "/api/public/jobs/job-1/form/submissions", "", ""); status != http.StatusTooManyRequests {
		t.Errorf("expected 429 over the limit, got %d", status)
	}

	// owner routes are not throttled
	if status, _ := s.do(t, http.MethodGet, "/api/forms/stats", "owner-a", ""); status != http.StatusOK {
		t.Errorf("expected owner route to pass, got %d", status)
	}
}
