package formsrv

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/hirekit/pkg/errx"
	"github.com/Abraxas-365/hirekit/pkg/kernel"
	"github.com/Abraxas-365/hirekit/recruitment/form"
	"github.com/Abraxas-365/hirekit/recruitment/form/forminfra"
	"github.com/Abraxas-365/hirekit/recruitment/ownership"
)

var now = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newService(t *testing.T) *FormService {
	t.Helper()
	return NewFormService(forminfra.NewMemoryRepository(), WithClock(func() time.Time { return now }))
}

func mustCreate(t *testing.T, svc *FormService, owner kernel.UserID, req form.CreateFormRequest) *form.ApplicationForm {
	t.Helper()
	f, err := svc.CreateForm(context.Background(), owner, req)
	if err != nil {
		t.Fatalf("CreateForm: %v", err)
	}
	return f
}

func TestCreateFormUniqueness(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	mustCreate(t, svc, "owner-a", form.CreateFormRequest{JobID: "job-1"})

	if _, err := svc.CreateForm(ctx, "owner-a", form.CreateFormRequest{JobID: "job-1"}); !errx.IsCode(err, form.CodeAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	if _, err := svc.CreateForm(ctx, "owner-a", form.CreateFormRequest{JobID: "job-2", ExpiresAt: ptr("tomorrow")}); !errx.IsCode(err, form.CodeInvalidExpiry) {
		t.Errorf("expected invalid expiry, got %v", err)
	}
}

func TestGetFormOwnership(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	f := mustCreate(t, svc, "owner-a", form.CreateFormRequest{JobID: "job-1"})

	if _, err := svc.GetForm(ctx, f.ID, "owner-b"); !errx.IsCode(err, ownership.CodeForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
	if _, err := svc.GetForm(ctx, "missing", "owner-a"); !errx.IsCode(err, form.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	got, err := svc.GetFormByJob(ctx, "job-1", "owner-a")
	if err != nil || got == nil || got.ID != f.ID {
		t.Errorf("expected owner lookup to find the form, got %v %v", got, err)
	}

	none, err := svc.GetFormByJob(ctx, "job-1", "owner-b")
	if err != nil || none != nil {
		t.Errorf("expected nil without error for another owner, got %v %v", none, err)
	}
}

func TestPublicFormHidesNonVisibleForms(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	expired := now.Add(-time.Second).Format(time.RFC3339)
	mustCreate(t, svc, "owner-a", form.CreateFormRequest{JobID: "job-expired", ExpiresAt: &expired})
	mustCreate(t, svc, "owner-a", form.CreateFormRequest{JobID: "job-private", IsPublic: ptr(false)})
	mustCreate(t, svc, "owner-a", form.CreateFormRequest{JobID: "job-inactive", IsActive: ptr(false)})
	visible := mustCreate(t, svc, "owner-a", form.CreateFormRequest{JobID: "job-open"})

	for _, job := range []kernel.JobID{"job-expired", "job-private", "job-inactive", "job-unknown"} {
		f, err := svc.GetPublicForm(ctx, job)
		if f != nil || !errx.IsCode(err, form.CodeNotFound) {
			t.Errorf("%s: expected not found, got %v %v", job, f, err)
		}
		if e, ok := errx.As(err); ok && len(e.Details) != 0 {
			t.Errorf("%s: expected no details on public miss, got %v", job, e.Details)
		}
	}

	f, err := svc.GetPublicForm(ctx, "job-open")
	if err != nil || f.ID != visible.ID {
		t.Errorf("expected visible form, got %v %v", f, err)
	}
}

func TestSubmitPublicCountsOnlyVisibleForms(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	hidden := mustCreate(t, svc, "owner-a", form.CreateFormRequest{JobID: "job-1", IsPublic: ptr(false)})

	if _, err := svc.SubmitPublic(ctx, "job-1"); !errx.IsCode(err, form.CodeNotFound) {
		t.Fatalf("expected hidden form to reject submissions, got %v", err)
	}
	if got, _ := svc.GetForm(ctx, hidden.ID, "owner-a"); got.SubmissionCount != 0 {
		t.Errorf("expected no submissions counted, got %d", got.SubmissionCount)
	}

	if _, err := svc.UpdateForm(ctx, hidden.ID, "owner-a", form.UpdateFormRequest{IsPublic: ptr(true)}); err != nil {
		t.Fatalf("UpdateForm: %v", err)
	}
	receipt, err := svc.SubmitPublic(ctx, "job-1")
	if err != nil {
		t.Fatalf("SubmitPublic: %v", err)
	}
	if receipt.FormID != hidden.ID {
		t.Errorf("unexpected receipt %+v", receipt)
	}
}

func TestConcurrentSubmissions(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	f := mustCreate(t, svc, "owner-a", form.CreateFormRequest{JobID: "job-1"})

	for _, n := range []int{2, 100} {
		before, _ := svc.GetForm(ctx, f.ID, "owner-a")

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.RecordSubmission(ctx, f.ID); err != nil {
					t.Errorf("RecordSubmission: %v", err)
				}
			}()
		}
		wg.Wait()

		after, _ := svc.GetForm(ctx, f.ID, "owner-a")
		if after.SubmissionCount-before.SubmissionCount != int64(n) {
			t.Errorf("expected +%d submissions, got %d -> %d", n, before.SubmissionCount, after.SubmissionCount)
		}
	}

	if _, err := svc.RecordSubmission(ctx, "missing"); !errx.IsCode(err, form.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdateFormDoesNotResetSubmissions(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	expiry := now.Add(time.Hour).Format(time.RFC3339)
	f := mustCreate(t, svc, "owner-a", form.CreateFormRequest{JobID: "job-1", ExpiresAt: &expiry})

	for i := 0; i < 4; i++ {
		if _, err := svc.RecordSubmission(ctx, f.ID); err != nil {
			t.Fatalf("RecordSubmission: %v", err)
		}
	}

	if _, err := svc.UpdateForm(ctx, f.ID, "owner-b", form.UpdateFormRequest{IsActive: ptr(false)}); !errx.IsCode(err, ownership.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	updated, err := svc.UpdateForm(ctx, f.ID, "owner-a", form.UpdateFormRequest{ExpiresAt: ptr(""), MaxFileSizeMB: ptr(20)})
	if err != nil {
		t.Fatalf("UpdateForm: %v", err)
	}
	if updated.ExpiresAt != nil || updated.MaxFileSizeMB != 20 {
		t.Errorf("patch not applied: %+v", updated)
	}
	if updated.SubmissionCount != 4 {
		t.Errorf("expected 4 submissions to survive the edit, got %d", updated.SubmissionCount)
	}

	if _, err := svc.UpdateForm(ctx, f.ID, "owner-a", form.UpdateFormRequest{ExpiresAt: ptr("soon")}); !errx.IsCode(err, form.CodeInvalidExpiry) {
		t.Errorf("expected invalid expiry, got %v", err)
	}
}

func TestDeleteForm(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	f := mustCreate(t, svc, "owner-a", form.CreateFormRequest{JobID: "job-1"})

	if err := svc.DeleteForm(ctx, f.ID, "owner-b"); !errx.IsCode(err, ownership.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.DeleteForm(ctx, f.ID, "owner-a"); err != nil {
		t.Fatalf("DeleteForm: %v", err)
	}
	if _, err := svc.GetPublicForm(ctx, "job-1"); !errx.IsCode(err, form.CodeNotFound) {
		t.Errorf("expected deleted form to vanish from public lookup, got %v", err)
	}
	mustCreate(t, svc, "owner-a", form.CreateFormRequest{JobID: "job-1"})
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	f := mustCreate(t, svc, "owner-a", form.CreateFormRequest{JobID: "job-1"})
	for i := 0; i < 5; i++ {
		if _, err := svc.RecordSubmission(ctx, f.ID); err != nil {
			t.Fatalf("RecordSubmission: %v", err)
		}
	}
	mustCreate(t, svc, "owner-b", form.CreateFormRequest{JobID: "job-1"})

	stats, err := svc.GetStats(ctx, "owner-a")
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	want := form.FormStats{TotalForms: 1, ActiveForms: 1, TotalSubmissions: 5, PublicForms: 1}
	if *stats != want {
		t.Errorf("expected %+v, got %+v", want, *stats)
	}

	page, err := svc.ListForms(ctx, "owner-a", kernel.PaginationOptions{})
	if err != nil {
		t.Fatalf("ListForms: %v", err)
	}
	if page.Page.Total != 1 || page.Page.Size != 20 {
		t.Errorf("unexpected page %+v", page.Page)
	}
}

func TestStatsReevaluateExpiry(t *testing.T) {
	ctx := context.Background()
	clock := now
	svc := NewFormService(forminfra.NewMemoryRepository(), WithClock(func() time.Time { return clock }))

	expiry := now.Add(time.Minute).Format(time.RFC3339)
	mustCreate(t, svc, "owner-a", form.CreateFormRequest{JobID: "job-1", ExpiresAt: &expiry})

	stats, _ := svc.GetStats(ctx, "owner-a")
	if stats.ActiveForms != 1 {
		t.Fatalf("expected active form before expiry, got %+v", stats)
	}

	clock = now.Add(2 * time.Minute)
	stats, _ = svc.GetStats(ctx, "owner-a")
	if stats.ActiveForms != 0 || stats.TotalForms != 1 {
		t.Errorf("expected expired form to stop counting as active, got %+v", stats)
	}
	if _, err := svc.GetPublicForm(ctx, "job-1"); !errx.IsCode(err, form.CodeNotFound) {
		t.Errorf("expected expired form to be hidden, got %v", err)
	}
}
