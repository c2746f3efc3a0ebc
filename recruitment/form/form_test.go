package form

import (
	"testing"
	"time"

	"github.com/Abraxas-365/hirekit/pkg/errx"
)

var now = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newForm(t *testing.T, p NewFormParams) *ApplicationForm {
	t.Helper()
	if p.OwnerID == "" {
		p.OwnerID = "owner-a"
	}
	if p.JobID == "" {
		p.JobID = "job-1"
	}
	p.Now = now
	f, err := NewApplicationForm(p)
	if err != nil {
		t.Fatalf("NewApplicationForm: %v", err)
	}
	return f
}

func TestNewApplicationFormDefaults(t *testing.T) {
	f := newForm(t, NewFormParams{})

	if !f.RequiresResume || f.AllowMultipleFiles {
		t.Errorf("unexpected resume defaults resume=%v multi=%v", f.RequiresResume, f.AllowMultipleFiles)
	}
	if f.MaxFileSizeMB != DefaultMaxFileSizeMB {
		t.Errorf("expected %d MB, got %d", DefaultMaxFileSizeMB, f.MaxFileSizeMB)
	}
	if len(f.AllowedFileTypes) != 3 || !f.AcceptsFileType(".PDF") {
		t.Errorf("unexpected file types %v", f.AllowedFileTypes)
	}
	if !f.IsActive || !f.IsPublic || f.SubmissionCount != 0 || f.Version != 1 {
		t.Errorf("unexpected initial form %+v", f)
	}

	custom := newForm(t, NewFormParams{
		MaxFileSizeMB:    ptr(25),
		AllowedFileTypes: []string{"PDF", ".png", "pdf", ""},
		IsPublic:         ptr(false),
	})
	if custom.MaxFileSizeMB != 25 || len(custom.AllowedFileTypes) != 2 || custom.IsPublic {
		t.Errorf("unexpected custom form %+v", custom)
	}

	_, err := NewApplicationForm(NewFormParams{OwnerID: "owner-a", JobID: "job-1", MaxFileSizeMB: ptr(0)})
	if !errx.IsCode(err, CodeValidationFailed) {
		t.Errorf("expected invalid size to fail, got %v", err)
	}
}

func TestPublicVisibility(t *testing.T) {
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		params  NewFormParams
		visible bool
	}{
		{"defaults", NewFormParams{}, true},
		{"future expiry", NewFormParams{ExpiresAt: &future}, true},
		{"not public", NewFormParams{IsPublic: ptr(false)}, false},
		{"inactive", NewFormParams{IsActive: ptr(false)}, false},
		{"expired", NewFormParams{ExpiresAt: &past}, false},
		{"expires exactly now", NewFormParams{ExpiresAt: &now}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newForm(t, tc.params)
			if got := f.IsPubliclyVisible(now); got != tc.visible {
				t.Errorf("expected visible=%v, got %v", tc.visible, got)
			}
		})
	}
}

func TestApplyPatch(t *testing.T) {
	expiry := now.Add(24 * time.Hour)
	f := newForm(t, NewFormParams{ExpiresAt: &expiry})
	f.SubmissionCount = 7

	later := now.Add(time.Minute)
	err := f.Apply(Patch{
		IsActive:    ptr(false),
		ClearExpiry: true,
		Fields:      FormFields{{Name: "email", Type: FieldTypeEmail, Required: true}},
	}, later)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if f.IsActive || f.ExpiresAt != nil || len(f.Fields) != 1 {
		t.Errorf("patch not applied: %+v", f)
	}
	if f.SubmissionCount != 7 {
		t.Errorf("expected submission count untouched, got %d", f.SubmissionCount)
	}
	if !f.UpdatedAt.Equal(later) {
		t.Errorf("expected updatedAt %s, got %s", later, f.UpdatedAt)
	}

	if err := f.Apply(Patch{MaxFileSizeMB: ptr(MaxFileSizeMBLimit + 1)}, later); !errx.IsCode(err, CodeValidationFailed) {
		t.Errorf("expected oversize limit to fail, got %v", err)
	}
}

func TestParseExpiry(t *testing.T) {
	if got, err := ParseExpiry(nil); got != nil || err != nil {
		t.Errorf("expected nil expiry, got %v %v", got, err)
	}
	if got, err := ParseExpiry(ptr("")); got != nil || err != nil {
		t.Errorf("expected empty string to mean no expiry, got %v %v", got, err)
	}

	got, err := ParseExpiry(ptr("2026-12-31T23:59:59+02:00"))
	if err != nil {
		t.Fatalf("ParseExpiry: %v", err)
	}
	if want := time.Date(2026, 12, 31, 21, 59, 59, 0, time.UTC); !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}

	if _, err := ParseExpiry(ptr("next tuesday")); !errx.IsCode(err, CodeInvalidExpiry) {
		t.Errorf("expected invalid expiry, got %v", err)
	}
}

func TestComputeStats(t *testing.T) {
	past := now.Add(-time.Minute)

	one := newForm(t, NewFormParams{})
	one.SubmissionCount = 5
	stats := ComputeStats([]ApplicationForm{*one}, now)
	want := FormStats{TotalForms: 1, ActiveForms: 1, TotalSubmissions: 5, PublicForms: 1}
	if stats != want {
		t.Errorf("expected %+v, got %+v", want, stats)
	}

	private := newForm(t, NewFormParams{JobID: "job-2", IsPublic: ptr(false)})
	private.SubmissionCount = 2
	expired := newForm(t, NewFormParams{JobID: "job-3", ExpiresAt: &past})
	expired.SubmissionCount = 1

	stats = ComputeStats([]ApplicationForm{*one, *private, *expired}, now)
	want = FormStats{TotalForms: 3, ActiveForms: 2, TotalSubmissions: 8, PublicForms: 2}
	if stats != want {
		t.Errorf("expected %+v, got %+v", want, stats)
	}

	if (ComputeStats(nil, now) != FormStats{}) {
		t.Error("expected zero stats for no forms")
	}
}

func TestFormFieldsScan(t *testing.T) {
	var fields FormFields
	if err := fields.Scan([]byte(`[{"name":"linkedin","type":"url","required":false,"config":{"placeholder_host":"linkedin.com"}}]`)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(fields) != 1 || fields[0].Type != FieldTypeURL {
		t.Fatalf("unexpected fields %+v", fields)
	}
	if s, _ := fields[0].Config["placeholder_host"].AsString(); s != "linkedin.com" {
		t.Errorf("expected config to survive, got %q", s)
	}

	var empty FormFields
	if err := empty.Scan(nil); err != nil || empty == nil {
		t.Errorf("expected empty non-nil fields from NULL, got %v %v", empty, err)
	}
}
