package pipelinesrv

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Abraxas-365/hirekit/pkg/errx"
	"github.com/Abraxas-365/hirekit/pkg/kernel"
	"github.com/Abraxas-365/hirekit/pkg/telemetry"
	"github.com/Abraxas-365/hirekit/recruitment/ownership"
	"github.com/Abraxas-365/hirekit/recruitment/pipeline"
	"github.com/Abraxas-365/hirekit/recruitment/pipeline/pipelineinfra"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newService(t *testing.T, policy pipeline.StagePolicy) (*PipelineService, *pipelineinfra.MemoryRepository, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	repo := pipelineinfra.NewMemoryRepository()
	return NewPipelineService(repo, policy, WithClock(clock.Now)), repo, clock
}

func createProcess(t *testing.T, svc *PipelineService, owner kernel.UserID) *pipeline.HiringProcess {
	t.Helper()
	p, err := svc.CreateProcess(context.Background(), owner, pipeline.CreateHiringProcessRequest{
		JobID:  "job-1",
		Title:  "Platform Engineer",
		Stages: []pipeline.Stage{"Screening", "PhoneInterview", "Onsite", "Offer", "Hired", "Rejected"},
	})
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	return p
}

func TestAdvanceStageOwnershipAndMembership(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newService(t, pipeline.StagePolicyFree)
	p := createProcess(t, svc, "owner-a")

	if _, err := svc.AdvanceStage(ctx, p.ID, "owner-b", "Onsite"); !errx.IsCode(err, ownership.CodeForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	if _, err := svc.AdvanceStage(ctx, p.ID, "owner-a", "Reference"); !errx.IsCode(err, pipeline.CodeInvalidStageTransition) {
		t.Fatalf("expected undeclared stage to fail, got %v", err)
	}

	clock.Advance(time.Minute)
	updated, err := svc.AdvanceStage(ctx, p.ID, "owner-a", "Onsite")
	if err != nil {
		t.Fatalf("AdvanceStage: %v", err)
	}
	if updated.CurrentStage != "Onsite" {
		t.Errorf("expected Onsite, got %s", updated.CurrentStage)
	}
	if !updated.UpdatedAt.After(p.UpdatedAt) {
		t.Errorf("expected updatedAt to move, before=%s after=%s", p.UpdatedAt, updated.UpdatedAt)
	}

	stored, err := svc.GetProcess(ctx, p.ID, "owner-a")
	if err != nil {
		t.Fatalf("GetProcess: %v", err)
	}
	if stored.CurrentStage != "Onsite" || stored.Version != 2 {
		t.Errorf("unexpected stored state %s v%d", stored.CurrentStage, stored.Version)
	}
}

func TestForwardOnlyPolicy(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, pipeline.StagePolicyForwardOnly)
	p := createProcess(t, svc, "owner-a")

	if _, err := svc.AdvanceStage(ctx, p.ID, "owner-a", "Offer"); err != nil {
		t.Fatalf("forward move: %v", err)
	}
	if _, err := svc.AdvanceStage(ctx, p.ID, "owner-a", "PhoneInterview"); !errx.IsCode(err, pipeline.CodeInvalidStageTransition) {
		t.Errorf("expected backward move to fail, got %v", err)
	}
}

func TestStageMetricsIgnoreStageNames(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, pipeline.StagePolicyFree)

	for i := 0; i < 200; i++ {
		stage := pipeline.Stage(fmt.Sprintf("Panel-%d", i))
		p, err := svc.CreateProcess(ctx, "owner-a", pipeline.CreateHiringProcessRequest{
			JobID:  kernel.JobID(fmt.Sprintf("job-%d", i)),
			Title:  "Data Engineer",
			Stages: []pipeline.Stage{pipeline.DefaultStage, stage},
		})
		if err != nil {
			t.Fatalf("CreateProcess %d: %v", i, err)
		}
		if _, err := svc.AdvanceStage(ctx, p.ID, "owner-a", stage); err != nil {
			t.Fatalf("AdvanceStage %d: %v", i, err)
		}
	}

	// labels are policy x direction only
	if n := testutil.CollectAndCount(telemetry.StageTransitions); n > 6 {
		t.Errorf("expected at most 6 stage transition series, got %d", n)
	}
	if v := testutil.ToFloat64(telemetry.StageTransitions.WithLabelValues("free", "forward")); v < 200 {
		t.Errorf("expected at least 200 forward moves counted, got %v", v)
	}
}

func TestUpdateStatusFlow(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, "")
	p := createProcess(t, svc, "owner-a")

	same, err := svc.UpdateStatus(ctx, p.ID, "owner-a", pipeline.StatusDraft)
	if err != nil {
		t.Fatalf("self transition: %v", err)
	}
	if same.Version != p.Version {
		t.Errorf("expected self transition not to write, version %d -> %d", p.Version, same.Version)
	}

	if _, err := svc.UpdateStatus(ctx, p.ID, "owner-a", pipeline.StatusPaused); !errx.IsCode(err, pipeline.CodeInvalidStatusTransition) {
		t.Fatalf("expected Draft -> Paused to fail, got %v", err)
	}

	for _, next := range []pipeline.Status{pipeline.StatusActive, pipeline.StatusPaused, pipeline.StatusActive, pipeline.StatusCompleted} {
		if _, err := svc.UpdateStatus(ctx, p.ID, "owner-a", next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	if _, err := svc.UpdateStatus(ctx, p.ID, "owner-a", pipeline.StatusActive); !errx.IsCode(err, pipeline.CodeInvalidStatusTransition) {
		t.Errorf("expected Completed to be terminal, got %v", err)
	}

	allowed, err := svc.AllowedTransitions(ctx, p.ID, "owner-a")
	if err != nil {
		t.Fatalf("AllowedTransitions: %v", err)
	}
	if allowed.Current != pipeline.StatusCompleted || len(allowed.Allowed) != 0 {
		t.Errorf("unexpected transitions %+v", allowed)
	}
}

func TestMembersAndSchedule(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, "")
	p := createProcess(t, svc, "owner-a")

	if _, err := svc.AddCandidates(ctx, p.ID, "owner-b", []kernel.CandidateID{"c1"}); !errx.IsCode(err, ownership.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	got, err := svc.AddCandidates(ctx, p.ID, "owner-a", []kernel.CandidateID{"c1", "c2"})
	if err != nil {
		t.Fatalf("AddCandidates: %v", err)
	}
	again, err := svc.AddCandidates(ctx, p.ID, "owner-a", []kernel.CandidateID{"c2"})
	if err != nil {
		t.Fatalf("AddCandidates again: %v", err)
	}
	if again.Version != got.Version || len(again.CandidateIDs) != 2 {
		t.Errorf("expected idempotent add, got v%d -> v%d %v", got.Version, again.Version, again.CandidateIDs)
	}

	if _, err := svc.AddInterviewers(ctx, p.ID, "owner-a", []kernel.UserID{"i1"}); err != nil {
		t.Fatalf("AddInterviewers: %v", err)
	}

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-24 * time.Hour)
	scheduled, err := svc.SetSchedule(ctx, p.ID, "owner-a", &start, &end)
	if err != nil {
		t.Fatalf("SetSchedule: %v", err)
	}
	if !scheduled.StartDate.Equal(start) || !scheduled.EndDate.Equal(end) {
		t.Errorf("expected dates stored verbatim, got %v %v", scheduled.StartDate, scheduled.EndDate)
	}
}

func TestUpdateDetailsKeepsAttributes(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, "")
	p := createProcess(t, svc, "owner-a")

	title := kernel.ProcessTitle("Staff Platform Engineer")
	criteria := kernel.Attributes{
		"min_years": kernel.Int(5),
		"skills":    kernel.List(kernel.String("go"), kernel.String("k8s")),
	}
	updated, err := svc.UpdateDetails(ctx, p.ID, "owner-a", pipeline.UpdateHiringProcessRequest{
		Title:    &title,
		Criteria: criteria,
	})
	if err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	if updated.Title != title || !updated.Criteria["skills"].Equal(criteria["skills"]) {
		t.Errorf("unexpected details %+v", updated)
	}
	if updated.Description != p.Description {
		t.Error("expected untouched description to survive")
	}
}

func TestDeleteProcess(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, "")
	p := createProcess(t, svc, "owner-a")

	if err := svc.DeleteProcess(ctx, p.ID, "owner-b"); !errx.IsCode(err, ownership.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.DeleteProcess(ctx, p.ID, "owner-a"); err != nil {
		t.Fatalf("DeleteProcess: %v", err)
	}
	if _, err := svc.GetProcess(ctx, p.ID, "owner-a"); !errx.IsCode(err, pipeline.CodeNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

// racingRepo lets another writer commit between a read and the write that follows it
type racingRepo struct {
	*pipelineinfra.MemoryRepository
	raced bool
}

func (r *racingRepo) GetByID(ctx context.Context, id kernel.HiringProcessID) (*pipeline.HiringProcess, error) {
	p, err := r.MemoryRepository.GetByID(ctx, id)
	if err != nil || r.raced {
		return p, err
	}
	r.raced = true

	other, _ := r.MemoryRepository.GetByID(ctx, id)
	other.CurrentStage = "Rejected"
	if err := r.MemoryRepository.Update(ctx, other); err != nil {
		return nil, err
	}
	return p, nil
}

func TestStaleWriteSurfacesConflict(t *testing.T) {
	ctx := context.Background()
	mem := pipelineinfra.NewMemoryRepository()
	seedSvc := NewPipelineService(mem, "")
	p := createProcess(t, seedSvc, "owner-a")

	svc := NewPipelineService(&racingRepo{MemoryRepository: mem}, "")
	if _, err := svc.AdvanceStage(ctx, p.ID, "owner-a", "Offer"); !errx.IsCode(err, pipeline.CodeVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	// retry with fresh state succeeds
	updated, err := svc.AdvanceStage(ctx, p.ID, "owner-a", "Offer")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if updated.CurrentStage != "Offer" || updated.Version != 3 {
		t.Errorf("unexpected state after retry %s v%d", updated.CurrentStage, updated.Version)
	}
}
