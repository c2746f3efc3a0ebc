package pipelineinfra

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/Abraxas-365/hirekit/pkg/kernel"
	"github.com/Abraxas-365/hirekit/recruitment/pipeline"
)

// MemoryRepository implements pipeline.Repository in process memory.
// Used with STORE_DRIVER=memory and in tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	processes map[kernel.HiringProcessID]pipeline.HiringProcess
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		processes: make(map[kernel.HiringProcessID]pipeline.HiringProcess),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, p *pipeline.HiringProcess) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.processes[p.ID]; exists {
		return fmt.Errorf("hiring process %s already stored", p.ID)
	}
	r.processes[p.ID] = clone(*p)
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id kernel.HiringProcessID) (*pipeline.HiringProcess, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.processes[id]
	if !ok {
		return nil, pipeline.ErrNotFound()
	}
	out := clone(stored)
	return &out, nil
}

func (r *MemoryRepository) Update(ctx context.Context, p *pipeline.HiringProcess) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.processes[p.ID]
	if !ok {
		return pipeline.ErrNotFound()
	}
	if stored.Version != p.Version {
		return pipeline.ErrVersionConflict().
			WithDetail("expected_version", p.Version).
			WithDetail("current_version", stored.Version)
	}

	next := clone(*p)
	next.OwnerID = stored.OwnerID
	next.JobID = stored.JobID
	next.CreatedAt = stored.CreatedAt
	next.Version = stored.Version + 1
	r.processes[p.ID] = next

	p.Version = next.Version
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id kernel.HiringProcessID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.processes[id]; !ok {
		return pipeline.ErrNotFound()
	}
	delete(r.processes, id)
	return nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID kernel.UserID, filter pipeline.ListFilter, pagination kernel.PaginationOptions) (*kernel.Paginated[pipeline.HiringProcess], error) {
	r.mu.RLock()
	matched := make([]pipeline.HiringProcess, 0)
	for _, p := range r.processes {
		if p.OwnerID != ownerID {
			continue
		}
		if !filter.JobID.IsEmpty() && p.JobID != filter.JobID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		matched = append(matched, clone(p))
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	pagination = pagination.Normalize()
	total := len(matched)
	start := min(pagination.Offset(), total)
	end := min(start+pagination.PageSize, total)

	return kernel.NewPaginated(matched[start:end], pagination, total), nil
}

// clone detaches the slices and maps of p from the stored copy
func clone(p pipeline.HiringProcess) pipeline.HiringProcess {
	p.Stages = slices.Clone(p.Stages)
	p.CandidateIDs = slices.Clone(p.CandidateIDs)
	p.InterviewerIDs = slices.Clone(p.InterviewerIDs)
	p.Criteria = p.Criteria.Clone()
	p.Settings = p.Settings.Clone()
	if p.StartDate != nil {
		d := *p.StartDate
		p.StartDate = &d
	}
	if p.EndDate != nil {
		d := *p.EndDate
		p.EndDate = &d
	}
	return p
}
