package forminfra

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/Abraxas-365/hirekit/pkg/kernel"
	"github.com/Abraxas-365/hirekit/recruitment/form"
)

type ownerJob struct {
	owner kernel.UserID
	job   kernel.JobID
}

// MemoryRepository implements form.Repository in process memory.
// A single mutex serialises writers, so IncrementSubmissionCount is atomic.
type MemoryRepository struct {
	mu      sync.RWMutex
	forms   map[kernel.ApplicationFormID]form.ApplicationForm
	byOwner map[ownerJob]kernel.ApplicationFormID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		forms:   make(map[kernel.ApplicationFormID]form.ApplicationForm),
		byOwner: make(map[ownerJob]kernel.ApplicationFormID),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, f *form.ApplicationForm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ownerJob{f.OwnerID, f.JobID}
	if _, exists := r.byOwner[key]; exists {
		return form.ErrAlreadyExists()
	}
	if _, exists := r.forms[f.ID]; exists {
		return fmt.Errorf("application form %s already stored", f.ID)
	}

	r.forms[f.ID] = clone(*f)
	r.byOwner[key] = f.ID
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id kernel.ApplicationFormID) (*form.ApplicationForm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.forms[id]
	if !ok {
		return nil, form.ErrNotFound()
	}
	out := clone(stored)
	return &out, nil
}

func (r *MemoryRepository) GetByOwnerAndJob(ctx context.Context, ownerID kernel.UserID, jobID kernel.JobID) (*form.ApplicationForm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byOwner[ownerJob{ownerID, jobID}]
	if !ok {
		return nil, form.ErrNotFound()
	}
	out := clone(r.forms[id])
	return &out, nil
}

func (r *MemoryRepository) ListByJob(ctx context.Context, jobID kernel.JobID) ([]form.ApplicationForm, error) {
	return r.filter(func(f *form.ApplicationForm) bool { return f.JobID == jobID }), nil
}

func (r *MemoryRepository) ListAllByOwner(ctx context.Context, ownerID kernel.UserID) ([]form.ApplicationForm, error) {
	return r.filter(func(f *form.ApplicationForm) bool { return f.OwnerID == ownerID }), nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[form.ApplicationForm], error) {
	all := r.filter(func(f *form.ApplicationForm) bool { return f.OwnerID == ownerID })

	pagination = pagination.Normalize()
	total := len(all)
	start := min(pagination.Offset(), total)
	end := min(start+pagination.PageSize, total)

	return kernel.NewPaginated(all[start:end], pagination, total), nil
}

func (r *MemoryRepository) Update(ctx context.Context, f *form.ApplicationForm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.forms[f.ID]
	if !ok {
		return form.ErrNotFound()
	}
	if stored.Version != f.Version {
		return form.ErrVersionConflict().
			WithDetail("expected_version", f.Version).
			WithDetail("current_version", stored.Version)
	}

	next := clone(*f)
	next.OwnerID = stored.OwnerID
	next.JobID = stored.JobID
	next.CreatedAt = stored.CreatedAt
	next.SubmissionCount = stored.SubmissionCount
	next.Version = stored.Version + 1
	r.forms[f.ID] = next

	f.Version = next.Version
	f.SubmissionCount = next.SubmissionCount
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id kernel.ApplicationFormID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.forms[id]
	if !ok {
		return form.ErrNotFound()
	}
	delete(r.forms, id)
	delete(r.byOwner, ownerJob{stored.OwnerID, stored.JobID})
	return nil
}

func (r *MemoryRepository) IncrementSubmissionCount(ctx context.Context, id kernel.ApplicationFormID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.forms[id]
	if !ok {
		return 0, form.ErrNotFound()
	}
	stored.SubmissionCount++
	r.forms[id] = stored
	return stored.SubmissionCount, nil
}

// filter returns detached copies of matching forms, newest first
func (r *MemoryRepository) filter(match func(*form.ApplicationForm) bool) []form.ApplicationForm {
	r.mu.RLock()
	out := make([]form.ApplicationForm, 0)
	for _, f := range r.forms {
		if match(&f) {
			out = append(out, clone(f))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func clone(f form.ApplicationForm) form.ApplicationForm {
	f.Fields = slices.Clone(f.Fields)
	f.AllowedFileTypes = slices.Clone(f.AllowedFileTypes)
	f.Settings = f.Settings.Clone()
	if f.ExpiresAt != nil {
		t := *f.ExpiresAt
		f.ExpiresAt = &t
	}
	return f
}
