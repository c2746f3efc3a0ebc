package pipeline

import (
	"context"

	"github.com/Abraxas-365/hirekit/pkg/kernel"
)

// ListFilter narrows ListByOwner. Zero values match everything.
type ListFilter struct {
	JobID  kernel.JobID
	Status Status
}

type Repository interface {
	// Create persists a new process
	Create(ctx context.Context, p *HiringProcess) error

	// GetByID retrieves a process, ErrNotFound if absent
	GetByID(ctx context.Context, id kernel.HiringProcessID) (*HiringProcess, error)

	// Update writes p if the stored version still equals p.Version, then
	// bumps p.Version. ErrVersionConflict on mismatch, ErrNotFound if gone.
	Update(ctx context.Context, p *HiringProcess) error

	// Delete removes a process, ErrNotFound if absent
	Delete(ctx context.Context, id kernel.HiringProcessID) error

	// ListByOwner pages through an owner's processes, newest first
	ListByOwner(ctx context.Context, ownerID kernel.UserID, filter ListFilter, pagination kernel.PaginationOptions) (*kernel.Paginated[HiringProcess], error)
}
