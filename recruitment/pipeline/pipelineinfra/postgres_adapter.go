package pipelineinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/hirekit/pkg/kernel"
	"github.com/Abraxas-365/hirekit/recruitment/pipeline"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresRepository implements pipeline.Repository using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL hiring process repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// ============================================================================
// Database Model
// ============================================================================

type processModel struct {
	ID             string            `db:"id"`
	OwnerID        string            `db:"owner_id"`
	JobID          string            `db:"job_id"`
	Title          string            `db:"title"`
	Description    string            `db:"description"`
	Status         string            `db:"status"`
	Stages         pq.StringArray    `db:"stages"`
	CurrentStage   string            `db:"current_stage"`
	CandidateIDs   pq.StringArray    `db:"candidate_ids"`
	InterviewerIDs pq.StringArray    `db:"interviewer_ids"`
	StartDate      *time.Time        `db:"start_date"`
	EndDate        *time.Time        `db:"end_date"`
	Criteria       kernel.Attributes `db:"criteria"`
	Settings       kernel.Attributes `db:"settings"`
	Version        int64             `db:"version"`
	CreatedAt      time.Time         `db:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at"`
}

const processColumns = `
	id, owner_id, job_id, title, description, status,
	stages, current_stage, candidate_ids, interviewer_ids,
	start_date, end_date, criteria, settings,
	version, created_at, updated_at`

// toEntity converts database model to domain entity
func (m *processModel) toEntity() *pipeline.HiringProcess {
	stages := make([]pipeline.Stage, len(m.Stages))
	for i, s := range m.Stages {
		stages[i] = pipeline.Stage(s)
	}
	candidates := make([]kernel.CandidateID, len(m.CandidateIDs))
	for i, c := range m.CandidateIDs {
		candidates[i] = kernel.CandidateID(c)
	}
	interviewers := make([]kernel.UserID, len(m.InterviewerIDs))
	for i, u := range m.InterviewerIDs {
		interviewers[i] = kernel.UserID(u)
	}

	return &pipeline.HiringProcess{
		ID:             kernel.HiringProcessID(m.ID),
		OwnerID:        kernel.UserID(m.OwnerID),
		JobID:          kernel.JobID(m.JobID),
		Title:          kernel.ProcessTitle(m.Title),
		Description:    kernel.ProcessDescription(m.Description),
		Status:         pipeline.Status(m.Status),
		Stages:         stages,
		CurrentStage:   pipeline.Stage(m.CurrentStage),
		CandidateIDs:   candidates,
		InterviewerIDs: interviewers,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		Criteria:       m.Criteria,
		Settings:       m.Settings,
		Version:        m.Version,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// fromEntity converts domain entity to database model
func fromEntity(p *pipeline.HiringProcess) *processModel {
	stages := make(pq.StringArray, len(p.Stages))
	for i, s := range p.Stages {
		stages[i] = string(s)
	}
	candidates := make(pq.StringArray, len(p.CandidateIDs))
	for i, c := range p.CandidateIDs {
		candidates[i] = c.String()
	}
	interviewers := make(pq.StringArray, len(p.InterviewerIDs))
	for i, u := range p.InterviewerIDs {
		interviewers[i] = u.String()
	}

	return &processModel{
		ID:             p.ID.String(),
		OwnerID:        p.OwnerID.String(),
		JobID:          p.JobID.String(),
		Title:          string(p.Title),
		Description:    string(p.Description),
		Status:         string(p.Status),
		Stages:         stages,
		CurrentStage:   string(p.CurrentStage),
		CandidateIDs:   candidates,
		InterviewerIDs: interviewers,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		Criteria:       p.Criteria,
		Settings:       p.Settings,
		Version:        p.Version,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ============================================================================
// Repository Implementation
// ============================================================================

// Create inserts a new hiring process
func (r *PostgresRepository) Create(ctx context.Context, p *pipeline.HiringProcess) error {
	query := `INSERT INTO hiring_processes (` + processColumns + `
		) VALUES (
			:id, :owner_id, :job_id, :title, :description, :status,
			:stages, :current_stage, :candidate_ids, :interviewer_ids,
			:start_date, :end_date, :criteria, :settings,
			:version, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, fromEntity(p)); err != nil {
		return fmt.Errorf("failed to create hiring process: %w", err)
	}
	return nil
}

// GetByID retrieves a hiring process by ID
func (r *PostgresRepository) GetByID(ctx context.Context, id kernel.HiringProcessID) (*pipeline.HiringProcess, error) {
	query := `SELECT ` + processColumns + ` FROM hiring_processes WHERE id = $1`

	var model processModel
	if err := r.db.GetContext(ctx, &model, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pipeline.ErrNotFound()
		}
		return nil, fmt.Errorf("failed to get hiring process: %w", err)
	}
	return model.toEntity(), nil
}

// Update performs a compare-and-set on version. owner_id, job_id and
// created_at are never written.
func (r *PostgresRepository) Update(ctx context.Context, p *pipeline.HiringProcess) error {
	query := `
		UPDATE hiring_processes SET
			title = :title,
			description = :description,
			status = :status,
			stages = :stages,
			current_stage = :current_stage,
			candidate_ids = :candidate_ids,
			interviewer_ids = :interviewer_ids,
			start_date = :start_date,
			end_date = :end_date,
			criteria = :criteria,
			settings = :settings,
			updated_at = :updated_at,
			version = version + 1
		WHERE id = :id AND version = :version
	`

	result, err := r.db.NamedExecContext(ctx, query, fromEntity(p))
	if err != nil {
		return fmt.Errorf("failed to update hiring process: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return r.missOrConflict(ctx, p)
	}

	p.Version++
	return nil
}

// missOrConflict explains a conditional update that matched no row
func (r *PostgresRepository) missOrConflict(ctx context.Context, p *pipeline.HiringProcess) error {
	var current int64
	err := r.db.GetContext(ctx, &current, `SELECT version FROM hiring_processes WHERE id = $1`, p.ID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return pipeline.ErrNotFound()
	}
	if err != nil {
		return fmt.Errorf("failed to read hiring process version: %w", err)
	}
	return pipeline.ErrVersionConflict().
		WithDetail("expected_version", p.Version).
		WithDetail("current_version", current)
}

// Delete deletes a hiring process by ID
func (r *PostgresRepository) Delete(ctx context.Context, id kernel.HiringProcessID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM hiring_processes WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete hiring process: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return pipeline.ErrNotFound()
	}
	return nil
}

// ListByOwner retrieves an owner's processes with pagination
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID kernel.UserID, filter pipeline.ListFilter, pagination kernel.PaginationOptions) (*kernel.Paginated[pipeline.HiringProcess], error) {
	pagination = pagination.Normalize()

	where := `WHERE owner_id = $1 AND ($2 = '' OR job_id = $2) AND ($3 = '' OR status = $3)`
	args := []any{ownerID.String(), filter.JobID.String(), string(filter.Status)}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM hiring_processes `+where, args...); err != nil {
		return nil, fmt.Errorf("failed to count hiring processes: %w", err)
	}

	query := `SELECT ` + processColumns + ` FROM hiring_processes ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5`

	var models []processModel
	if err := r.db.SelectContext(ctx, &models, query, append(args, pagination.PageSize, pagination.Offset())...); err != nil {
		return nil, fmt.Errorf("failed to list hiring processes: %w", err)
	}

	items := make([]pipeline.HiringProcess, 0, len(models))
	for i := range models {
		items = append(items, *models[i].toEntity())
	}

	return kernel.NewPaginated(items, pagination, total), nil
}
