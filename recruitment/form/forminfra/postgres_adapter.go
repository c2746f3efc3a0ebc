package forminfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/hirekit/pkg/kernel"
	"github.com/Abraxas-365/hirekit/recruitment/form"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresRepository implements form.Repository using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL application form repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// ============================================================================
// Database Model
// ============================================================================

type formModel struct {
	ID                 string            `db:"id"`
	OwnerID            string            `db:"owner_id"`
	JobID              string            `db:"job_id"`
	Fields             form.FormFields   `db:"fields"`
	RequiresResume     bool              `db:"requires_resume"`
	AllowMultipleFiles bool              `db:"allow_multiple_files"`
	MaxFileSizeMB      int               `db:"max_file_size_mb"`
	AllowedFileTypes   pq.StringArray    `db:"allowed_file_types"`
	IsActive           bool              `db:"is_active"`
	IsPublic           bool              `db:"is_public"`
	ExpiresAt          *time.Time        `db:"expires_at"`
	SubmissionCount    int64             `db:"submission_count"`
	Settings           kernel.Attributes `db:"settings"`
	Version            int64             `db:"version"`
	CreatedAt          time.Time         `db:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at"`
}

const (
	uniqueViolation    = "23505"
	ownerJobConstraint = "uq_application_forms_owner_job"
)

const formColumns = `
	id, owner_id, job_id, fields, requires_resume, allow_multiple_files,
	max_file_size_mb, allowed_file_types, is_active, is_public, expires_at,
	submission_count, settings, version, created_at, updated_at`

// toEntity converts database model to domain entity
func (m *formModel) toEntity() *form.ApplicationForm {
	types := make([]kernel.FileType, len(m.AllowedFileTypes))
	for i, t := range m.AllowedFileTypes {
		types[i] = kernel.FileType(t)
	}

	return &form.ApplicationForm{
		ID:                 kernel.ApplicationFormID(m.ID),
		OwnerID:            kernel.UserID(m.OwnerID),
		JobID:              kernel.JobID(m.JobID),
		Fields:             m.Fields,
		RequiresResume:     m.RequiresResume,
		AllowMultipleFiles: m.AllowMultipleFiles,
		MaxFileSizeMB:      m.MaxFileSizeMB,
		AllowedFileTypes:   types,
		IsActive:           m.IsActive,
		IsPublic:           m.IsPublic,
		ExpiresAt:          m.ExpiresAt,
		SubmissionCount:    m.SubmissionCount,
		Settings:           m.Settings,
		Version:            m.Version,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// fromEntity converts domain entity to database model
func fromEntity(f *form.ApplicationForm) *formModel {
	types := make(pq.StringArray, len(f.AllowedFileTypes))
	for i, t := range f.AllowedFileTypes {
		types[i] = string(t)
	}

	return &formModel{
		ID:                 f.ID.String(),
		OwnerID:            f.OwnerID.String(),
		JobID:              f.JobID.String(),
		Fields:             f.Fields,
		RequiresResume:     f.RequiresResume,
		AllowMultipleFiles: f.AllowMultipleFiles,
		MaxFileSizeMB:      f.MaxFileSizeMB,
		AllowedFileTypes:   types,
		IsActive:           f.IsActive,
		IsPublic:           f.IsPublic,
		ExpiresAt:          f.ExpiresAt,
		SubmissionCount:    f.SubmissionCount,
		Settings:           f.Settings,
		Version:            f.Version,
		CreatedAt:          f.CreatedAt,
		UpdatedAt:          f.UpdatedAt,
	}
}

// ============================================================================
// Repository Implementation
// ============================================================================

// Create inserts a form. The (owner_id, job_id) unique index turns a
// duplicate into ErrAlreadyExists even when two creates race.
func (r *PostgresRepository) Create(ctx context.Context, f *form.ApplicationForm) error {
	query := `INSERT INTO application_forms (` + formColumns + `
		) VALUES (
			:id, :owner_id, :job_id, :fields, :requires_resume, :allow_multiple_files,
			:max_file_size_mb, :allowed_file_types, :is_active, :is_public, :expires_at,
			:submission_count, :settings, :version, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, fromEntity(f))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == ownerJobConstraint {
			return form.ErrAlreadyExists()
		}
		return fmt.Errorf("failed to create application form: %w", err)
	}
	return nil
}

// GetByID retrieves a form by ID
func (r *PostgresRepository) GetByID(ctx context.Context, id kernel.ApplicationFormID) (*form.ApplicationForm, error) {
	return r.getOne(ctx, `WHERE id = $1`, id.String())
}

// GetByOwnerAndJob retrieves the owner's form for a job
func (r *PostgresRepository) GetByOwnerAndJob(ctx context.Context, ownerID kernel.UserID, jobID kernel.JobID) (*form.ApplicationForm, error) {
	return r.getOne(ctx, `WHERE owner_id = $1 AND job_id = $2`, ownerID.String(), jobID.String())
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, args ...any) (*form.ApplicationForm, error) {
	var model formModel
	if err := r.db.GetContext(ctx, &model, `SELECT `+formColumns+` FROM application_forms `+where, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, form.ErrNotFound()
		}
		return nil, fmt.Errorf("failed to get application form: %w", err)
	}
	return model.toEntity(), nil
}

// ListByJob returns every form attached to a job, newest first
func (r *PostgresRepository) ListByJob(ctx context.Context, jobID kernel.JobID) ([]form.ApplicationForm, error) {
	return r.list(ctx, `WHERE job_id = $1 ORDER BY created_at DESC, id DESC`, jobID.String())
}

// ListAllByOwner returns every form of an owner
func (r *PostgresRepository) ListAllByOwner(ctx context.Context, ownerID kernel.UserID) ([]form.ApplicationForm, error) {
	return r.list(ctx, `WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, ownerID.String())
}

// ListByOwner retrieves an owner's forms with pagination
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[form.ApplicationForm], error) {
	pagination = pagination.Normalize()

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM application_forms WHERE owner_id = $1`, ownerID.String()); err != nil {
		return nil, fmt.Errorf("failed to count application forms: %w", err)
	}

	items, err := r.list(ctx, `WHERE owner_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		ownerID.String(), pagination.PageSize, pagination.Offset())
	if err != nil {
		return nil, err
	}

	return kernel.NewPaginated(items, pagination, total), nil
}

func (r *PostgresRepository) list(ctx context.Context, clause string, args ...any) ([]form.ApplicationForm, error) {
	var models []formModel
	if err := r.db.SelectContext(ctx, &models, `SELECT `+formColumns+` FROM application_forms `+clause, args...); err != nil {
		return nil, fmt.Errorf("failed to list application forms: %w", err)
	}

	out := make([]form.ApplicationForm, 0, len(models))
	for i := range models {
		out = append(out, *models[i].toEntity())
	}
	return out, nil
}

// Update writes the editable columns if the version still matches.
// submission_count is only read back, never written.
func (r *PostgresRepository) Update(ctx context.Context, f *form.ApplicationForm) error {
	query := `
		UPDATE application_forms SET
			fields = :fields,
			requires_resume = :requires_resume,
			allow_multiple_files = :allow_multiple_files,
			max_file_size_mb = :max_file_size_mb,
			allowed_file_types = :allowed_file_types,
			is_active = :is_active,
			is_public = :is_public,
			expires_at = :expires_at,
			settings = :settings,
			updated_at = :updated_at,
			version = version + 1
		WHERE id = :id AND version = :version
		RETURNING version, submission_count
	`

	rows, err := r.db.NamedQueryContext(ctx, query, fromEntity(f))
	if err != nil {
		return fmt.Errorf("failed to update application form: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to update application form: %w", err)
		}
		return r.missOrConflict(ctx, f)
	}

	var version, count int64
	if err := rows.Scan(&version, &count); err != nil {
		return fmt.Errorf("failed to read updated application form: %w", err)
	}
	f.Version = version
	f.SubmissionCount = count
	return nil
}

func (r *PostgresRepository) missOrConflict(ctx context.Context, f *form.ApplicationForm) error {
	var current int64
	err := r.db.GetContext(ctx, &current, `SELECT version FROM application_forms WHERE id = $1`, f.ID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return form.ErrNotFound()
	}
	if err != nil {
		return fmt.Errorf("failed to read application form version: %w", err)
	}
	return form.ErrVersionConflict().
		WithDetail("expected_version", f.Version).
		WithDetail("current_version", current)
}

// Delete deletes a form by ID
func (r *PostgresRepository) Delete(ctx context.Context, id kernel.ApplicationFormID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM application_forms WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete application form: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return form.ErrNotFound()
	}
	return nil
}

// IncrementSubmissionCount bumps the counter in one statement. The row lock
// taken by UPDATE serialises concurrent submitters without a read-modify-write.
func (r *PostgresRepository) IncrementSubmissionCount(ctx context.Context, id kernel.ApplicationFormID) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `
		UPDATE application_forms
		SET submission_count = submission_count + 1
		WHERE id = $1
		RETURNING submission_count
	`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, form.ErrNotFound()
		}
		return 0, fmt.Errorf("failed to increment submission count: %w", err)
	}
	return count, nil
}
