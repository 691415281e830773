package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hireline/hireline/internal/model"
)

// ErrJobNotFound is returned when a job does not exist or is not visible.
var ErrJobNotFound = errors.New("job not found")

const jobColumns = `id, title, description, requirements, qualifications, skills, experience, location, salary_range, is_active, posted_by, created_at, updated_at`

// ListPublicJobs returns active jobs from jobs_public over the public pool, newest first.
func (r *Repository) ListPublicJobs(ctx context.Context) ([]*model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs_public ORDER BY created_at DESC`
	return r.queryJobs(ctx, r.public, query)
}

// ListAllJobs returns every job including inactive ones, newest first.
func (r *Repository) ListAllJobs(ctx context.Context) ([]*model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at DESC`
	return r.queryJobs(ctx, r.pool, query)
}

// GetJob retrieves a job. Inactive jobs are only returned when includeInactive is set.
func (r *Repository) GetJob(ctx context.Context, id string, includeInactive bool) (*model.Job, error) {
	if !validID(id) {
		return nil, ErrJobNotFound
	}

	table := "jobs_public"
	if includeInactive {
		table = "jobs"
	}
	query := `SELECT ` + jobColumns + ` FROM ` + table + ` WHERE id = $1`

	job, err := scanJob(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return job, nil
}

// GetJobsByIDs retrieves the jobs with the given ids, in no particular order.
// Unknown and malformed ids are skipped.
func (r *Repository) GetJobsByIDs(ctx context.Context, ids []string) ([]*model.Job, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []*model.Job{}, nil
	}

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ANY($1)`
	return r.queryJobs(ctx, r.pool, query, valid)
}

// CreateJob inserts a job. ID and timestamps must be set by the caller.
func (r *Repository) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (id, title, description, requirements, qualifications, skills, experience,
		                  location, salary_range, is_active, posted_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Title,
		job.Description,
		job.Requirements,
		job.Qualifications,
		job.Skills,
		job.Experience,
		job.Location,
		job.SalaryRange,
		job.IsActive,
		job.PostedBy,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// UpdateJob applies the non-nil fields of update and returns the stored row.
func (r *Repository) UpdateJob(ctx context.Context, id string, update model.JobUpdate) (*model.Job, error) {
	if !validID(id) {
		return nil, ErrJobNotFound
	}

	cols := update.Columns()
	if len(cols) == 0 {
		return r.GetJob(ctx, id, true)
	}

	query, args := buildUpdate("jobs", cols, update.UpdatedAt, id)
	job, err := scanJob(r.pool.QueryRow(ctx, query+" RETURNING "+jobColumns, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	return job, nil
}

// DeleteJob removes a job. Applications cascade.
func (r *Repository) DeleteJob(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrJobNotFound
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrJobNotFound
	}

	return nil
}

func (r *Repository) queryJobs(ctx context.Context, q querier, query string, args ...any) ([]*model.Job, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*model.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	err := row.Scan(
		&j.ID,
		&j.Title,
		&j.Description,
		&j.Requirements,
		&j.Qualifications,
		&j.Skills,
		&j.Experience,
		&j.Location,
		&j.SalaryRange,
		&j.IsActive,
		&j.PostedBy,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}
