package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hireline/hireline/internal/model"
)

// Common errors for application repository operations.
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationExists   = errors.New("application already exists")
)

const applicationColumns = `id, job_id, user_id, name, email, phone, skills, expected_salary, cover_letter,
	location, city, experience, education, position_applying, status, resume_path, applied_at, updated_at`

// ApplicationExists reports whether the user already applied to the job.
func (r *Repository) ApplicationExists(ctx context.Context, jobID, userID string) (bool, error) {
	if !validID(jobID) || !validID(userID) {
		return false, nil
	}

	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE job_id = $1 AND user_id = $2)`,
		jobID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check application: %w", err)
	}

	return exists, nil
}

// CreateApplication inserts an application. ID and timestamps must be set by the caller.
func (r *Repository) CreateApplication(ctx context.Context, app *model.Application) error {
	if !validID(app.JobID) {
		return ErrJobNotFound
	}

	query := `
		INSERT INTO applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.pool.Exec(ctx, query,
		app.ID,
		app.JobID,
		app.UserID,
		app.Name,
		app.Email,
		app.Phone,
		app.Skills,
		app.ExpectedSalary,
		app.CoverLetter,
		app.Location,
		app.City,
		app.Experience,
		app.Education,
		app.PositionApplying,
		app.Status,
		app.ResumePath,
		app.AppliedAt,
		app.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrApplicationExists
		case isForeignKeyViolation(err):
			return ErrJobNotFound
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// ListAppliedJobIDs returns the job ids a user applied to, latest application first.
func (r *Repository) ListAppliedJobIDs(ctx context.Context, userID string) ([]string, error) {
	if !validID(userID) {
		return []string{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT job_id FROM applications WHERE user_id = $1 ORDER BY applied_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// GetResumeRef returns the owner and résumé path of an application.
func (r *Repository) GetResumeRef(ctx context.Context, id string) (*model.ResumeRef, error) {
	if !validID(id) {
		return nil, ErrApplicationNotFound
	}

	var ref model.ResumeRef
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, resume_path FROM applications WHERE id = $1`, id,
	).Scan(&ref.ApplicationID, &ref.UserID, &ref.ResumePath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &ref, nil
}

// ClearResumePath nulls the résumé reference of an application.
func (r *Repository) ClearResumePath(ctx context.Context, id string, at time.Time) error {
	if !validID(id) {
		return ErrApplicationNotFound
	}

	result, err := r.pool.Exec(ctx,
		`UPDATE applications SET resume_path = NULL, updated_at = $1 WHERE id = $2`, at, id,
	)
	if err != nil {
		return fmt.Errorf("failed to clear resume path: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrApplicationNotFound
	}

	return nil
}

// UpdateApplicationStatus sets the review status and returns the stored row.
func (r *Repository) UpdateApplicationStatus(ctx context.Context, id string, status model.ApplicationStatus, at time.Time) (*model.Application, error) {
	if !validID(id) {
		return nil, ErrApplicationNotFound
	}

	query := `UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3 RETURNING ` + applicationColumns
	app, err := scanApplication(r.pool.QueryRow(ctx, query, status, at, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	return app, nil
}

const adminApplicationColumns = applicationColumns + `, job_title, job_location, applicant_name, applicant_email`

// ListAdminApplications returns every application with job and applicant details, newest first.
func (r *Repository) ListAdminApplications(ctx context.Context) ([]*model.AdminApplication, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+adminApplicationColumns+` FROM applications_admin_view ORDER BY applied_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*model.AdminApplication, 0)
	for rows.Next() {
		app, err := scanAdminApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// GetAdminApplication returns one row of applications_admin_view.
func (r *Repository) GetAdminApplication(ctx context.Context, id string) (*model.AdminApplication, error) {
	if !validID(id) {
		return nil, ErrApplicationNotFound
	}

	app, err := scanAdminApplication(r.pool.QueryRow(ctx,
		`SELECT `+adminApplicationColumns+` FROM applications_admin_view WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

func applicationDest(a *model.Application) []any {
	return []any{
		&a.ID,
		&a.JobID,
		&a.UserID,
		&a.Name,
		&a.Email,
		&a.Phone,
		&a.Skills,
		&a.ExpectedSalary,
		&a.CoverLetter,
		&a.Location,
		&a.City,
		&a.Experience,
		&a.Education,
		&a.PositionApplying,
		&a.Status,
		&a.ResumePath,
		&a.AppliedAt,
		&a.UpdatedAt,
	}
}

func scanApplication(row pgx.Row) (*model.Application, error) {
	var a model.Application
	if err := row.Scan(applicationDest(&a)...); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAdminApplication(row pgx.Row) (*model.AdminApplication, error) {
	var a model.AdminApplication
	dest := append(applicationDest(&a.Application),
		&a.JobTitle,
		&a.JobLocation,
		&a.ApplicantName,
		&a.ApplicantMail,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &a, nil
}
