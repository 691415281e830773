package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hireline/hireline/internal/metrics"
	"github.com/hireline/hireline/internal/model"
	"github.com/hireline/hireline/internal/repository"
)

// JobStore is the job persistence the job service needs.
type JobStore interface {
	ListPublicJobs(ctx context.Context) ([]*model.Job, error)
	ListAllJobs(ctx context.Context) ([]*model.Job, error)
	GetJob(ctx context.Context, id string, includeInactive bool) (*model.Job, error)
	CreateJob(ctx context.Context, job *model.Job) error
	UpdateJob(ctx context.Context, id string, update model.JobUpdate) (*model.Job, error)
	DeleteJob(ctx context.Context, id string) error
}

// JobService handles job posting business logic.
type JobService struct {
	jobs    JobStore
	policy  *bluemonday.Policy
	metrics metrics.Recorder
	now     func() time.Time
}

// NewJobService creates a new JobService.
func NewJobService(jobs JobStore, recorder metrics.Recorder) *JobService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &JobService{
		jobs:    jobs,
		policy:  bluemonday.UGCPolicy(),
		metrics: recorder,
		now:     time.Now,
	}
}

// CreateJobInput defines input for creating a job. Fields are already
// shape-validated by the caller.
type CreateJobInput struct {
	Title          string
	Description    string
	Requirements   string
	Qualifications string
	Skills         *string
	Experience     *string
	Location       string
	SalaryRange    *string
	IsActive       *bool
	PostedBy       string
}

// ListPublic returns active jobs, newest first.
func (s *JobService) ListPublic(ctx context.Context) ([]*model.Job, error) {
	jobs, err := s.jobs.ListPublicJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public jobs: %w", err)
	}
	return jobs, nil
}

// ListAll returns every job including inactive ones.
func (s *JobService) ListAll(ctx context.Context) ([]*model.Job, error) {
	jobs, err := s.jobs.ListAllJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Get returns a job. Only admins can see inactive jobs.
func (s *JobService) Get(ctx context.Context, caller *model.Identity, id string) (*model.Job, error) {
	job, err := s.jobs.GetJob(ctx, id, caller.IsAdmin())
	if err != nil {
		return nil, mapJobErr(err)
	}
	return job, nil
}

// Create stores a new job posted by in.PostedBy.
func (s *JobService) Create(ctx context.Context, in CreateJobInput) (*model.Job, error) {
	now := s.now().UTC()

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	job := &model.Job{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Description:    s.policy.Sanitize(in.Description),
		Requirements:   s.policy.Sanitize(in.Requirements),
		Qualifications: s.policy.Sanitize(in.Qualifications),
		Skills:         in.Skills,
		Experience:     in.Experience,
		Location:       in.Location,
		SalaryRange:    in.SalaryRange,
		IsActive:       active,
		PostedBy:       optional(in.PostedBy),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.metrics.IncJobMutation("create")
	return job, nil
}

// Update applies a partial update to a job.
func (s *JobService) Update(ctx context.Context, id string, update model.JobUpdate) (*model.Job, error) {
	if len(update.Columns()) == 0 {
		return nil, Invalid("no updatable fields provided")
	}

	update.Description = s.sanitize(update.Description)
	update.Requirements = s.sanitize(update.Requirements)
	update.Qualifications = s.sanitize(update.Qualifications)
	update.UpdatedAt = s.now().UTC()

	job, err := s.jobs.UpdateJob(ctx, id, update)
	if err != nil {
		return nil, mapJobErr(err)
	}

	s.metrics.IncJobMutation("update")
	return job, nil
}

// SetActive toggles whether a job is publicly listed.
func (s *JobService) SetActive(ctx context.Context, id string, active bool) (*model.Job, error) {
	job, err := s.jobs.UpdateJob(ctx, id, model.JobUpdate{IsActive: &active, UpdatedAt: s.now().UTC()})
	if err != nil {
		return nil, mapJobErr(err)
	}

	s.metrics.IncJobMutation("status")
	return job, nil
}

// Delete removes a job.
func (s *JobService) Delete(ctx context.Context, id string) error {
	if err := s.jobs.DeleteJob(ctx, id); err != nil {
		return mapJobErr(err)
	}

	s.metrics.IncJobMutation("delete")
	return nil
}

func (s *JobService) sanitize(v *string) *string {
	if v == nil {
		return nil
	}
	clean := s.policy.Sanitize(*v)
	return &clean
}

func mapJobErr(err error) error {
	if errors.Is(err, repository.ErrJobNotFound) {
		return fmt.Errorf("%w: job not found", ErrNotFound)
	}
	return fmt.Errorf("job store: %w", err)
}
