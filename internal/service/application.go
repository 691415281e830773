package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/oklog/ulid/v2"

	"github.com/hireline/hireline/internal/metrics"
	"github.com/hireline/hireline/internal/model"
	"github.com/hireline/hireline/internal/repository"
	"github.com/hireline/hireline/internal/storage"
)

// Résumé constraints.
const (
	ResumeContentType = "application/pdf"
	MaxResumeSize     = 5 << 20
	ResumeURLTTL      = 600 * time.Second
)

var pdfMagic = []byte("%PDF-")

// ApplicationStore is the application persistence the service needs.
type ApplicationStore interface {
	ApplicationExists(ctx context.Context, jobID, userID string) (bool, error)
	CreateApplication(ctx context.Context, app *model.Application) error
	ListAppliedJobIDs(ctx context.Context, userID string) ([]string, error)
	GetResumeRef(ctx context.Context, id string) (*model.ResumeRef, error)
	ClearResumePath(ctx context.Context, id string, at time.Time) error
}

// JobLookup loads jobs by id regardless of their active flag.
type JobLookup interface {
	GetJobsByIDs(ctx context.Context, ids []string) ([]*model.Job, error)
}

// ObjectStore stores résumé files.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	Remove(ctx context.Context, paths ...string) error
}

// ApplicationConfig holds application service settings.
type ApplicationConfig struct {
	// PhoneRegion is the ISO region used for numbers without a country code.
	PhoneRegion string
	// MaxResumeSize overrides MaxResumeSize when positive.
	MaxResumeSize int64
	Logger        *slog.Logger
	Metrics       metrics.Recorder
}

// ApplicationService handles job applications and résumé files.
type ApplicationService struct {
	apps    ApplicationStore
	jobs    JobLookup
	objects ObjectStore
	region  string
	maxSize int64
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

// NewApplicationService creates a new ApplicationService.
func NewApplicationService(apps ApplicationStore, jobs JobLookup, objects ObjectStore, cfg ApplicationConfig) *ApplicationService {
	s := &ApplicationService{
		apps:    apps,
		jobs:    jobs,
		objects: objects,
		region:  strings.ToUpper(cfg.PhoneRegion),
		maxSize: cfg.MaxResumeSize,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		now:     time.Now,
	}
	if s.maxSize <= 0 {
		s.maxSize = MaxResumeSize
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNoop()
	}
	return s
}

// SubmitInput holds the application form. Fields are already
// shape-validated by the caller.
type SubmitInput struct {
	JobID            string
	Name             string
	Email            string
	Phone            string
	Skills           *string
	ExpectedSalary   *string
	CoverLetter      *string
	Location         *string
	City             *string
	Experience       *string
	Education        *string
	PositionApplying *string
}

// Resume is an uploaded résumé file.
type Resume struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CheckResume rejects anything but a PDF within the size limit.
func (s *ApplicationService) CheckResume(r *Resume) error {
	if r == nil {
		return InvalidField("resume", "resume (PDF) is required")
	}
	if int64(len(r.Data)) > s.maxSize {
		return InvalidField("resume", fmt.Sprintf("file exceeds %d bytes", s.maxSize))
	}
	if !strings.EqualFold(mediaType(r.ContentType), ResumeContentType) || !bytes.HasPrefix(r.Data, pdfMagic) {
		return InvalidField("resume", "only PDF files are allowed")
	}
	return nil
}

// Submit records an application for userID with an uploaded résumé.
// The duplicate check is a read before the insert; the store's unique
// index catches what slips through.
func (s *ApplicationService) Submit(ctx context.Context, userID string, in SubmitInput, resume *Resume) (*model.Application, error) {
	if resume != nil {
		if err := s.CheckResume(resume); err != nil {
			return nil, err
		}
	}

	exists, err := s.apps.ApplicationExists(ctx, in.JobID, userID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate application: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: you already applied to this job", ErrConflict)
	}

	if resume == nil {
		return nil, InvalidField("resume", "resume (PDF) is required")
	}

	path := ResumePath(userID)
	if err := s.objects.Upload(ctx, path, resume.Data, ResumeContentType); err != nil {
		return nil, fmt.Errorf("upload resume: %w", err)
	}

	now := s.now().UTC()
	app := &model.Application{
		ID:               uuid.NewString(),
		JobID:            in.JobID,
		UserID:           userID,
		Name:             strings.TrimSpace(in.Name),
		Email:            model.NormalizeEmail(in.Email),
		Phone:            s.normalizePhone(in.Phone),
		Skills:           in.Skills,
		ExpectedSalary:   in.ExpectedSalary,
		CoverLetter:      in.CoverLetter,
		Location:         in.Location,
		City:             in.City,
		Experience:       in.Experience,
		Education:        in.Education,
		PositionApplying: in.PositionApplying,
		Status:           model.StatusPending,
		ResumePath:       &path,
		AppliedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.apps.CreateApplication(ctx, app); err != nil {
		s.discard(ctx, path)
		switch {
		case errors.Is(err, repository.ErrApplicationExists):
			return nil, fmt.Errorf("%w: you already applied to this job", ErrConflict)
		case errors.Is(err, repository.ErrJobNotFound):
			return nil, fmt.Errorf("%w: job not found", ErrNotFound)
		}
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.metrics.IncApplicationSubmitted()
	s.logger.Info("application submitted",
		slog.String("application_id", app.ID),
		slog.String("job_id", app.JobID),
		slog.String("user_id", userID),
	)
	return app, nil
}

// discard removes an uploaded résumé whose record was never written.
func (s *ApplicationService) discard(ctx context.Context, path string) {
	if err := s.objects.Remove(context.WithoutCancel(ctx), path); err != nil {
		s.logger.Warn("orphaned resume not removed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

// AppliedJobs returns the jobs userID applied to, latest application
// first, including jobs that are no longer active.
func (s *ApplicationService) AppliedJobs(ctx context.Context, userID string) ([]*model.Job, error) {
	ids, err := s.apps.ListAppliedJobIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	ordered := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	if len(ordered) == 0 {
		return []*model.Job{}, nil
	}

	jobs, err := s.jobs.GetJobsByIDs(ctx, ordered)
	if err != nil {
		return nil, fmt.Errorf("load applied jobs: %w", err)
	}

	byID := make(map[string]*model.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}

	result := make([]*model.Job, 0, len(ordered))
	for _, id := range ordered {
		if j, ok := byID[id]; ok {
			result = append(result, j)
		}
	}
	return result, nil
}

// ResumeURL returns a short-lived download link for an application's résumé.
// Only the applicant and admins may request it.
func (s *ApplicationService) ResumeURL(ctx context.Context, caller *model.Identity, applicationID string) (string, error) {
	ref, err := s.authorizedResume(ctx, caller, applicationID)
	if err != nil {
		return "", err
	}

	url, err := s.objects.SignedURL(ctx, *ref.ResumePath, ResumeURLTTL)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", fmt.Errorf("%w: resume not found", ErrNotFound)
		}
		return "", fmt.Errorf("sign resume url: %w", err)
	}
	return url, nil
}

// DeleteResume removes an application's résumé file and clears its reference.
func (s *ApplicationService) DeleteResume(ctx context.Context, caller *model.Identity, applicationID string) error {
	ref, err := s.authorizedResume(ctx, caller, applicationID)
	if err != nil {
		return err
	}

	if err := s.objects.Remove(ctx, *ref.ResumePath); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("remove resume: %w", err)
	}

	if err := s.apps.ClearResumePath(ctx, ref.ApplicationID, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return fmt.Errorf("%w: application not found", ErrNotFound)
		}
		return fmt.Errorf("clear resume path: %w", err)
	}

	s.logger.Info("resume deleted",
		slog.String("application_id", ref.ApplicationID),
		slog.String("by", caller.UserID),
	)
	return nil
}

func (s *ApplicationService) authorizedResume(ctx context.Context, caller *model.Identity, applicationID string) (*model.ResumeRef, error) {
	ref, err := s.apps.GetResumeRef(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, fmt.Errorf("%w: application not found", ErrNotFound)
		}
		return nil, fmt.Errorf("get application: %w", err)
	}

	if !caller.CanAccess(ref.UserID) {
		return nil, ErrForbidden
	}
	if ref.ResumePath == nil || *ref.ResumePath == "" {
		return nil, fmt.Errorf("%w: no resume on file", ErrNotFound)
	}
	return ref, nil
}

// normalizePhone formats parseable numbers as E.164 and keeps the rest as typed.
func (s *ApplicationService) normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	num, err := phonenumbers.Parse(raw, s.region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

// ResumePath returns a fresh object path scoped to userID.
func ResumePath(userID string) string {
	return fmt.Sprintf("resumes/%s/%s.pdf", userID, ulid.Make().String())
}

// mediaType strips parameters such as "; charset=binary".
func mediaType(ct string) string {
	mt, _, _ := strings.Cut(ct, ";")
	return strings.TrimSpace(mt)
}
