package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hireline/hireline/internal/metrics"
	"github.com/hireline/hireline/internal/model"
	"github.com/hireline/hireline/internal/repository"
)

// AdminStore is the persistence behind the admin views.
type AdminStore interface {
	ListUsers(ctx context.Context) ([]*model.UserSummary, error)
	ListAdminApplications(ctx context.Context) ([]*model.AdminApplication, error)
	GetAdminApplication(ctx context.Context, id string) (*model.AdminApplication, error)
	UpdateApplicationStatus(ctx context.Context, id string, status model.ApplicationStatus, at time.Time) (*model.Application, error)
	StatsOverview(ctx context.Context) (json.RawMessage, error)
}

// AdminService backs the administrator review endpoints.
type AdminService struct {
	store   AdminStore
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

// NewAdminService creates a new AdminService.
func NewAdminService(store AdminStore, logger *slog.Logger, recorder metrics.Recorder) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AdminService{store: store, logger: logger, metrics: recorder, now: time.Now}
}

// Users lists all users, newest first.
func (s *AdminService) Users(ctx context.Context) ([]*model.UserSummary, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Applications lists all applications with job and applicant details.
func (s *AdminService) Applications(ctx context.Context) ([]*model.AdminApplication, error) {
	apps, err := s.store.ListAdminApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// Application returns one application with job and applicant details.
func (s *AdminService) Application(ctx context.Context, id string) (*model.AdminApplication, error) {
	app, err := s.store.GetAdminApplication(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, fmt.Errorf("%w: application not found", ErrNotFound)
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// SetStatus changes the review status of an application. The status is
// matched case-insensitively.
func (s *AdminService) SetStatus(ctx context.Context, caller *model.Identity, id, status string) (*model.Application, error) {
	parsed, ok := model.ParseApplicationStatus(status)
	if !ok {
		return nil, InvalidField("status", "must be one of pending, reviewed, approved, rejected")
	}

	app, err := s.store.UpdateApplicationStatus(ctx, id, parsed, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, fmt.Errorf("%w: application not found", ErrNotFound)
		}
		return nil, fmt.Errorf("update application status: %w", err)
	}

	s.metrics.IncApplicationStatusChanged(string(parsed))
	s.logger.Info("application status changed",
		slog.String("application_id", id),
		slog.String("status", string(parsed)),
		slog.String("by", caller.UserID),
	)
	return app, nil
}

// Stats returns the aggregate report computed by the store.
func (s *AdminService) Stats(ctx context.Context) (json.RawMessage, error) {
	raw, err := s.store.StatsOverview(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats overview: %w", err)
	}
	return raw, nil
}
