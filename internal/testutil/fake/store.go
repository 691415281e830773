// Package fake provides in-memory stand-ins for the Postgres repository,
// object storage and the Google identity client, for unit tests.
package fake

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hireline/hireline/internal/model"
	"github.com/hireline/hireline/internal/repository"
)

// Store is an in-memory repository. It reports the same sentinel errors as
// the Postgres repository.
type Store struct {
	mu    sync.Mutex
	users map[string]*model.User
	jobs  map[string]*model.Job
	apps  map[string]*model.Application

	// UpdateUserErr, when set, is returned by UpdateUser.
	UpdateUserErr error
	// CreateApplicationErr, when set, is returned by CreateApplication.
	CreateApplicationErr error
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users: make(map[string]*model.User),
		jobs:  make(map[string]*model.Job),
		apps:  make(map[string]*model.Application),
	}
}

// Users returns a copy of every stored user.
func (s *Store) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out
}

// Applications returns a copy of every stored application.
func (s *Store) Applications() []model.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Application, 0, len(s.apps))
	for _, a := range s.apps {
		out = append(out, *a)
	}
	return out
}

func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *Store) UpdateUser(_ context.Context, id string, update model.UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateUserErr != nil {
		return nil, s.UpdateUserErr
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.IsAdmin != nil {
		u.IsAdmin = *update.IsAdmin
	}
	if update.GoogleID != nil {
		v := *update.GoogleID
		u.GoogleID = &v
	}
	if update.ProfilePictureURL != nil {
		v := *update.ProfilePictureURL
		u.ProfilePictureURL = &v
	}
	u.UpdatedAt = update.UpdatedAt
	cp := *u
	return &cp, nil
}

func (s *Store) ListUsers(_ context.Context) ([]*model.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.UserSummary, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, &model.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetProfile(_ context.Context, userID string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	var count int64
	for _, a := range s.apps {
		if a.UserID == userID {
			count++
		}
	}
	return &model.Profile{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		IsAdmin:           u.IsAdmin,
		ProfilePictureURL: u.ProfilePictureURL,
		ApplicationsCount: count,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}, nil
}

// AddJob stores a job directly.
func (s *Store) AddJob(job *model.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
}

func (s *Store) ListPublicJobs(ctx context.Context) ([]*model.Job, error) {
	return s.listJobs(func(j *model.Job) bool { return j.IsActive }), nil
}

func (s *Store) ListAllJobs(ctx context.Context) ([]*model.Job, error) {
	return s.listJobs(func(*model.Job) bool { return true }), nil
}

func (s *Store) listJobs(keep func(*model.Job) bool) []*model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if keep(j) {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out
}

func (s *Store) GetJob(_ context.Context, id string, includeInactive bool) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok || (!j.IsActive && !includeInactive) {
		return nil, repository.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *Store) GetJobsByIDs(_ context.Context, ids []string) ([]*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Job, 0, len(ids))
	for _, id := range ids {
		if j, ok := s.jobs[id]; ok {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) CreateJob(_ context.Context, job *model.Job) error {
	s.AddJob(job)
	return nil
}

func (s *Store) UpdateJob(_ context.Context, id string, update model.JobUpdate) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&j.Title, update.Title)
	set(&j.Description, update.Description)
	set(&j.Requirements, update.Requirements)
	set(&j.Qualifications, update.Qualifications)
	set(&j.Location, update.Location)
	if update.Skills != nil {
		j.Skills = update.Skills
	}
	if update.Experience != nil {
		j.Experience = update.Experience
	}
	if update.SalaryRange != nil {
		j.SalaryRange = update.SalaryRange
	}
	if update.IsActive != nil {
		j.IsActive = *update.IsActive
	}
	j.UpdatedAt = update.UpdatedAt
	cp := *j
	return &cp, nil
}

func (s *Store) DeleteJob(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return repository.ErrJobNotFound
	}
	delete(s.jobs, id)
	for appID, a := range s.apps {
		if a.JobID == id {
			delete(s.apps, appID)
		}
	}
	return nil
}

func (s *Store) ApplicationExists(_ context.Context, jobID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.apps {
		if a.JobID == jobID && a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateApplication(_ context.Context, app *model.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateApplicationErr != nil {
		return s.CreateApplicationErr
	}
	if _, ok := s.jobs[app.JobID]; !ok {
		return repository.ErrJobNotFound
	}
	for _, a := range s.apps {
		if a.JobID == app.JobID && a.UserID == app.UserID {
			return repository.ErrApplicationExists
		}
	}
	cp := *app
	s.apps[app.ID] = &cp
	return nil
}

// AddApplication stores an application directly.
func (s *Store) AddApplication(app *model.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *app
	s.apps[app.ID] = &cp
}

func (s *Store) ListAppliedJobIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mine := make([]*model.Application, 0)
	for _, a := range s.apps {
		if a.UserID == userID {
			mine = append(mine, a)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].AppliedAt.After(mine[j].AppliedAt) })
	ids := make([]string, 0, len(mine))
	for _, a := range mine {
		ids = append(ids, a.JobID)
	}
	return ids, nil
}

func (s *Store) GetResumeRef(_ context.Context, id string) (*model.ResumeRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return nil, repository.ErrApplicationNotFound
	}
	return &model.ResumeRef{ApplicationID: a.ID, UserID: a.UserID, ResumePath: a.ResumePath}, nil
}

func (s *Store) ClearResumePath(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return repository.ErrApplicationNotFound
	}
	a.ResumePath = nil
	a.UpdatedAt = at
	return nil
}

func (s *Store) UpdateApplicationStatus(_ context.Context, id string, status model.ApplicationStatus, at time.Time) (*model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return nil, repository.ErrApplicationNotFound
	}
	a.Status = status
	a.UpdatedAt = at
	cp := *a
	return &cp, nil
}

func (s *Store) ListAdminApplications(ctx context.Context) ([]*model.AdminApplication, error) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.apps))
	for id := range s.apps {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	out := make([]*model.AdminApplication, 0, len(ids))
	for _, id := range ids {
		a, err := s.GetAdminApplication(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return out, nil
}

func (s *Store) GetAdminApplication(_ context.Context, id string) (*model.AdminApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return nil, repository.ErrApplicationNotFound
	}
	out := &model.AdminApplication{Application: *a}
	if j, ok := s.jobs[a.JobID]; ok {
		out.JobTitle = j.Title
		out.JobLocation = j.Location
	}
	if u, ok := s.users[a.UserID]; ok {
		name, mail := u.Name, u.Email
		out.ApplicantName = &name
		out.ApplicantMail = &mail
	}
	return out, nil
}

// StatsOverview returns a reduced report with the user, job and
// application totals.
func (s *Store) StatsOverview(_ context.Context) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users, active int
	for _, u := range s.users {
		if !u.IsAdmin {
			users++
		}
	}
	for _, j := range s.jobs {
		if j.IsActive {
			active++
		}
	}
	byStatus := make(map[string]int)
	for _, a := range s.apps {
		byStatus[strings.ToLower(string(a.Status))]++
	}
	return json.Marshal(map[string]any{
		"total_users":            users,
		"total_jobs":             len(s.jobs),
		"active_jobs":            active,
		"total_applications":     len(s.apps),
		"applications_by_status": byStatus,
	})
}
