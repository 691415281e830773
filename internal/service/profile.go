package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hireline/hireline/internal/model"
	"github.com/hireline/hireline/internal/repository"
)

// ProfileStore reads the profile view.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
}

// ProfileService handles the caller's own profile.
type ProfileService struct {
	profiles ProfileStore
	users    UserStore
	now      func() time.Time
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profiles ProfileStore, users UserStore) *ProfileService {
	return &ProfileService{profiles: profiles, users: users, now: time.Now}
}

// Get returns the profile of userID.
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: profile not found", ErrNotFound)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Rename sets the display name of userID. The name is trimmed and must
// be at least two characters.
func (s *ProfileService) Rename(ctx context.Context, userID, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < 2 {
		return nil, InvalidField("name", "name too short")
	}

	user, err := s.users.UpdateUser(ctx, userID, model.UserUpdate{Name: &name, UpdatedAt: s.now().UTC()})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}
