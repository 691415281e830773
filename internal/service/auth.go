package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/identity"
	"github.com/hireline/hireline/internal/metrics"
	"github.com/hireline/hireline/internal/model"
	"github.com/hireline/hireline/internal/repository"
)

// Sign-in methods used in logs and metrics.
const (
	methodGoogle   = "google"
	methodPassword = "password"
)

// UserStore is the user persistence the auth and profile services need.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, id string, update model.UserUpdate) (*model.User, error)
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(subject, email string, role model.Role) (string, error)
}

// IdentityProvider resolves Google credentials into a profile.
type IdentityProvider interface {
	ProfileFromAccessToken(ctx context.Context, accessToken string) (*identity.Profile, error)
	ProfileFromIDToken(ctx context.Context, idToken string) (*identity.Profile, error)
}

// AuthConfig holds the immutable settings of the auth service.
type AuthConfig struct {
	AdminEmail    string
	AdminPassword string
	Logger        *slog.Logger
	Metrics       metrics.Recorder
	Now           func() time.Time
}

// AuthService implements Google sign-in and the administrator login.
type AuthService struct {
	users   UserStore
	tokens  TokenIssuer
	idp     IdentityProvider
	cfg     AuthConfig
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens TokenIssuer, idp IdentityProvider, cfg AuthConfig) *AuthService {
	cfg.AdminEmail = model.NormalizeEmail(cfg.AdminEmail)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &AuthService{
		users:   users,
		tokens:  tokens,
		idp:     idp,
		cfg:     cfg,
		logger:  logger,
		metrics: recorder,
		now:     now,
	}
}

// GoogleCredentials carries the assertion a client obtained from Google.
// AccessToken is preferred when both are set.
type GoogleCredentials struct {
	AccessToken string
	IDToken     string
}

// Session is the result of a successful sign-in.
type Session struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// SignInWithGoogle exchanges a Google credential for a session token,
// provisioning or reconciling the local user record.
func (s *AuthService) SignInWithGoogle(ctx context.Context, creds GoogleCredentials) (*Session, error) {
	if creds.AccessToken == "" && creds.IDToken == "" {
		return nil, Invalid("provide accessToken (preferred) or idToken")
	}

	session, err := s.signInWithGoogle(ctx, creds)
	if err != nil {
		s.metrics.IncSignIn(methodGoogle, metrics.OutcomeFailure)
		return nil, err
	}
	s.metrics.IncSignIn(methodGoogle, metrics.OutcomeSuccess)
	return session, nil
}

func (s *AuthService) signInWithGoogle(ctx context.Context, creds GoogleCredentials) (*Session, error) {
	profile, err := s.resolveProfile(ctx, creds)
	if err != nil {
		return nil, err
	}

	email := model.NormalizeEmail(profile.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: google account email missing", ErrIdentityVerification)
	}
	if !profile.EmailVerified {
		return nil, fmt.Errorf("%w: google account email not verified", ErrIdentityVerification)
	}
	name := displayName(profile.Name, email)

	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		user, err = s.provisionGoogleUser(ctx, email, name, profile)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("find user: %w", err)
	default:
		user = s.reconcile(ctx, user, name, profile)
	}

	return s.issueSession(user, user.Role())
}

func (s *AuthService) resolveProfile(ctx context.Context, creds GoogleCredentials) (*identity.Profile, error) {
	var (
		profile *identity.Profile
		err     error
	)
	if creds.AccessToken != "" {
		profile, err = s.idp.ProfileFromAccessToken(ctx, creds.AccessToken)
	} else {
		profile, err = s.idp.ProfileFromIDToken(ctx, creds.IDToken)
	}
	if err != nil {
		if errors.Is(err, identity.ErrVerification) {
			return nil, fmt.Errorf("%w: %v", ErrIdentityVerification, err)
		}
		return nil, fmt.Errorf("resolve google profile: %w", err)
	}
	return profile, nil
}

func (s *AuthService) provisionGoogleUser(ctx context.Context, email, name string, profile *identity.Profile) (*model.User, error) {
	now := s.now().UTC()
	user := &model.User{
		ID:                uuid.NewString(),
		Email:             email,
		Name:              name,
		IsAdmin:           false,
		GoogleID:          optional(profile.Subject),
		ProfilePictureURL: optional(profile.Picture),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		// Another request created the same email first.
		if errors.Is(err, repository.ErrEmailExists) {
			existing, getErr := s.users.GetUserByEmail(ctx, email)
			if getErr != nil {
				return nil, fmt.Errorf("find user: %w", getErr)
			}
			return s.reconcile(ctx, existing, name, profile), nil
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserProvisioned(methodGoogle)
	s.logger.Info("user provisioned",
		slog.String("user_id", user.ID),
		slog.String("method", methodGoogle),
	)
	return user, nil
}

// reconcile brings a stored user in line with the Google profile. A failed
// update is logged and the stored record is used as is.
func (s *AuthService) reconcile(ctx context.Context, user *model.User, name string, profile *identity.Profile) *model.User {
	var update model.UserUpdate

	if profile.Picture != "" && (user.ProfilePictureURL == nil || *user.ProfilePictureURL != profile.Picture) {
		update.ProfilePictureURL = &profile.Picture
	}
	if user.GoogleID == nil && profile.Subject != "" {
		update.GoogleID = &profile.Subject
	}
	if strings.TrimSpace(user.Name) == "" && name != "" {
		update.Name = &name
	}

	if update.IsEmpty() {
		return user
	}

	update.UpdatedAt = s.now().UTC()
	updated, err := s.users.UpdateUser(ctx, user.ID, update)
	if err != nil {
		s.logger.Error("user update failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return user
	}
	return updated
}

// AdminLogin checks the configured administrator credential and returns an
// admin session, provisioning the admin user on first use.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, Invalid("email and password are required")
	}

	emailOK := model.NormalizeEmail(email) == s.cfg.AdminEmail
	passwordOK := auth.CheckSecret(password, s.cfg.AdminPassword)
	if !emailOK || !passwordOK {
		s.metrics.IncSignIn(methodPassword, metrics.OutcomeFailure)
		s.logger.Warn("admin login rejected", slog.String("reason", "invalid_credentials"))
		return nil, ErrInvalidCredentials
	}

	user, err := s.ensureAdmin(ctx)
	if err != nil {
		s.metrics.IncSignIn(methodPassword, metrics.OutcomeFailure)
		return nil, err
	}

	session, err := s.issueSession(user, model.RoleAdmin)
	if err != nil {
		s.metrics.IncSignIn(methodPassword, metrics.OutcomeFailure)
		return nil, err
	}
	s.metrics.IncSignIn(methodPassword, metrics.OutcomeSuccess)
	return session, nil
}

func (s *AuthService) ensureAdmin(ctx context.Context) (*model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, s.cfg.AdminEmail)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return s.provisionAdmin(ctx)
	case err != nil:
		return nil, fmt.Errorf("find admin user: %w", err)
	}
	return s.promoteAdmin(ctx, user), nil
}

func (s *AuthService) provisionAdmin(ctx context.Context) (*model.User, error) {
	now := s.now().UTC()
	user := &model.User{
		ID:        uuid.NewString(),
		Email:     s.cfg.AdminEmail,
		Name:      "Admin",
		IsAdmin:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrEmailExists) {
			return nil, fmt.Errorf("create admin user: %w", err)
		}
		existing, err := s.users.GetUserByEmail(ctx, s.cfg.AdminEmail)
		if err != nil {
			return nil, fmt.Errorf("find admin user: %w", err)
		}
		return s.promoteAdmin(ctx, existing), nil
	}

	s.metrics.IncUserProvisioned(methodPassword)
	s.logger.Info("user provisioned",
		slog.String("user_id", user.ID),
		slog.String("method", methodPassword),
	)
	return user, nil
}

// promoteAdmin sets the admin flag on an existing record. A failed update
// is logged; the session is still issued with the admin role.
func (s *AuthService) promoteAdmin(ctx context.Context, user *model.User) *model.User {
	if user.IsAdmin {
		return user
	}

	flag := true
	updated, err := s.users.UpdateUser(ctx, user.ID, model.UserUpdate{IsAdmin: &flag, UpdatedAt: s.now().UTC()})
	if err != nil {
		s.logger.Error("admin flag update failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		promoted := *user
		promoted.IsAdmin = true
		return &promoted
	}
	return updated
}

// Me returns the stored record of the caller.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueSession(user *model.User, role model.Role) (*Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Email, role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: user.ToPublic()}, nil
}

// displayName falls back to the email local part, then "User".
func displayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return "User"
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
