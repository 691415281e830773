package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hireline/hireline/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

const userColumns = `id, email, name, is_admin, google_id, profile_picture_url, created_at, updated_at`

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, name, is_admin, google_id, profile_picture_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.IsAdmin,
		user.GoogleID,
		user.ProfilePictureURL,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, ErrUserNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// UpdateUser applies the non-nil fields of update and returns the stored row.
func (r *Repository) UpdateUser(ctx context.Context, id string, update model.UserUpdate) (*model.User, error) {
	if !validID(id) {
		return nil, ErrUserNotFound
	}
	cols := make(map[string]any)
	if update.Name != nil {
		cols["name"] = *update.Name
	}
	if update.IsAdmin != nil {
		cols["is_admin"] = *update.IsAdmin
	}
	if update.GoogleID != nil {
		cols["google_id"] = *update.GoogleID
	}
	if update.ProfilePictureURL != nil {
		cols["profile_picture_url"] = *update.ProfilePictureURL
	}
	if len(cols) == 0 {
		return r.GetUserByID(ctx, id)
	}

	query, args := buildUpdate("users", cols, update.UpdatedAt, id)
	user, err := scanUser(r.pool.QueryRow(ctx, query+" RETURNING "+userColumns, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// ListUsers returns every user, newest first.
func (r *Repository) ListUsers(ctx context.Context) ([]*model.UserSummary, error) {
	query := `
		SELECT id, name, email, is_admin, created_at
		FROM users
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.UserSummary, 0)
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}

	return users, rows.Err()
}

// GetProfile reads a user's row from user_profile_view.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	if !validID(userID) {
		return nil, ErrUserNotFound
	}
	query := `
		SELECT id, name, email, is_admin, profile_picture_url, applications_count, created_at, updated_at
		FROM user_profile_view
		WHERE id = $1
	`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.IsAdmin,
		&p.ProfilePictureURL,
		&p.ApplicationsCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &p, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.IsAdmin,
		&u.GoogleID,
		&u.ProfilePictureURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
