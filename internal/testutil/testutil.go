// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hireline/hireline/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 730215

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// TruncateAll empties every domain table.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "TRUNCATE applications, jobs, users CASCADE"); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a non-admin user with sensible defaults.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      "Test User",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestJob creates an active job with sensible defaults.
func NewTestJob(t testing.TB, title string) *model.Job {
	t.Helper()
	now := time.Now().UTC()
	return &model.Job{
		ID:             uuid.NewString(),
		Title:          title,
		Description:    "Build and run backend services.",
		Requirements:   "Go",
		Qualifications: "BSc or equivalent",
		Location:       "Remote",
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewTestApplication creates a pending application with a résumé path.
func NewTestApplication(t testing.TB, jobID, userID string) *model.Application {
	t.Helper()
	now := time.Now().UTC()
	path := fmt.Sprintf("resumes/%s/%s.pdf", userID, UniqueID("cv"))
	return &model.Application{
		ID:         uuid.NewString(),
		JobID:      jobID,
		UserID:     userID,
		Name:       "Test Applicant",
		Email:      "applicant@example.com",
		Phone:      "+14155550100",
		Status:     model.StatusPending,
		ResumePath: &path,
		AppliedAt:  now,
		UpdatedAt:  now,
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
