package dto

import (
	"time"

	"github.com/hireline/hireline/internal/model"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// OKResponse acknowledges an operation with no other result.
type OKResponse struct {
	OK bool `json:"ok"`
}

// UserResponse is the caller record returned by /api/auth/me.
type UserResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	IsAdmin           bool      `json:"is_admin"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ToUserResponse drops provider identifiers from a user record.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		IsAdmin:           u.IsAdmin,
		ProfilePictureURL: u.ProfilePictureURL,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

// JobsResponse wraps a job list.
type JobsResponse struct {
	Jobs []*model.Job `json:"jobs"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job *model.Job `json:"job"`
}

// ApplicationResponse wraps a single application.
type ApplicationResponse struct {
	Application any `json:"application"`
}

// ApplicationsResponse wraps the admin application list.
type ApplicationsResponse struct {
	Applications []*model.AdminApplication `json:"applications"`
}

// UsersResponse wraps the admin user list.
type UsersResponse struct {
	Users []*model.UserSummary `json:"users"`
}

// ProfileResponse wraps the caller's profile.
type ProfileResponse struct {
	Profile *model.Profile `json:"profile"`
}

// URLResponse carries a signed download link.
type URLResponse struct {
	URL string `json:"url"`
}

// NonNilJobs keeps empty lists rendering as [] rather than null.
func NonNilJobs(jobs []*model.Job) []*model.Job {
	if jobs == nil {
		return []*model.Job{}
	}
	return jobs
}
