package model

import "time"

// User is an account known to the job board.
type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	IsAdmin           bool      `json:"is_admin"`
	GoogleID          *string   `json:"google_id,omitempty"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Role returns the session role for this user.
func (u *User) Role() Role {
	return RoleFor(u.IsAdmin)
}

// UserUpdate holds the fields to change on a user. Nil fields are left alone.
type UserUpdate struct {
	Name              *string
	IsAdmin           *bool
	GoogleID          *string
	ProfilePictureURL *string
	UpdatedAt         time.Time
}

// IsEmpty returns true if no field is set.
func (u *UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.IsAdmin == nil && u.GoogleID == nil && u.ProfilePictureURL == nil
}

// PublicUser is the projection of a user that is safe to return to clients.
type PublicUser struct {
	ID                string  `json:"id"`
	Email             string  `json:"email"`
	Name              string  `json:"name"`
	IsAdmin           bool    `json:"is_admin"`
	ProfilePictureURL *string `json:"profile_picture_url"`
}

// ToPublic converts a User to its public projection.
func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		IsAdmin:           u.IsAdmin,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

// UserSummary is a row of the admin user listing.
type UserSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is a row of the user_profile_view.
type Profile struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	IsAdmin           bool      `json:"is_admin"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	ApplicationsCount int64     `json:"applications_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
