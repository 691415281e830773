// Package dto provides the request and response bodies of the HTTP API.
package dto

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/hireline/hireline/internal/model"
)

// GoogleSignInRequest carries a Google credential. AccessToken is preferred.
type GoogleSignInRequest struct {
	AccessToken string `json:"accessToken"`
	IDToken     string `json:"idToken"`
}

// LoginRequest is the administrator credential.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both fields are present.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// CreateJobRequest is the body of POST /api/jobs.
type CreateJobRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Requirements   string  `json:"requirements"`
	Qualifications string  `json:"qualifications"`
	Skills         *string `json:"skills"`
	Experience     *string `json:"experience"`
	Location       string  `json:"location"`
	SalaryRange    *string `json:"salary_range"`
	IsActive       *bool   `json:"is_active"`
}

// Validate checks field presence and minimum lengths.
func (r CreateJobRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(2, 200)),
		validation.Field(&r.Description, validation.Required, validation.RuneLength(10, 0)),
		validation.Field(&r.Requirements, validation.Required),
		validation.Field(&r.Qualifications, validation.Required, validation.RuneLength(2, 0)),
		validation.Field(&r.Location, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&r.SalaryRange, validation.RuneLength(0, 100)),
	)
}

// UpdateJobRequest is the body of PUT /api/jobs/{id}. Only the listed
// columns can be changed; absent fields are left alone.
type UpdateJobRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Requirements   *string `json:"requirements"`
	Qualifications *string `json:"qualifications"`
	Skills         *string `json:"skills"`
	Experience     *string `json:"experience"`
	Location       *string `json:"location"`
	SalaryRange    *string `json:"salary_range"`
	IsActive       *bool   `json:"is_active"`
}

// Validate applies the create rules to the fields that are present.
func (r UpdateJobRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(2, 200)),
		validation.Field(&r.Description, validation.NilOrNotEmpty, validation.RuneLength(10, 0)),
		validation.Field(&r.Requirements, validation.NilOrNotEmpty),
		validation.Field(&r.Qualifications, validation.NilOrNotEmpty, validation.RuneLength(2, 0)),
		validation.Field(&r.Location, validation.NilOrNotEmpty, validation.RuneLength(1, 200)),
		validation.Field(&r.SalaryRange, validation.RuneLength(0, 100)),
	)
}

// ToUpdate converts the request into a model update.
func (r UpdateJobRequest) ToUpdate() model.JobUpdate {
	return model.JobUpdate{
		Title:          r.Title,
		Description:    r.Description,
		Requirements:   r.Requirements,
		Qualifications: r.Qualifications,
		Skills:         r.Skills,
		Experience:     r.Experience,
		Location:       r.Location,
		SalaryRange:    r.SalaryRange,
		IsActive:       r.IsActive,
	}
}

// JobStatusRequest is the body of PATCH /api/jobs/{id}/status.
type JobStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

// Validate requires is_active.
func (r JobStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IsActive, validation.NotNil),
	)
}

// ApplicationForm holds the text fields of the multipart application form.
type ApplicationForm struct {
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

// ApplicationFormFromRequest reads the form fields of a parsed multipart request.
func ApplicationFormFromRequest(r *http.Request) ApplicationForm {
	get := func(key string) string { return strings.TrimSpace(r.FormValue(key)) }
	opt := func(key string) *string {
		v := get(key)
		if v == "" {
			return nil
		}
		return &v
	}
	return ApplicationForm{
		JobID:            get("job_id"),
		Name:             get("name"),
		Email:            get("email"),
		Phone:            get("phone"),
		Skills:           opt("skills"),
		ExpectedSalary:   opt("expected_salary"),
		CoverLetter:      opt("cover_letter"),
		Location:         opt("location"),
		City:             opt("city"),
		Experience:       opt("experience"),
		Education:        opt("education"),
		PositionApplying: opt("position_applying"),
	}
}

// Validate checks the required applicant fields. Error keys use the form
// field names.
func (f ApplicationForm) Validate() error {
	errs := validation.Errors{
		"job_id": validation.Validate(f.JobID, validation.Required, is.UUID),
		"name":   validation.Validate(f.Name, validation.Required, validation.RuneLength(2, 200)),
		"email":  validation.Validate(f.Email, validation.Required, is.Email),
		"phone":  validation.Validate(f.Phone, validation.Required, validation.RuneLength(5, 32)),
	}
	return errs.Filter()
}

// UpdateProfileRequest is the body of PUT /api/user/profile.
type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// Validate requires at least two characters once surrounding space is
// trimmed.
func (r UpdateProfileRequest) Validate() error {
	return validation.Errors{
		"name": validation.Validate(strings.TrimSpace(r.Name), validation.Required, validation.RuneLength(2, 0)),
	}.Filter()
}

// UpdateStatusRequest is the body of PATCH /api/admin/applications/{id}.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Validate requires a status value.
func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required),
	)
}
