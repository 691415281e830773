package model

import (
	"strings"
	"time"
)

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusReviewed ApplicationStatus = "reviewed"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// ValidStatuses contains all valid application statuses.
var ValidStatuses = []ApplicationStatus{StatusPending, StatusReviewed, StatusApproved, StatusRejected}

// ParseApplicationStatus parses a status case-insensitively.
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	status := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidStatuses {
		if status == valid {
			return status, true
		}
	}
	return "", false
}

// Application is a candidate's application to a job.
type Application struct {
	ID               string            `json:"id"`
	JobID            string            `json:"job_id"`
	UserID           string            `json:"user_id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	Skills           *string           `json:"skills"`
	ExpectedSalary   *string           `json:"expected_salary"`
	CoverLetter      *string           `json:"cover_letter"`
	Location         *string           `json:"location"`
	City             *string           `json:"city"`
	Experience       *string           `json:"experience"`
	Education        *string           `json:"education"`
	PositionApplying *string           `json:"position_applying"`
	Status           ApplicationStatus `json:"status"`
	ResumePath       *string           `json:"resume_path"`
	AppliedAt        time.Time         `json:"applied_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ResumeRef identifies the stored résumé of an application.
type ResumeRef struct {
	ApplicationID string
	UserID        string
	ResumePath    *string
}

// AdminApplication is a row of the applications_admin_view.
type AdminApplication struct {
	Application
	JobTitle      string  `json:"job_title"`
	JobLocation   string  `json:"job_location"`
	ApplicantName *string `json:"applicant_name"`
	ApplicantMail *string `json:"applicant_email"`
}
