package model

import "time"

// Job is a job posting.
type Job struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Requirements   string    `json:"requirements"`
	Qualifications string    `json:"qualifications"`
	Skills         *string   `json:"skills"`
	Experience     *string   `json:"experience"`
	Location       string    `json:"location"`
	SalaryRange    *string   `json:"salary_range"`
	IsActive       bool      `json:"is_active"`
	PostedBy       *string   `json:"posted_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// JobUpdate holds the fields to change on a job. Nil fields are left alone.
type JobUpdate struct {
	Title          *string
	Description    *string
	Requirements   *string
	Qualifications *string
	Skills         *string
	Experience     *string
	Location       *string
	SalaryRange    *string
	IsActive       *bool
	UpdatedAt      time.Time
}

// Columns returns the changed columns keyed by column name.
func (u *JobUpdate) Columns() map[string]any {
	cols := make(map[string]any)
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.Requirements != nil {
		cols["requirements"] = *u.Requirements
	}
	if u.Qualifications != nil {
		cols["qualifications"] = *u.Qualifications
	}
	if u.Skills != nil {
		cols["skills"] = *u.Skills
	}
	if u.Experience != nil {
		cols["experience"] = *u.Experience
	}
	if u.Location != nil {
		cols["location"] = *u.Location
	}
	if u.SalaryRange != nil {
		cols["salary_range"] = *u.SalaryRange
	}
	if u.IsActive != nil {
		cols["is_active"] = *u.IsActive
	}
	return cols
}
