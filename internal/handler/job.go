package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/handler/dto"
	"github.com/hireline/hireline/internal/service"
)

// JobHandler handles HTTP requests for job postings.
type JobHandler struct {
	*Handler
	svc *service.JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(h *Handler, svc *service.JobService) *JobHandler {
	return &JobHandler{Handler: h, svc: svc}
}

// ListPublic handles GET /api/jobs.
func (h *JobHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.ListPublic(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.JobsResponse{Jobs: dto.NonNilJobs(jobs)})
}

// ListAll handles GET /api/jobs/admin/all/list.
func (h *JobHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.JobsResponse{Jobs: dto.NonNilJobs(jobs)})
}

// Get handles GET /api/jobs/{id}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustIdentityFromContext(r.Context())

	job, err := h.svc.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.JobResponse{Job: job})
}

// Create handles POST /api/jobs.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateJobRequest
	if !h.decodeJSON(w, r, &req) || !h.validate(w, r, req) {
		return
	}

	caller := auth.MustIdentityFromContext(r.Context())
	job, err := h.svc.Create(r.Context(), service.CreateJobInput{
		Title:          req.Title,
		Description:    req.Description,
		Requirements:   req.Requirements,
		Qualifications: req.Qualifications,
		Skills:         req.Skills,
		Experience:     req.Experience,
		Location:       req.Location,
		SalaryRange:    req.SalaryRange,
		IsActive:       req.IsActive,
		PostedBy:       caller.UserID,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("job created", "job_id", job.ID, "by", caller.UserID)
	writeJSON(w, http.StatusCreated, dto.JobResponse{Job: job})
}

// Update handles PUT /api/jobs/{id}.
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateJobRequest
	if !h.decodeJSON(w, r, &req) || !h.validate(w, r, req) {
		return
	}

	job, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req.ToUpdate())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.JobResponse{Job: job})
}

// SetStatus handles PATCH /api/jobs/{id}/status.
func (h *JobHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.JobStatusRequest
	if !h.decodeJSON(w, r, &req) || !h.validate(w, r, req) {
		return
	}

	job, err := h.svc.SetActive(r.Context(), chi.URLParam(r, "id"), *req.IsActive)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.JobResponse{Job: job})
}

// Delete handles DELETE /api/jobs/{id}.
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("job deleted", "job_id", id)
	writeJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}
