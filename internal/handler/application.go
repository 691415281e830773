package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/handler/dto"
	"github.com/hireline/hireline/internal/service"
)

// multipartMemory is the part of a form kept in memory before spilling to disk.
const multipartMemory = 8 << 20

// ApplicationHandler handles job applications and résumé files.
type ApplicationHandler struct {
	*Handler
	svc     *service.ApplicationService
	maxSize int64
}

// NewApplicationHandler creates a new ApplicationHandler. maxResume bounds
// the résumé file; non-positive means service.MaxResumeSize.
func NewApplicationHandler(h *Handler, svc *service.ApplicationService, maxResume int64) *ApplicationHandler {
	if maxResume <= 0 {
		maxResume = service.MaxResumeSize
	}
	return &ApplicationHandler{Handler: h, svc: svc, maxSize: maxResume}
}

// Submit handles POST /api/applications (multipart, file field "resume").
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	// Room for the text fields on top of the file.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.handleServiceError(w, r, h.resumeTooLarge())
			return
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "expected multipart/form-data body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	form := dto.ApplicationFormFromRequest(r)
	if !h.validate(w, r, form) {
		return
	}

	resume, err := h.readResume(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	caller := auth.MustIdentityFromContext(r.Context())
	app, err := h.svc.Submit(r.Context(), caller.UserID, service.SubmitInput{
		JobID:            form.JobID,
		Name:             form.Name,
		Email:            form.Email,
		Phone:            form.Phone,
		Skills:           form.Skills,
		ExpectedSalary:   form.ExpectedSalary,
		CoverLetter:      form.CoverLetter,
		Location:         form.Location,
		City:             form.City,
		Experience:       form.Experience,
		Education:        form.Education,
		PositionApplying: form.PositionApplying,
	}, resume)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ApplicationResponse{Application: app})
}

// readResume returns the uploaded file, or nil when none was sent.
func (h *ApplicationHandler) readResume(r *http.Request) (*service.Resume, error) {
	file, header, err := r.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, service.InvalidField("resume", "unreadable file")
	}
	defer file.Close()

	if header.Size > h.maxSize {
		return nil, h.resumeTooLarge()
	}

	data, err := readAllLimited(file, h.maxSize)
	if err != nil {
		return nil, err
	}

	return &service.Resume{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readAllLimited(f multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, service.InvalidField("resume", fmt.Sprintf("file exceeds %d bytes", limit))
	}
	return data, nil
}

// AppliedJobs handles GET /api/applications/my-applications.
func (h *ApplicationHandler) AppliedJobs(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustIdentityFromContext(r.Context())

	jobs, err := h.svc.AppliedJobs(r.Context(), caller.UserID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.JobsResponse{Jobs: dto.NonNilJobs(jobs)})
}

// ResumeURL handles GET /api/applications/{id}/resume-url.
func (h *ApplicationHandler) ResumeURL(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustIdentityFromContext(r.Context())

	url, err := h.svc.ResumeURL(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.URLResponse{URL: url})
}

// DeleteResume handles DELETE /api/applications/{id}/resume.
func (h *ApplicationHandler) DeleteResume(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustIdentityFromContext(r.Context())

	if err := h.svc.DeleteResume(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ApplicationHandler) resumeTooLarge() error {
	return service.InvalidField("resume", fmt.Sprintf("file exceeds %d bytes", h.maxSize))
}
