package handlers

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/placement-tracker/internal/apperrors"
	"github.com/justsurfingit/placement-tracker/internal/dtos"
	"github.com/justsurfingit/placement-tracker/internal/export"
	"github.com/justsurfingit/placement-tracker/internal/services"
	"github.com/rs/zerolog"
)

// JobHandler serves postings and their eligible-student views.
type JobHandler struct {
	JobService         *services.JobService
	EligibilityService *services.EligibilityService
	ApplicantService   *services.ApplicantService
	Logger             zerolog.Logger
}

// NewJobHandler creates the handler with dependencies
func NewJobHandler(j *services.JobService, e *services.EligibilityService, a *services.ApplicantService, logger zerolog.Logger) *JobHandler {
	return &JobHandler{
		JobService:         j,
		EligibilityService: e,
		ApplicantService:   a,
		Logger:             logger,
	}
}

// CreateJob is POST /jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, bindError(err))
		return
	}
	job, err := h.JobService.CreateJob(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.JobService.ListJobs(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	job, err := h.JobService.GetJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// UpdateJob is PUT /jobs/:id. The body replaces every editable field.
func (h *JobHandler) UpdateJob(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, bindError(err))
		return
	}
	job, err := h.JobService.UpdateJob(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if err := h.JobService.DeleteJob(c.Request.Context(), id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EligibleStudents is GET /jobs/:id/eligible-students
func (h *JobHandler) EligibleStudents(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	result, err := h.EligibilityService.ResolveEligible(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DownloadEligible streams the eligible list as an attachment. The format
// query parameter picks csv (default) or xlsx.
func (h *JobHandler) DownloadEligible(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, h.Logger, apperrors.InvalidInput(err.Error(), err))
		return
	}
	file, err := h.EligibilityService.ExportEligible(c.Request.Context(), id, format)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// AttachEligible is POST /jobs/:id/eligible-students/attach
func (h *JobHandler) AttachEligible(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	attached, err := h.ApplicantService.AttachEligible(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attached": len(attached), "applicants": attached})
}
