package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/placement-tracker/internal/apperrors"
	"github.com/justsurfingit/placement-tracker/internal/dtos"
	"github.com/justsurfingit/placement-tracker/internal/models"
	"github.com/justsurfingit/placement-tracker/internal/services"
	"github.com/rs/zerolog"
)

type ApplicantHandler struct {
	ApplicantService *services.ApplicantService
	Logger           zerolog.Logger
}

func NewApplicantHandler(a *services.ApplicantService, logger zerolog.Logger) *ApplicantHandler {
	return &ApplicantHandler{ApplicantService: a, Logger: logger}
}

func (h *ApplicantHandler) List(c *gin.Context) {
	jobID, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	applicants, err := h.ApplicantService.List(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, applicants)
}

// Attach is POST /jobs/:id/applicants
func (h *ApplicantHandler) Attach(c *gin.Context) {
	jobID, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	var req dtos.AttachApplicantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, bindError(err))
		return
	}
	applicant, err := h.ApplicantService.Attach(c.Request.Context(), jobID, req.StudentID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, applicant)
}

// UpdateStatus is PATCH /jobs/:id/applicants/:studentId/status
func (h *ApplicantHandler) UpdateStatus(c *gin.Context) {
	jobID, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	studentID, err := parseID(c, "studentId")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	var req dtos.UpdateApplicantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, bindError(err))
		return
	}
	status, err := models.ParseApplicantStatus(req.Status)
	if err != nil {
		respondError(c, h.Logger, apperrors.InvalidInput(err.Error(), err))
		return
	}
	applicant, err := h.ApplicantService.Transition(c.Request.Context(), jobID, studentID, status)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, applicant)
}
