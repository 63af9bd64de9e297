package services

import (
	"context"
	"strings"

	"github.com/justsurfingit/placement-tracker/internal/apperrors"
	"github.com/justsurfingit/placement-tracker/internal/dtos"
	"github.com/justsurfingit/placement-tracker/internal/eligibility"
	"github.com/justsurfingit/placement-tracker/internal/models"
	"github.com/rs/zerolog"
)

type JobService struct {
	Jobs   JobRepository
	Logger zerolog.Logger
}

func NewJobService(jobs JobRepository, logger zerolog.Logger) *JobService {
	return &JobService{
		Jobs:   jobs,
		Logger: logger,
	}
}

func (s *JobService) CreateJob(ctx context.Context, req *dtos.JobCreationRequest) (*models.JobPost, error) {
	job, err := jobFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.Jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	job.Applicants = []models.Applicant{}
	s.Logger.Info().
		Uint("job_id", job.ID).
		Str("company", job.CompanyName).
		Str("title", job.Title).
		Msg("job post created")
	return job, nil
}

// UpdateJob replaces the descriptive fields and criteria. Applicants keep
// their records even if they no longer match the new criteria.
func (s *JobService) UpdateJob(ctx context.Context, id uint, req *dtos.JobCreationRequest) (*models.JobPost, error) {
	job, err := jobFromRequest(req)
	if err != nil {
		return nil, err
	}
	job.ID = id
	if err := s.Jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	s.Logger.Info().Uint("job_id", id).Msg("job post updated")
	return s.Jobs.Get(ctx, id)
}

func (s *JobService) GetJob(ctx context.Context, id uint) (*models.JobPost, error) {
	return s.Jobs.Get(ctx, id)
}

func (s *JobService) ListJobs(ctx context.Context) ([]models.JobPost, error) {
	jobs, err := s.Jobs.List(ctx)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []models.JobPost{}
	}
	return jobs, nil
}

// DeleteJob removes the posting together with its applicant records.
func (s *JobService) DeleteJob(ctx context.Context, id uint) error {
	if err := s.Jobs.Delete(ctx, id); err != nil {
		return err
	}
	s.Logger.Info().Uint("job_id", id).Msg("job post deleted")
	return nil
}

func jobFromRequest(req *dtos.JobCreationRequest) (*models.JobPost, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("request body is required", nil)
	}
	companyName := strings.TrimSpace(req.CompanyName)
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if companyName == "" || title == "" || description == "" {
		return nil, apperrors.InvalidInput("company name, title and description are required", nil)
	}

	criteria := req.Eligibility.Criteria()
	if err := eligibility.Validate(criteria); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return &models.JobPost{
		CompanyName:         companyName,
		Title:               title,
		Description:         description,
		Package:             strings.TrimSpace(req.Package),
		Role:                strings.TrimSpace(req.Role),
		Location:            strings.TrimSpace(req.Location),
		ApplicationDeadline: req.ApplicationDeadline,
		IsActive:            isActive,
		Eligibility:         criteria,
	}, nil
}
