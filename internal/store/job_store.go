package store

import (
	"context"
	"errors"

	"github.com/justsurfingit/placement-tracker/internal/apperrors"
	"github.com/justsurfingit/placement-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mutation is what a MutateApplicants callback wants persisted: the applicant
// records it created or changed, and the audit events to record with them.
type Mutation struct {
	Applicants []models.Applicant
	Events     []models.JobEvent
}

type JobStore struct {
	DB *gorm.DB
}

func NewJobStore(db *gorm.DB) *JobStore {
	return &JobStore{DB: db}
}

func (s *JobStore) Create(ctx context.Context, job *models.JobPost) error {
	if err := s.DB.WithContext(ctx).Omit("Applicants").Create(job).Error; err != nil {
		return apperrors.Internal("failed to create job post", err)
	}
	return nil
}

// Get loads the posting with its applicants in attach order.
func (s *JobStore) Get(ctx context.Context, id uint) (*models.JobPost, error) {
	var job models.JobPost
	err := s.DB.WithContext(ctx).
		Preload("Applicants", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&job, id).Error
	if err != nil {
		return nil, notFoundOr(err, "job post not found", "failed to load job post")
	}
	return &job, nil
}

// GetCriteria loads the posting without its applicants.
func (s *JobStore) GetCriteria(ctx context.Context, id uint) (*models.JobPost, error) {
	var job models.JobPost
	if err := s.DB.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, notFoundOr(err, "job post not found", "failed to load job post")
	}
	return &job, nil
}

// List returns all postings, newest first, without applicants.
func (s *JobStore) List(ctx context.Context) ([]models.JobPost, error) {
	var jobs []models.JobPost
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, apperrors.Internal("failed to list job posts", err)
	}
	return jobs, nil
}

// Update overwrites the descriptive fields and criteria. Applicants are not
// touched.
func (s *JobStore) Update(ctx context.Context, job *models.JobPost) error {
	result := s.DB.WithContext(ctx).
		Model(&models.JobPost{ID: job.ID}).
		Select("company_name", "title", "description", "package", "role", "location",
			"application_deadline", "is_active",
			"eligibility_graduation_year", "eligibility_min_gpa", "eligibility_max_arrear_history",
			"eligibility_max_current_arrears", "eligibility_allowed_departments").
		Updates(job)
	if result.Error != nil {
		return apperrors.Internal("failed to update job post", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("job post not found", nil)
	}
	return nil
}

// Delete removes the posting, its applicants and its events.
func (s *JobStore) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_post_id = ?", id).Delete(&models.Applicant{}).Error; err != nil {
			return apperrors.Internal("failed to delete applicants", err)
		}
		if err := tx.Where("job_post_id = ?", id).Delete(&models.JobEvent{}).Error; err != nil {
			return apperrors.Internal("failed to delete job events", err)
		}
		result := tx.Delete(&models.JobPost{}, id)
		if result.Error != nil {
			return apperrors.Internal("failed to delete job post", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("job post not found", nil)
		}
		return nil
	})
}

// MutateApplicants runs fn against the posting while holding its row lock,
// so mutations of one posting are applied one at a time. Whatever fn returns
// is saved in the same transaction; an error from fn commits nothing.
func (s *JobStore) MutateApplicants(ctx context.Context, id uint, fn func(job *models.JobPost) (*Mutation, error)) (*Mutation, error) {
	var out *Mutation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.JobPost
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&job, id).Error; err != nil {
			return notFoundOr(err, "job post not found", "failed to lock job post")
		}
		if err := tx.Where("job_post_id = ?", id).Order("id").Find(&job.Applicants).Error; err != nil {
			return apperrors.Internal("failed to load applicants", err)
		}

		m, err := fn(&job)
		if err != nil {
			return err
		}
		if m == nil {
			m = &Mutation{}
		}
		for i := range m.Applicants {
			m.Applicants[i].JobPostID = id
			if err := tx.Save(&m.Applicants[i]).Error; err != nil {
				return apperrors.Internal("failed to save applicant", err)
			}
		}
		for i := range m.Events {
			m.Events[i].JobPostID = id
		}
		if len(m.Events) > 0 {
			if err := tx.Create(&m.Events).Error; err != nil {
				return apperrors.Internal("failed to record job events", err)
			}
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func notFoundOr(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(notFoundMsg, err)
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.Internal(internalMsg, err)
}
