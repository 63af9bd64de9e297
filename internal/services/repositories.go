package services

import (
	"context"

	"github.com/justsurfingit/placement-tracker/internal/eligibility"
	"github.com/justsurfingit/placement-tracker/internal/models"
	"github.com/justsurfingit/placement-tracker/internal/store"
)

// JobRepository is the job posting store. store.JobStore implements it over
// Postgres.
type JobRepository interface {
	Create(ctx context.Context, job *models.JobPost) error
	Get(ctx context.Context, id uint) (*models.JobPost, error)
	GetCriteria(ctx context.Context, id uint) (*models.JobPost, error)
	List(ctx context.Context) ([]models.JobPost, error)
	Update(ctx context.Context, job *models.JobPost) error
	Delete(ctx context.Context, id uint) error
	// MutateApplicants must apply mutations of one posting one at a time and
	// persist nothing when fn fails.
	MutateApplicants(ctx context.Context, id uint, fn func(job *models.JobPost) (*store.Mutation, error)) (*store.Mutation, error)
}

// StudentRepository is the candidate pool. Queries only see student accounts.
type StudentRepository interface {
	Get(ctx context.Context, id uint) (*models.Student, error)
	FindEligible(ctx context.Context, q eligibility.Query) ([]models.Student, error)
}
