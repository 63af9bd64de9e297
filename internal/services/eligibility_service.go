package services

import (
	"context"

	"github.com/justsurfingit/placement-tracker/internal/eligibility"
	"github.com/justsurfingit/placement-tracker/internal/export"
	"github.com/justsurfingit/placement-tracker/internal/models"
	"github.com/justsurfingit/placement-tracker/internal/telemetry"
	"github.com/rs/zerolog"
)

type EligibleResult struct {
	Count    int              `json:"count"`
	Students []models.Student `json:"students"`
}

// EligibilityService answers "who qualifies for this posting". It never
// touches applicant records and takes no posting lock.
type EligibilityService struct {
	Jobs     JobRepository
	Students StudentRepository
	Logger   zerolog.Logger
}

func NewEligibilityService(jobs JobRepository, students StudentRepository, logger zerolog.Logger) *EligibilityService {
	return &EligibilityService{Jobs: jobs, Students: students, Logger: logger}
}

// ResolveEligible returns the students matching the posting's criteria in
// the repository's order. No match is a zero count, not an error.
func (s *EligibilityService) ResolveEligible(ctx context.Context, jobID uint) (*EligibleResult, error) {
	ctx, span := tracer.Start(ctx, "ResolveEligible")
	defer span.End()

	job, err := s.Jobs.GetCriteria(ctx, jobID)
	if err != nil {
		return nil, err
	}
	students, err := s.resolve(ctx, job)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(telemetry.Int("eligible.count", len(students)))
	s.Logger.Debug().
		Uint("job_id", jobID).
		Int("count", len(students)).
		Msg("resolved eligible students")
	return &EligibleResult{Count: len(students), Students: students}, nil
}

// ExportEligible renders the eligible set. An empty set still produces a
// file holding only the header row.
func (s *EligibilityService) ExportEligible(ctx context.Context, jobID uint, format export.Format) (*export.File, error) {
	ctx, span := tracer.Start(ctx, "ExportEligible")
	defer span.End()

	job, err := s.Jobs.GetCriteria(ctx, jobID)
	if err != nil {
		return nil, err
	}
	students, err := s.resolve(ctx, job)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	file, err := export.Render(job.Title, format, export.FromStudents(students))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		telemetry.String("export.format", string(format)),
		telemetry.Int("export.rows", len(students)),
	)
	s.Logger.Info().
		Uint("job_id", jobID).
		Str("file", file.Name).
		Int("rows", len(students)).
		Msg("exported eligible students")
	return file, nil
}

func (s *EligibilityService) resolve(ctx context.Context, job *models.JobPost) ([]models.Student, error) {
	q, err := eligibility.BuildQuery(job.Eligibility)
	if err != nil {
		return nil, err
	}
	students, err := s.Students.FindEligible(ctx, q)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}
