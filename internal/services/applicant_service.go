package services

import (
	"context"
	"fmt"
	"time"

	"github.com/justsurfingit/placement-tracker/internal/apperrors"
	"github.com/justsurfingit/placement-tracker/internal/events"
	"github.com/justsurfingit/placement-tracker/internal/models"
	"github.com/justsurfingit/placement-tracker/internal/store"
	"github.com/justsurfingit/placement-tracker/internal/telemetry"
	"github.com/rs/zerolog"
)

var tracer = telemetry.GetTracer("placement-tracker/services")

// ApplicantService owns the per-posting applicant records: attaching
// students and moving them through the hiring stages.
type ApplicantService struct {
	Jobs        JobRepository
	Students    StudentRepository
	Eligibility *EligibilityService
	Publisher   events.Publisher
	Logger      zerolog.Logger

	now func() time.Time
}

func NewApplicantService(jobs JobRepository, students StudentRepository, eligibility *EligibilityService, publisher events.Publisher, logger zerolog.Logger) *ApplicantService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &ApplicantService{
		Jobs:        jobs,
		Students:    students,
		Eligibility: eligibility,
		Publisher:   publisher,
		Logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Attach creates the student's record on the posting at Applied.
func (s *ApplicantService) Attach(ctx context.Context, jobID, studentID uint) (*models.Applicant, error) {
	ctx, span := tracer.Start(ctx, "AttachApplicant")
	defer span.End()

	if _, err := s.Students.Get(ctx, studentID); err != nil {
		return nil, err
	}

	m, err := s.Jobs.MutateApplicants(ctx, jobID, func(job *models.JobPost) (*store.Mutation, error) {
		if job.Applicant(studentID) != nil {
			return nil, apperrors.Conflict(fmt.Sprintf("student %d is already attached to job %d", studentID, jobID), nil)
		}
		rec := newApplicant(studentID)
		rec.JobPostID = job.ID
		return &store.Mutation{
			Applicants: []models.Applicant{rec},
			Events:     []models.JobEvent{attachedEvent(rec)},
		}, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	attached := m.Applicants[0]
	s.Logger.Info().
		Uint("job_id", jobID).
		Uint("student_id", studentID).
		Msg("applicant attached")
	s.publish(ctx, events.ApplicantAttachedSubject, events.NewApplicantEvent(attached, ""))
	return &attached, nil
}

// AttachEligible attaches every currently eligible student that is not yet
// on the posting and returns the new records.
func (s *ApplicantService) AttachEligible(ctx context.Context, jobID uint) ([]models.Applicant, error) {
	ctx, span := tracer.Start(ctx, "AttachEligible")
	defer span.End()

	result, err := s.Eligibility.ResolveEligible(ctx, jobID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	m, err := s.Jobs.MutateApplicants(ctx, jobID, func(job *models.JobPost) (*store.Mutation, error) {
		m := &store.Mutation{}
		for _, st := range result.Students {
			if job.Applicant(st.ID) != nil {
				continue
			}
			rec := newApplicant(st.ID)
			rec.JobPostID = job.ID
			m.Applicants = append(m.Applicants, rec)
			m.Events = append(m.Events, attachedEvent(rec))
		}
		return m, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	attached := m.Applicants
	if attached == nil {
		attached = []models.Applicant{}
	}
	span.SetAttributes(telemetry.Int("attached.count", len(attached)))
	s.Logger.Info().
		Uint("job_id", jobID).
		Int("eligible", result.Count).
		Int("attached", len(attached)).
		Msg("attached eligible students")
	for _, a := range attached {
		s.publish(ctx, events.ApplicantAttachedSubject, events.NewApplicantEvent(a, ""))
	}
	return attached, nil
}

// Transition moves the student's record on the posting to status. Repeating
// the current status succeeds without logging another round.
func (s *ApplicantService) Transition(ctx context.Context, jobID, studentID uint, status models.ApplicantStatus) (*models.Applicant, error) {
	ctx, span := tracer.Start(ctx, "TransitionApplicant")
	defer span.End()
	span.SetAttributes(telemetry.String("applicant.status", string(status)))

	if !status.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown applicant status %q", string(status)), nil)
	}

	var (
		result  models.Applicant
		from    models.ApplicantStatus
		changed bool
	)
	_, err := s.Jobs.MutateApplicants(ctx, jobID, func(job *models.JobPost) (*store.Mutation, error) {
		current := job.Applicant(studentID)
		if current == nil {
			return nil, apperrors.NotFound(fmt.Sprintf("student %d is not attached to job %d", studentID, jobID), nil)
		}
		rec := *current
		from = rec.Status

		var err error
		changed, err = applyTransition(&rec, status, s.now())
		if err != nil {
			return nil, err
		}
		result = rec
		if !changed {
			return nil, nil
		}
		return &store.Mutation{
			Applicants: []models.Applicant{rec},
			Events: []models.JobEvent{{
				StudentID: studentID,
				EventType: models.EventApplicantStatusChanged,
				Details:   fmt.Sprintf("Status changed from %s to %s. Current round: %d", from, rec.Status, rec.CurrentRound),
			}},
		}, nil
	})
	if err != nil {
		span.RecordError(err)
		s.Logger.Warn().Err(err).
			Uint("job_id", jobID).
			Uint("student_id", studentID).
			Str("status", string(status)).
			Msg("applicant transition rejected")
		return nil, err
	}

	if !changed {
		s.Logger.Debug().
			Uint("job_id", jobID).
			Uint("student_id", studentID).
			Str("status", string(status)).
			Msg("applicant already in requested status")
		return &result, nil
	}

	s.Logger.Info().
		Uint("job_id", jobID).
		Uint("student_id", studentID).
		Str("from", string(from)).
		Str("to", string(result.Status)).
		Msg("applicant status changed")
	s.publish(ctx, events.ApplicantStatusChangedSubject, events.NewApplicantEvent(result, from))
	return &result, nil
}

// List returns the posting's applicants in attach order.
func (s *ApplicantService) List(ctx context.Context, jobID uint) ([]models.Applicant, error) {
	job, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Applicants == nil {
		return []models.Applicant{}, nil
	}
	return job.Applicants, nil
}

// publish is best effort: the record is already committed.
func (s *ApplicantService) publish(ctx context.Context, subject string, event events.ApplicantEvent) {
	if err := s.Publisher.Publish(ctx, subject, event); err != nil {
		s.Logger.Error().Err(err).
			Str("subject", subject).
			Uint("job_id", event.JobPostID).
			Uint("student_id", event.StudentID).
			Msg("failed to publish applicant event")
	}
}

func attachedEvent(a models.Applicant) models.JobEvent {
	return models.JobEvent{
		StudentID: a.StudentID,
		EventType: models.EventApplicantAttached,
		Details:   fmt.Sprintf("Student attached with status %s", a.Status),
	}
}
