package services

import (
	"context"
	"sync"
	"testing"

	"github.com/justsurfingit/placement-tracker/internal/apperrors"
	"github.com/justsurfingit/placement-tracker/internal/dtos"
	"github.com/justsurfingit/placement-tracker/internal/events"
	"github.com/justsurfingit/placement-tracker/internal/models"
	"github.com/rs/zerolog"
)

type applicantFixture struct {
	jobs      *fakeJobRepo
	students  *fakeStudentRepo
	publisher *recordingPublisher
	svc       *ApplicantService
	jobID     uint
}

func newApplicantFixture(t *testing.T) *applicantFixture {
	t.Helper()
	jobs := newFakeJobRepo()
	students := &fakeStudentRepo{students: []models.Student{
		{ID: 1, FullName: "Asha", Department: "CSE", GraduationYear: 2025, UGGpa: 8.0},
		{ID: 2, FullName: "Bala", Department: "CSE", GraduationYear: 2025, UGGpa: 6.0},
		{ID: 3, FullName: "Chitra", Department: "ECE", GraduationYear: 2025, UGGpa: 9.1},
	}}
	publisher := &recordingPublisher{}
	logger := zerolog.Nop()

	jobSvc := NewJobService(jobs, logger)
	year := 2025
	job, err := jobSvc.CreateJob(context.Background(), &dtos.JobCreationRequest{
		CompanyName: "Acme",
		Title:       "Graduate Engineer",
		Description: "Build things",
		Eligibility: dtos.EligibilityRequest{GraduationYear: &year, AllowedDepartments: []string{"CSE"}},
	})
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	elig := NewEligibilityService(jobs, students, logger)
	return &applicantFixture{
		jobs:      jobs,
		students:  students,
		publisher: publisher,
		svc:       NewApplicantService(jobs, students, elig, publisher, logger),
		jobID:     job.ID,
	}
}

func TestAttach_CreatesAppliedRecord(t *testing.T) {
	f := newApplicantFixture(t)

	a, err := f.svc.Attach(context.Background(), f.jobID, 1)
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if a.Status != models.StatusApplied || a.CurrentRound != 0 || len(a.AttendedRounds) != 0 {
		t.Errorf("Attach() = %+v, want fresh Applied record", a)
	}
	if len(f.publisher.subjects) != 1 || f.publisher.subjects[0] != events.ApplicantAttachedSubject {
		t.Errorf("published %v", f.publisher.subjects)
	}
	if len(f.jobs.events) != 1 || f.jobs.events[0].EventType != models.EventApplicantAttached {
		t.Errorf("recorded events %+v", f.jobs.events)
	}
}

func TestAttach_DuplicateIsConflict(t *testing.T) {
	f := newApplicantFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Attach(ctx, f.jobID, 1); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.Attach(ctx, f.jobID, 1)
	if !apperrors.Is(err, apperrors.ErrTypeConflict) {
		t.Fatalf("second Attach() error = %v, want CONFLICT", err)
	}
	list, _ := f.svc.List(ctx, f.jobID)
	if len(list) != 1 {
		t.Errorf("List() has %d records, want 1", len(list))
	}
}

func TestAttach_MissingPostingOrStudent(t *testing.T) {
	f := newApplicantFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Attach(ctx, 999, 1); !apperrors.Is(err, apperrors.ErrTypeNotFound) {
		t.Errorf("missing posting: error = %v, want NOT_FOUND", err)
	}
	if _, err := f.svc.Attach(ctx, f.jobID, 42); !apperrors.Is(err, apperrors.ErrTypeNotFound) {
		t.Errorf("missing student: error = %v, want NOT_FOUND", err)
	}
}

func TestTransition_RepeatedRoundLogsOnce(t *testing.T) {
	f := newApplicantFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Attach(ctx, f.jobID, 1); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		a, err := f.svc.Transition(ctx, f.jobID, 1, models.StatusRound1)
		if err != nil {
			t.Fatalf("Transition #%d error = %v", i+1, err)
		}
		if a.Status != models.StatusRound1 {
			t.Errorf("Transition #%d status = %q", i+1, a.Status)
		}
	}

	stored := f.jobs.applicant(f.jobID, 1)
	if len(stored.AttendedRounds) != 1 || stored.CurrentRound != 1 {
		t.Fatalf("stored = %+v, want 1 round entry and current round 1", stored)
	}
	if n := len(f.publisher.subjects); n != 2 {
		t.Errorf("published %d events, want attach + one status change", n)
	}
}

func TestTransition_HiredIsTerminal(t *testing.T) {
	f := newApplicantFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Attach(ctx, f.jobID, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Transition(ctx, f.jobID, 1, models.StatusHired); err != nil {
		t.Fatalf("Transition(Hired) error = %v", err)
	}

	_, err := f.svc.Transition(ctx, f.jobID, 1, models.StatusRound2)
	if !apperrors.Is(err, apperrors.ErrTypeInvalidTransition) {
		t.Fatalf("Transition(Round 2) error = %v, want INVALID_TRANSITION", err)
	}
	stored := f.jobs.applicant(f.jobID, 1)
	if stored.Status != models.StatusHired || len(stored.AttendedRounds) != 0 {
		t.Errorf("stored = %+v, want unchanged Hired record", stored)
	}
}

func TestTransition_TerminalRejectsEvenSameStatus(t *testing.T) {
	f := newApplicantFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Attach(ctx, f.jobID, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Transition(ctx, f.jobID, 1, models.StatusRejected); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Transition(ctx, f.jobID, 1, models.StatusRejected); !apperrors.Is(err, apperrors.ErrTypeInvalidTransition) {
		t.Fatalf("error = %v, want INVALID_TRANSITION", err)
	}
}

func TestTransition_NotAttachedIsNotFound(t *testing.T) {
	f := newApplicantFixture(t)
	_, err := f.svc.Transition(context.Background(), f.jobID, 3, models.StatusRound1)
	if !apperrors.Is(err, apperrors.ErrTypeNotFound) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestTransition_UnknownStatusIsInvalidInput(t *testing.T) {
	f := newApplicantFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Attach(ctx, f.jobID, 1); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.Transition(ctx, f.jobID, 1, models.ApplicantStatus("Offer"))
	if !apperrors.Is(err, apperrors.ErrTypeInvalidInput) {
		t.Fatalf("error = %v, want INVALID_INPUT", err)
	}
}

func TestTransition_ConcurrentRequestsLoseNothing(t *testing.T) {
	f := newApplicantFixture(t)
	ctx := context.Background()
	for _, id := range []uint{1, 2, 3} {
		if _, err := f.svc.Attach(ctx, f.jobID, id); err != nil {
			t.Fatal(err)
		}
	}

	var wg sync.WaitGroup
	for _, id := range []uint{1, 2, 3} {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(id uint) {
				defer wg.Done()
				if _, err := f.svc.Transition(ctx, f.jobID, id, models.StatusRound1); err != nil {
					t.Errorf("Transition(%d) error = %v", id, err)
				}
			}(id)
		}
	}
	wg.Wait()

	for _, id := range []uint{1, 2, 3} {
		stored := f.jobs.applicant(f.jobID, id)
		if stored.Status != models.StatusRound1 || len(stored.AttendedRounds) != 1 {
			t.Errorf("student %d: %+v, want Round 1 logged once", id, stored)
		}
	}
}

func TestAttachEligible_AttachesOnlyNewMatches(t *testing.T) {
	f := newApplicantFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Attach(ctx, f.jobID, 1); err != nil {
		t.Fatal(err)
	}

	attached, err := f.svc.AttachEligible(ctx, f.jobID)
	if err != nil {
		t.Fatalf("AttachEligible() error = %v", err)
	}
	// Students 1 and 2 are CSE/2025; 1 is already attached.
	if len(attached) != 1 || attached[0].StudentID != 2 || attached[0].Status != models.StatusApplied {
		t.Fatalf("AttachEligible() = %+v, want only student 2", attached)
	}

	again, err := f.svc.AttachEligible(ctx, f.jobID)
	if err != nil {
		t.Fatal(err)
	}
	if again == nil || len(again) != 0 {
		t.Errorf("second AttachEligible() = %+v, want empty", again)
	}
}

func TestList_AttachOrder(t *testing.T) {
	f := newApplicantFixture(t)
	ctx := context.Background()
	for _, id := range []uint{3, 1, 2} {
		if _, err := f.svc.Attach(ctx, f.jobID, id); err != nil {
			t.Fatal(err)
		}
	}
	list, err := f.svc.List(ctx, f.jobID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].StudentID != 3 || list[1].StudentID != 1 || list[2].StudentID != 2 {
		t.Errorf("List() order = %+v", list)
	}
}
