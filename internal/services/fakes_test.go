package services

import (
	"context"
	"sync"
	"time"

	"github.com/justsurfingit/placement-tracker/internal/apperrors"
	"github.com/justsurfingit/placement-tracker/internal/eligibility"
	"github.com/justsurfingit/placement-tracker/internal/events"
	"github.com/justsurfingit/placement-tracker/internal/models"
	"github.com/justsurfingit/placement-tracker/internal/store"
)

type fakeJobRepo struct {
	mu           sync.Mutex
	nextJobID    uint
	nextRecordID uint
	jobs         map[uint]*models.JobPost
	events       []models.JobEvent
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uint]*models.JobPost)}
}

func cloneJob(job *models.JobPost) *models.JobPost {
	copy := *job
	copy.Applicants = make([]models.Applicant, len(job.Applicants))
	for i, a := range job.Applicants {
		a.AttendedRounds = append([]models.RoundAttendance(nil), a.AttendedRounds...)
		copy.Applicants[i] = a
	}
	return &copy
}

func (r *fakeJobRepo) Create(ctx context.Context, job *models.JobPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextJobID++
	job.ID = r.nextJobID
	job.CreatedAt = time.Now().UTC()
	r.jobs[job.ID] = cloneJob(job)
	return nil
}

func (r *fakeJobRepo) Get(ctx context.Context, id uint) (*models.JobPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("job post not found", nil)
	}
	return cloneJob(job), nil
}

func (r *fakeJobRepo) GetCriteria(ctx context.Context, id uint) (*models.JobPost, error) {
	job, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	job.Applicants = nil
	return job, nil
}

func (r *fakeJobRepo) List(ctx context.Context) ([]models.JobPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.JobPost
	for id := r.nextJobID; id > 0; id-- {
		if job, ok := r.jobs[id]; ok {
			out = append(out, *cloneJob(job))
		}
	}
	return out, nil
}

func (r *fakeJobRepo) Update(ctx context.Context, job *models.JobPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.jobs[job.ID]
	if !ok {
		return apperrors.NotFound("job post not found", nil)
	}
	updated := cloneJob(job)
	updated.Applicants = current.Applicants
	updated.CreatedAt = current.CreatedAt
	r.jobs[job.ID] = updated
	return nil
}

func (r *fakeJobRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return apperrors.NotFound("job post not found", nil)
	}
	delete(r.jobs, id)
	return nil
}

func (r *fakeJobRepo) MutateApplicants(ctx context.Context, id uint, fn func(job *models.JobPost) (*store.Mutation, error)) (*store.Mutation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("job post not found", nil)
	}
	m, err := fn(cloneJob(stored))
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = &store.Mutation{}
	}
	for i := range m.Applicants {
		a := &m.Applicants[i]
		a.JobPostID = id
		if a.ID == 0 {
			r.nextRecordID++
			a.ID = r.nextRecordID
		}
		saved := *a
		saved.AttendedRounds = append([]models.RoundAttendance(nil), a.AttendedRounds...)
		if existing := stored.Applicant(a.StudentID); existing != nil {
			*existing = saved
		} else {
			stored.Applicants = append(stored.Applicants, saved)
		}
	}
	for _, e := range m.Events {
		e.JobPostID = id
		r.events = append(r.events, e)
	}
	return m, nil
}

func (r *fakeJobRepo) applicant(jobID, studentID uint) *models.Applicant {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return nil
	}
	a := job.Applicant(studentID)
	if a == nil {
		return nil
	}
	copy := *a
	copy.AttendedRounds = append([]models.RoundAttendance(nil), a.AttendedRounds...)
	return &copy
}

type fakeStudentRepo struct {
	mu       sync.Mutex
	students []models.Student
}

func (r *fakeStudentRepo) Get(ctx context.Context, id uint) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.ID == id {
			copy := s
			return &copy, nil
		}
	}
	return nil, apperrors.NotFound("student not found", nil)
}

func (r *fakeStudentRepo) FindEligible(ctx context.Context, q eligibility.Query) ([]models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Student
	for _, s := range r.students {
		if q.Matches(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	events   []events.ApplicantEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, subject string, event events.ApplicantEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() {}
