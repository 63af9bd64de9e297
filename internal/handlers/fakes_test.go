package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/justsurfingit/placement-tracker/internal/apperrors"
	"github.com/justsurfingit/placement-tracker/internal/eligibility"
	"github.com/justsurfingit/placement-tracker/internal/models"
	"github.com/justsurfingit/placement-tracker/internal/store"
)

type memJobRepo struct {
	mu     sync.Mutex
	nextID uint
	jobs   map[uint]*models.JobPost
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[uint]*models.JobPost)}
}

func clone(job *models.JobPost) *models.JobPost {
	c := *job
	c.Applicants = make([]models.Applicant, len(job.Applicants))
	for i, a := range job.Applicants {
		a.AttendedRounds = append([]models.RoundAttendance(nil), a.AttendedRounds...)
		c.Applicants[i] = a
	}
	return &c
}

func (r *memJobRepo) Create(ctx context.Context, job *models.JobPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	job.ID = r.nextID
	job.CreatedAt = time.Now().UTC()
	r.jobs[job.ID] = clone(job)
	return nil
}

func (r *memJobRepo) Get(ctx context.Context, id uint) (*models.JobPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("job post not found", nil)
	}
	return clone(job), nil
}

func (r *memJobRepo) GetCriteria(ctx context.Context, id uint) (*models.JobPost, error) {
	return r.Get(ctx, id)
}

func (r *memJobRepo) List(ctx context.Context) ([]models.JobPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.JobPost{}
	for id := r.nextID; id > 0; id-- {
		if job, ok := r.jobs[id]; ok {
			out = append(out, *clone(job))
		}
	}
	return out, nil
}

func (r *memJobRepo) Update(ctx context.Context, job *models.JobPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.jobs[job.ID]
	if !ok {
		return apperrors.NotFound("job post not found", nil)
	}
	updated := clone(job)
	updated.Applicants = current.Applicants
	r.jobs[job.ID] = updated
	return nil
}

func (r *memJobRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return apperrors.NotFound("job post not found", nil)
	}
	delete(r.jobs, id)
	return nil
}

func (r *memJobRepo) MutateApplicants(ctx context.Context, id uint, fn func(job *models.JobPost) (*store.Mutation, error)) (*store.Mutation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("job post not found", nil)
	}
	m, err := fn(clone(stored))
	if err != nil {
		return nil, err
	}
	if m == nil {
		return &store.Mutation{}, nil
	}
	for _, a := range m.Applicants {
		a.JobPostID = id
		if existing := stored.Applicant(a.StudentID); existing != nil {
			*existing = a
		} else {
			stored.Applicants = append(stored.Applicants, a)
		}
	}
	return m, nil
}

type memStudentRepo struct {
	students []models.Student
}

func (r *memStudentRepo) Get(ctx context.Context, id uint) (*models.Student, error) {
	for _, s := range r.students {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, apperrors.NotFound("student not found", nil)
}

func (r *memStudentRepo) FindEligible(ctx context.Context, q eligibility.Query) ([]models.Student, error) {
	out := []models.Student{}
	for _, s := range r.students {
		if q.Matches(s) {
			out = append(out, s)
		}
	}
	return out, nil
}
