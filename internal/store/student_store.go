package store

import (
	"context"

	"github.com/justsurfingit/placement-tracker/internal/apperrors"
	"github.com/justsurfingit/placement-tracker/internal/eligibility"
	"github.com/justsurfingit/placement-tracker/internal/models"
	"gorm.io/gorm"
)

type StudentStore struct {
	DB *gorm.DB
}

func NewStudentStore(db *gorm.DB) *StudentStore {
	return &StudentStore{DB: db}
}

// students limits queries to student accounts.
func students(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Student{}).Where("role = ?", models.RoleStudent)
}

func (s *StudentStore) Get(ctx context.Context, id uint) (*models.Student, error) {
	var st models.Student
	if err := s.DB.WithContext(ctx).Scopes(students).First(&st, id).Error; err != nil {
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}
	return &st, nil
}

// FindEligible returns a snapshot of the students matching q, ordered by id.
func (s *StudentStore) FindEligible(ctx context.Context, q eligibility.Query) ([]models.Student, error) {
	var out []models.Student
	err := s.DB.WithContext(ctx).
		Scopes(students, q.Scope()).
		Select("id", "full_name", "registration_number", "roll_number", "college_email", "phone",
			"department", "graduation_year", "ug_gpa", "history_of_arrears", "current_arrears").
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, apperrors.Internal("failed to query eligible students", err)
	}
	return out, nil
}
