// Package eligibility turns a posting's criteria into a student predicate.
//
// The same Query is evaluated two ways: Matches filters an in-memory pool,
// Scope narrows a gorm query so the database does the filtering. Both apply
// identical clauses.
package eligibility

import (
	"github.com/justsurfingit/placement-tracker/internal/apperrors"
	"github.com/justsurfingit/placement-tracker/internal/models"
	"gorm.io/gorm"
)

// Query is the predicate derived from EligibilityCriteria. A nil field is a
// clause that is not applied.
type Query struct {
	GraduationYear    int
	MinGPA            *float64
	MaxArrearHistory  *int
	MaxCurrentArrears *int
	Departments       []string
}

// Validate rejects criteria the resolver cannot turn into a query.
func Validate(c models.EligibilityCriteria) error {
	if c.GraduationYear <= 0 {
		return apperrors.InvalidCriteria("graduation year is required", nil)
	}
	if c.MinGPA != nil && *c.MinGPA < 0 {
		return apperrors.InvalidCriteria("minimum GPA cannot be negative", nil)
	}
	if c.MaxArrearHistory != nil && *c.MaxArrearHistory < 0 {
		return apperrors.InvalidCriteria("max arrear history cannot be negative", nil)
	}
	if c.MaxCurrentArrears != nil && *c.MaxCurrentArrears < 0 {
		return apperrors.InvalidCriteria("max current arrears cannot be negative", nil)
	}
	return nil
}

// BuildQuery validates c and derives its predicate.
//
// A MinGPA of zero is dropped; Validate has already rejected negatives. An
// arrears bound of zero stays active and admits only students with no
// arrears.
func BuildQuery(c models.EligibilityCriteria) (Query, error) {
	if err := Validate(c); err != nil {
		return Query{}, err
	}
	q := Query{GraduationYear: c.GraduationYear}
	if c.MinGPA != nil && *c.MinGPA > 0 {
		v := *c.MinGPA
		q.MinGPA = &v
	}
	if c.MaxArrearHistory != nil {
		v := *c.MaxArrearHistory
		q.MaxArrearHistory = &v
	}
	if c.MaxCurrentArrears != nil {
		v := *c.MaxCurrentArrears
		q.MaxCurrentArrears = &v
	}
	if len(c.AllowedDepartments) > 0 {
		q.Departments = append([]string(nil), c.AllowedDepartments...)
	}
	return q, nil
}

func (q Query) Matches(s models.Student) bool {
	if s.GraduationYear != q.GraduationYear {
		return false
	}
	if q.MinGPA != nil && s.UGGpa < *q.MinGPA {
		return false
	}
	if q.MaxArrearHistory != nil && s.HistoryOfArrears > *q.MaxArrearHistory {
		return false
	}
	if q.MaxCurrentArrears != nil && s.CurrentArrears > *q.MaxCurrentArrears {
		return false
	}
	if len(q.Departments) > 0 && !contains(q.Departments, s.Department) {
		return false
	}
	return true
}

// Scope returns a gorm scope applying the predicate to the students table.
func (q Query) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("graduation_year = ?", q.GraduationYear)
		if q.MinGPA != nil {
			db = db.Where("ug_gpa >= ?", *q.MinGPA)
		}
		if q.MaxArrearHistory != nil {
			db = db.Where("history_of_arrears <= ?", *q.MaxArrearHistory)
		}
		if q.MaxCurrentArrears != nil {
			db = db.Where("current_arrears <= ?", *q.MaxCurrentArrears)
		}
		if len(q.Departments) > 0 {
			db = db.Where("department IN ?", q.Departments)
		}
		return db
	}
}

// Resolve filters pool down to the students matching c, keeping pool order.
func Resolve(c models.EligibilityCriteria, pool []models.Student) ([]models.Student, error) {
	q, err := BuildQuery(c)
	if err != nil {
		return nil, err
	}
	matched := make([]models.Student, 0, len(pool))
	for _, s := range pool {
		if q.Matches(s) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
