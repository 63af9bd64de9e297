package dtos

import (
	"strings"
	"time"

	"github.com/justsurfingit/placement-tracker/internal/models"
	"github.com/lib/pq"
)

type EligibilityRequest struct {
	GraduationYear     *int     `json:"graduation_year" binding:"required"`
	MinGPA             *float64 `json:"min_gpa"`
	MaxArrearHistory   *int     `json:"max_arrear_history"`
	MaxCurrentArrears  *int     `json:"max_current_arrears"`
	AllowedDepartments []string `json:"allowed_departments"`
}

// JobCreationRequest is the body of both create and update.
type JobCreationRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`

	// Optional Fields
	Package             string     `json:"package"`
	Role                string     `json:"role"`
	Location            string     `json:"location"`
	ApplicationDeadline *time.Time `json:"application_deadline"`
	IsActive            *bool      `json:"is_active"` // Defaults to true if omitted

	Eligibility EligibilityRequest `json:"eligibility"`
}

// Criteria converts the request into stored criteria. Department codes are
// trimmed and de-duplicated, keeping first-seen order.
func (r EligibilityRequest) Criteria() models.EligibilityCriteria {
	c := models.EligibilityCriteria{
		MinGPA:             r.MinGPA,
		MaxArrearHistory:   r.MaxArrearHistory,
		MaxCurrentArrears:  r.MaxCurrentArrears,
		AllowedDepartments: pq.StringArray{},
	}
	if r.GraduationYear != nil {
		c.GraduationYear = *r.GraduationYear
	}
	seen := make(map[string]bool, len(r.AllowedDepartments))
	for _, d := range r.AllowedDepartments {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		c.AllowedDepartments = append(c.AllowedDepartments, d)
	}
	return c
}

type AttachApplicantRequest struct {
	StudentID uint `json:"student_id" binding:"required"`
}

type UpdateApplicantStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
