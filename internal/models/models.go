package models

import (
	"time"

	"github.com/lib/pq"
)

// Student is a candidate profile. The placement core only reads it.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FullName           string  `gorm:"not null" json:"full_name"`
	RegistrationNumber string  `gorm:"index" json:"registration_number"`
	RollNumber         string  `json:"roll_number"`
	CollegeEmail       string  `gorm:"uniqueIndex;not null" json:"college_email"`
	Phone              string  `json:"phone"`
	Department         string  `gorm:"index" json:"department"`
	GraduationYear     int     `gorm:"index" json:"graduation_year"`
	UGGpa              float64 `json:"ug_gpa"`
	HistoryOfArrears   int     `json:"history_of_arrears"`
	CurrentArrears     int     `json:"current_arrears"`

	// Role separates student accounts from admin accounts sharing the table.
	Role string `gorm:"default:'student';index" json:"-"`
}

const RoleStudent = "student"

// EligibilityCriteria is embedded in a JobPost. A nil bound means the
// clause is not applied; a zero arrears bound is a hard cap of zero.
type EligibilityCriteria struct {
	GraduationYear     int            `gorm:"not null" json:"graduation_year"`
	MinGPA             *float64       `json:"min_gpa,omitempty"`
	MaxArrearHistory   *int           `json:"max_arrear_history,omitempty"`
	MaxCurrentArrears  *int           `json:"max_current_arrears,omitempty"`
	AllowedDepartments pq.StringArray `gorm:"type:text[]" json:"allowed_departments"`
}

type JobPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CompanyName         string     `gorm:"not null" json:"company_name"`
	Title               string     `gorm:"not null" json:"title"`
	Description         string     `gorm:"type:text;not null" json:"description"`
	Package             string     `json:"package"`
	Role                string     `json:"role"`
	Location            string     `json:"location"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	IsActive            bool       `gorm:"not null" json:"is_active"`

	Eligibility EligibilityCriteria `gorm:"embedded;embeddedPrefix:eligibility_" json:"eligibility"`

	// Applicants are owned by the posting and removed with it.
	Applicants []Applicant `gorm:"constraint:OnDelete:CASCADE" json:"applicants"`
}

// Applicant returns the record for studentID, or nil.
func (j *JobPost) Applicant(studentID uint) *Applicant {
	for i := range j.Applicants {
		if j.Applicants[i].StudentID == studentID {
			return &j.Applicants[i]
		}
	}
	return nil
}

type RoundAttendance struct {
	RoundNumber int       `json:"round_number"`
	AttendedAt  time.Time `json:"attended_at"`
}

type Applicant struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	JobPostID uint `gorm:"not null;uniqueIndex:idx_applicant_job_student" json:"job_post_id"`
	StudentID uint `gorm:"not null;uniqueIndex:idx_applicant_job_student" json:"student_id"`

	Status         ApplicantStatus   `gorm:"type:varchar(32);not null;default:'Applied'" json:"status"`
	CurrentRound   int               `gorm:"not null;default:0" json:"current_round"`
	AttendedRounds []RoundAttendance `gorm:"serializer:json" json:"attended_rounds"`
}

type JobEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JobPostID uint      `gorm:"index" json:"job_post_id"`
	StudentID uint      `json:"student_id"`
	EventType string    `json:"event_type"`
	Details   string    `gorm:"type:text" json:"details"`
}

const (
	EventApplicantAttached      = "APPLICANT_ATTACHED"
	EventApplicantStatusChanged = "APPLICANT_STATUS_CHANGED"
)
