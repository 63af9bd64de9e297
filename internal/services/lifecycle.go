package services

import (
	"fmt"
	"time"

	"github.com/justsurfingit/placement-tracker/internal/apperrors"
	"github.com/justsurfingit/placement-tracker/internal/models"
)

func newApplicant(studentID uint) models.Applicant {
	return models.Applicant{
		StudentID:      studentID,
		Status:         models.StatusApplied,
		CurrentRound:   0,
		AttendedRounds: []models.RoundAttendance{},
	}
}

// applyTransition moves a to status `to`. It reports false when a is already
// in `to`; nothing is logged in that case. A terminal record is never
// modified. Round order is not checked: Round 2 may follow Applied.
func applyTransition(a *models.Applicant, to models.ApplicantStatus, now time.Time) (bool, error) {
	if !to.Valid() {
		return false, apperrors.InvalidInput(fmt.Sprintf("unknown applicant status %q", string(to)), nil)
	}
	if a.Status.IsTerminal() {
		return false, apperrors.InvalidTransition(
			fmt.Sprintf("applicant is in terminal status %q", string(a.Status)), nil)
	}
	if a.Status == to {
		return false, nil
	}

	if to.IsRound() {
		rounds := make([]models.RoundAttendance, len(a.AttendedRounds), len(a.AttendedRounds)+1)
		copy(rounds, a.AttendedRounds)
		a.AttendedRounds = append(rounds, models.RoundAttendance{
			RoundNumber: to.RoundNumber(),
			AttendedAt:  now,
		})
	}
	if to.IsNumberedRound() {
		a.CurrentRound = to.RoundNumber()
	}
	a.Status = to
	return true, nil
}
