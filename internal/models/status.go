package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// ApplicantStatus is the closed set of hiring stages an applicant can be in.
type ApplicantStatus string

const (
	StatusApplied     ApplicantStatus = "Applied"
	StatusEligible    ApplicantStatus = "Eligible"
	StatusNotEligible ApplicantStatus = "Not Eligible"
	StatusRound1      ApplicantStatus = "Round 1"
	StatusRound2      ApplicantStatus = "Round 2"
	StatusHRRound     ApplicantStatus = "HR Round"
	StatusHired       ApplicantStatus = "Hired"
	StatusRejected    ApplicantStatus = "Rejected"
)

// HRRoundNumber is the round number logged for the HR round. It is not
// written to CurrentRound.
const HRRoundNumber = 3

type statusInfo struct {
	terminal bool
	round    int  // round number logged on entry, 0 for non-round states
	numbered bool // entry sets CurrentRound
}

var statusTable = map[ApplicantStatus]statusInfo{
	StatusApplied:     {},
	StatusEligible:    {},
	StatusNotEligible: {terminal: true},
	StatusRound1:      {round: 1, numbered: true},
	StatusRound2:      {round: 2, numbered: true},
	StatusHRRound:     {round: HRRoundNumber},
	StatusHired:       {terminal: true},
	StatusRejected:    {terminal: true},
}

// Statuses lists every status in pipeline order.
var Statuses = []ApplicantStatus{
	StatusApplied, StatusEligible, StatusNotEligible,
	StatusRound1, StatusRound2, StatusHRRound,
	StatusHired, StatusRejected,
}

func (s ApplicantStatus) Valid() bool {
	_, ok := statusTable[s]
	return ok
}

func (s ApplicantStatus) IsTerminal() bool {
	return statusTable[s].terminal
}

// IsRound reports whether entering s is logged in AttendedRounds.
func (s ApplicantStatus) IsRound() bool {
	return statusTable[s].round > 0
}

// RoundNumber is the number logged when entering s, 0 if s is not a round.
func (s ApplicantStatus) RoundNumber() int {
	return statusTable[s].round
}

// IsNumberedRound reports whether entering s moves CurrentRound.
func (s ApplicantStatus) IsNumberedRound() bool {
	return statusTable[s].numbered
}

// ParseApplicantStatus accepts the canonical names case-insensitively and
// tolerates underscores or hyphens in place of spaces ("round_1", "hr-round").
func ParseApplicantStatus(raw string) (ApplicantStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	normalized = strings.Join(strings.Fields(normalized), " ")
	for _, s := range Statuses {
		if strings.ToLower(string(s)) == normalized {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown applicant status %q", raw)
}

func (s ApplicantStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid applicant status %q", string(s))
	}
	return string(s), nil
}

func (s *ApplicantStatus) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*s = StatusApplied
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ApplicantStatus", value)
	}
	parsed, err := ParseApplicantStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
