package attendance

import (
	"time"

	"schooltrack/internal/apierr"
)

// Status is the per-day attendance outcome.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusLate    Status = "Late"
)

// Valid returns true when the status is a supported value.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	default:
		return false
	}
}

// Record is one attendance ledger entry, unique per (student, date,
// subject). Standard and section are copied from the student at marking
// time and are not re-synced if the student later moves classes.
type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	Date      time.Time `json:"date"`
	Standard  string    `json:"standard"`
	Section   string    `json:"section"`
	Subject   *string   `json:"subject"`
	Status    Status    `json:"status"`
	MarkedBy  string    `json:"markedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StudentRef is the resolved student summary attached to query results.
type StudentRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
}

// RecordWithStudent is a ledger entry with its student reference resolved.
type RecordWithStudent struct {
	Record
	Student StudentRef `json:"student"`
}

// StudentSummary carries the student fields a report includes.
type StudentSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
	Standard   string `json:"standard"`
	Section    string `json:"section"`
}

// NormalizeDate collapses a timestamp to its calendar day at UTC
// midnight. All marks for the same nominal day share one key regardless
// of the input's time component.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// ParseDate accepts a calendar day or a full timestamp.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apierr.Newf(apierr.BadRequest, "invalid date %q, expected YYYY-MM-DD", s)
}
