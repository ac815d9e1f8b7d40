package attendance

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"schooltrack/internal/apierr"
)

// Ledger is the slice of the attendance store the service needs.
type Ledger interface {
	UpsertBatch(ctx context.Context, recs []Record) (inserted, updated int, err error)
	Query(ctx context.Context, f QueryFilter, limit, offset int) ([]RecordWithStudent, error)
	Count(ctx context.Context, f QueryFilter) (int, error)
	ListRange(ctx context.Context, studentID string, start, end time.Time, subject *string) ([]Record, error)
	FindStudentSummary(ctx context.Context, id string) (*StudentSummary, error)
}

const defaultPageLimit = 50

// Service implements bulk marking, filtered retrieval and reporting.
type Service struct {
	ledger Ledger
}

// NewService creates an attendance service.
func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

// MarkRecord is one student's status within a bulk mark.
type MarkRecord struct {
	StudentID string `json:"studentId"`
	Status    Status `json:"status"`
}

// MarkInput is a class's attendance for one day, optionally scoped to a
// subject.
type MarkInput struct {
	Date     string
	Standard string
	Section  string
	Subject  *string
	Records  []MarkRecord
}

// MarkResult reports how the batch was applied. Processed counts the
// records actually attempted, not the input length.
type MarkResult struct {
	Processed int `json:"processed"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
}

// MarkBulk upserts one record per valid entry, keyed by
// (studentId, date, subject). Records with an unparseable student id or
// an unknown status are skipped, not errored. The batch is submitted as
// a single atomic operation.
func (s *Service) MarkBulk(ctx context.Context, markedBy string, in MarkInput) (*MarkResult, error) {
	fields := map[string]string{}
	if in.Date == "" {
		fields["date"] = "required"
	}
	if in.Standard == "" {
		fields["standard"] = "required"
	}
	if in.Section == "" {
		fields["section"] = "required"
	}
	if len(in.Records) == 0 {
		fields["records"] = "must be a non-empty array"
	}
	if len(fields) > 0 {
		return nil, apierr.New(apierr.BadRequest, "missing required fields (date, standard, section, records array)").WithFields(fields)
	}

	parsed, err := ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	day := NormalizeDate(parsed)
	subject := normalizeSubject(in.Subject)

	recs := make([]Record, 0, len(in.Records))
	for _, mr := range in.Records {
		if !validID(mr.StudentID) || !mr.Status.Valid() {
			slog.Warn("invalid attendance record skipped",
				"studentId", mr.StudentID, "status", string(mr.Status))
			continue
		}
		recs = append(recs, Record{
			ID:        uuid.NewString(),
			StudentID: mr.StudentID,
			Date:      day,
			Standard:  in.Standard,
			Section:   in.Section,
			Subject:   subject,
			Status:    mr.Status,
			MarkedBy:  markedBy,
		})
	}
	if len(recs) == 0 {
		return nil, apierr.New(apierr.BadRequest, "no valid attendance records to process")
	}

	inserted, updated, err := s.ledger.UpsertBatch(ctx, recs)
	if err != nil {
		return nil, err
	}
	return &MarkResult{Processed: len(recs), Inserted: inserted, Updated: updated}, nil
}

// QueryInput filters a ledger read. Omitting Subject matches records
// without a subject dimension; it does not mean "any subject".
type QueryInput struct {
	Date      string
	Standard  string
	Section   string
	Subject   *string
	StudentID string
	Page      int
	Limit     int
}

// QueryResult is one page of ledger records with pagination bookkeeping.
type QueryResult struct {
	TotalRecords int                 `json:"totalRecords"`
	CurrentPage  int                 `json:"currentPage"`
	TotalPages   int                 `json:"totalPages"`
	Attendance   []RecordWithStudent `json:"attendance"`
}

// Query returns matching records, date descending, paginated. Pages past
// the end yield an empty list, not an error.
func (s *Service) Query(ctx context.Context, in QueryInput) (*QueryResult, error) {
	f := QueryFilter{
		Standard:  in.Standard,
		Section:   in.Section,
		Subject:   normalizeSubject(in.Subject),
		StudentID: in.StudentID,
	}
	if in.StudentID != "" && !validID(in.StudentID) {
		return nil, apierr.New(apierr.BadRequest, "invalid student id format provided for filtering")
	}
	if in.Date != "" {
		parsed, err := ParseDate(in.Date)
		if err != nil {
			return nil, err
		}
		day := NormalizeDate(parsed)
		f.Date = &day
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}

	total, err := s.ledger.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	records, err := s.ledger.Query(ctx, f, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []RecordWithStudent{}
	}
	return &QueryResult{
		TotalRecords: total,
		CurrentPage:  page,
		TotalPages:   int(math.Ceil(float64(total) / float64(limit))),
		Attendance:   records,
	}, nil
}

// ReportInput bounds a per-student report. Both dates are required and
// the range includes both endpoints.
type ReportInput struct {
	StartDate string
	EndDate   string
	Subject   *string
}

// ReportStats aggregates a student's records in range. Late counts
// toward present for the percentage.
type ReportStats struct {
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	Subject      string  `json:"subject"`
	TotalRecords int     `json:"totalRecords"`
	Present      int     `json:"present"`
	Absent       int     `json:"absent"`
	Percentage   float64 `json:"percentage"`
}

// ReportResult is the full report payload.
type ReportResult struct {
	Student StudentSummary `json:"student"`
	Report  ReportStats    `json:"report"`
	Details []Record       `json:"details"`
}

// StudentReport aggregates one student's attendance over a date range.
func (s *Service) StudentReport(ctx context.Context, studentID string, in ReportInput) (*ReportResult, error) {
	if !validID(studentID) {
		return nil, apierr.New(apierr.BadRequest, "invalid student id format")
	}
	fields := map[string]string{}
	if in.StartDate == "" {
		fields["startDate"] = "required"
	}
	if in.EndDate == "" {
		fields["endDate"] = "required"
	}
	if len(fields) > 0 {
		return nil, apierr.New(apierr.BadRequest, "please provide both startDate and endDate (YYYY-MM-DD)").WithFields(fields)
	}

	startParsed, err := ParseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	endParsed, err := ParseDate(in.EndDate)
	if err != nil {
		return nil, err
	}
	start := NormalizeDate(startParsed)
	// Push the upper bound one day out so the end date itself is included.
	end := NormalizeDate(endParsed).AddDate(0, 0, 1)
	subject := normalizeSubject(in.Subject)

	records, err := s.ledger.ListRange(ctx, studentID, start, end, subject)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apierr.New(apierr.NotFound, "no attendance records found for this student in the specified range")
	}

	student, err := s.ledger.FindStudentSummary(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, apierr.New(apierr.NotFound, "student associated with attendance not found")
	}

	total := len(records)
	present := 0
	for _, rec := range records {
		if rec.Status == StatusPresent || rec.Status == StatusLate {
			present++
		}
	}

	subjectLabel := "All (Default)"
	if subject != nil {
		subjectLabel = *subject
	}
	return &ReportResult{
		Student: *student,
		Report: ReportStats{
			StartDate:    in.StartDate,
			EndDate:      in.EndDate,
			Subject:      subjectLabel,
			TotalRecords: total,
			Present:      present,
			Absent:       total - present,
			Percentage:   round2(float64(present) / float64(total) * 100),
		},
		Details: records,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// normalizeSubject maps an absent or blank subject to nil, the ledger's
// "no subject dimension" marker.
func normalizeSubject(subject *string) *string {
	if subject == nil || *subject == "" {
		return nil
	}
	return subject
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
