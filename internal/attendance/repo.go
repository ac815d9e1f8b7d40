package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"schooltrack/internal/apierr"
	"schooltrack/internal/store"
)

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// UpsertBatch writes the whole batch in one transaction, keyed by
// (student_id, date, subject). Existing rows get status, marked_by and
// the class snapshot overwritten. The (xmax = 0) check tells freshly
// inserted rows from updated ones.
func (r *Repository) UpsertBatch(ctx context.Context, recs []Record) (inserted, updated int, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attendance_records (id, student_id, date, standard, section, subject, status, marked_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (student_id, date, COALESCE(subject, '')) DO UPDATE SET
			status = EXCLUDED.status,
			marked_by = EXCLUDED.marked_by,
			standard = EXCLUDED.standard,
			section = EXCLUDED.section,
			updated_at = NOW()
		RETURNING (xmax = 0)
	`)
	if err != nil {
		return 0, 0, err
	}
	defer stmt.Close()

	for _, rec := range recs {
		var fresh bool
		if err = stmt.QueryRowContext(ctx,
			rec.ID, rec.StudentID, rec.Date, rec.Standard, rec.Section, rec.Subject, rec.Status, rec.MarkedBy,
		).Scan(&fresh); err != nil {
			if store.IsUniqueViolation(err) {
				err = apierr.Wrap(apierr.Conflict, "duplicate attendance record conflict during bulk write", err)
			}
			return 0, 0, err
		}
		if fresh {
			inserted++
		} else {
			updated++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, err
	}
	return inserted, updated, nil
}

// QueryFilter narrows ledger reads. A nil Subject matches records
// without a subject dimension, not any subject.
type QueryFilter struct {
	Date      *time.Time
	Standard  string
	Section   string
	Subject   *string
	StudentID string
}

func (f QueryFilter) where() (string, []any) {
	clauses := []string{}
	args := []any{}
	if f.Date != nil {
		args = append(args, *f.Date)
		clauses = append(clauses, fmt.Sprintf("a.date = $%d", len(args)))
	}
	if f.Standard != "" {
		args = append(args, f.Standard)
		clauses = append(clauses, fmt.Sprintf("a.standard = $%d", len(args)))
	}
	if f.Section != "" {
		args = append(args, f.Section)
		clauses = append(clauses, fmt.Sprintf("a.section = $%d", len(args)))
	}
	if f.Subject != nil {
		args = append(args, *f.Subject)
		clauses = append(clauses, fmt.Sprintf("a.subject = $%d", len(args)))
	} else {
		clauses = append(clauses, "a.subject IS NULL")
	}
	if f.StudentID != "" {
		args = append(args, f.StudentID)
		clauses = append(clauses, fmt.Sprintf("a.student_id = $%d", len(args)))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Query returns a page of records, date descending, each with the
// student's name and roll number resolved.
func (r *Repository) Query(ctx context.Context, f QueryFilter, limit, offset int) ([]RecordWithStudent, error) {
	where, args := f.where()
	query := `
		SELECT a.id, a.student_id, a.date, a.standard, a.section, a.subject, a.status, a.marked_by,
		       a.created_at, a.updated_at, s.name, s.roll_number
		FROM attendance_records a
		JOIN students s ON s.id = a.student_id` + where +
		fmt.Sprintf(" ORDER BY a.date DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []RecordWithStudent
	for rows.Next() {
		var rec RecordWithStudent
		if err := rows.Scan(
			&rec.ID, &rec.StudentID, &rec.Date, &rec.Standard, &rec.Section, &rec.Subject, &rec.Status,
			&rec.MarkedBy, &rec.CreatedAt, &rec.UpdatedAt, &rec.Student.Name, &rec.Student.RollNumber,
		); err != nil {
			return nil, err
		}
		rec.Student.ID = rec.StudentID
		res = append(res, rec)
	}
	return res, rows.Err()
}

// Count returns how many records match the filter.
func (r *Repository) Count(ctx context.Context, f QueryFilter) (int, error) {
	where, args := f.where()
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance_records a`+where, args...)
	var n int
	return n, row.Scan(&n)
}

// ListRange returns a student's records with start <= date < end, date
// ascending. A nil subject matches records without one.
func (r *Repository) ListRange(ctx context.Context, studentID string, start, end time.Time, subject *string) ([]Record, error) {
	query := `
		SELECT id, student_id, date, standard, section, subject, status, marked_by, created_at, updated_at
		FROM attendance_records
		WHERE student_id = $1 AND date >= $2 AND date < $3`
	args := []any{studentID, start, end}
	if subject != nil {
		args = append(args, *subject)
		query += " AND subject = $4"
	} else {
		query += " AND subject IS NULL"
	}
	query += " ORDER BY date ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.StudentID, &rec.Date, &rec.Standard, &rec.Section, &rec.Subject, &rec.Status,
			&rec.MarkedBy, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// FindStudentSummary resolves the student fields a report includes.
// Returns nil when the id no longer resolves.
func (r *Repository) FindStudentSummary(ctx context.Context, id string) (*StudentSummary, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, roll_number, standard, section FROM students WHERE id = $1
	`, id)
	var s StudentSummary
	if err := row.Scan(&s.ID, &s.Name, &s.RollNumber, &s.Standard, &s.Section); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
