package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"schooltrack/internal/apierr"
	"schooltrack/internal/store"
)

const studentCols = `id, name, roll_number, standard, section, is_active, created_at, updated_at`

// Repository persists students in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List returns active students, roll number ascending.
func (r *Repository) List(ctx context.Context, f Filter) ([]Student, error) {
	clauses := []string{"is_active = TRUE"}
	args := []any{}
	if f.Standard != "" {
		args = append(args, f.Standard)
		clauses = append(clauses, fmt.Sprintf("standard = $%d", len(args)))
	}
	if f.Section != "" {
		args = append(args, f.Section)
		clauses = append(clauses, fmt.Sprintf("section = $%d", len(args)))
	}
	query := `SELECT ` + studentCols + ` FROM students WHERE ` +
		strings.Join(clauses, " AND ") + ` ORDER BY roll_number ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var s Student
		if err := scanStudent(rows.Scan, &s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// FindByID returns nil when no student matches, regardless of active state.
func (r *Repository) FindByID(ctx context.Context, id string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+studentCols+` FROM students WHERE id = $1`, id)
	var s Student
	if err := scanStudent(row.Scan, &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// FindByClassKey looks up the (roll number, standard, section) triple,
// optionally excluding one student id. Used as the advisory duplicate
// pre-check; the unique index is the real guarantee.
func (r *Repository) FindByClassKey(ctx context.Context, rollNumber, standard, section, excludeID string) (*Student, error) {
	query := `SELECT ` + studentCols + ` FROM students
		WHERE roll_number = $1 AND standard = $2 AND section = $3`
	args := []any{rollNumber, standard, section}
	if excludeID != "" {
		query += ` AND id <> $4`
		args = append(args, excludeID)
	}
	row := r.db.QueryRowContext(ctx, query, args...)
	var s Student
	if err := scanStudent(row.Scan, &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Insert writes a new student.
func (r *Repository) Insert(ctx context.Context, s Student) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (id, name, roll_number, standard, section, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.ID, s.Name, s.RollNumber, s.Standard, s.Section, s.IsActive)
	if store.IsUniqueViolation(err) {
		return apierr.New(apierr.Conflict, "student with this roll number already exists in this class")
	}
	return err
}

// Update rewrites the mutable fields and bumps updated_at.
func (r *Repository) Update(ctx context.Context, s Student) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET name = $2, roll_number = $3, standard = $4, section = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1
	`, s.ID, s.Name, s.RollNumber, s.Standard, s.Section, s.IsActive)
	if store.IsUniqueViolation(err) {
		return apierr.New(apierr.Conflict, "another student has this roll number in this class")
	}
	return err
}

// SetActive flips the soft-delete flag.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE students SET is_active = $2, updated_at = NOW() WHERE id = $1
	`, id, active)
	return err
}

func scanStudent(scan func(...any) error, s *Student) error {
	return scan(&s.ID, &s.Name, &s.RollNumber, &s.Standard, &s.Section, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
}
