package store

import "context"

// schema is applied idempotently at startup. The two unique indexes are
// the actual correctness guarantee against write races; service-level
// duplicate checks only exist for friendlier error messages.
//
// Note the roster unique index covers inactive students too: a
// deactivated student's (roll_number, standard, section) cannot be
// reused by a new record.
//
// attendance_records.subject is NULL when attendance has no subject
// dimension; the unique index coalesces it so two NULL-subject marks
// for the same student and day still collide.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'teacher',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS students (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL,
	roll_number TEXT NOT NULL,
	standard    TEXT NOT NULL,
	section     TEXT NOT NULL,
	is_active   BOOLEAN NOT NULL DEFAULT TRUE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_students_class_key
	ON students (roll_number, standard, section);

CREATE TABLE IF NOT EXISTS attendance_records (
	id         UUID PRIMARY KEY,
	student_id UUID NOT NULL REFERENCES students(id),
	date       DATE NOT NULL,
	standard   TEXT NOT NULL,
	section    TEXT NOT NULL,
	subject    TEXT,
	status     TEXT NOT NULL,
	marked_by  UUID NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_key
	ON attendance_records (student_id, date, COALESCE(subject, ''));

CREATE INDEX IF NOT EXISTS idx_attendance_date
	ON attendance_records (date);

CREATE INDEX IF NOT EXISTS idx_attendance_class
	ON attendance_records (standard, section);
`

// EnsureSchema creates tables and indexes if they do not exist.
func (d *DB) EnsureSchema(ctx context.Context) error {
	_, err := d.Client.ExecContext(ctx, schema)
	return err
}
