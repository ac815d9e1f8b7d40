package roster

import (
	"context"

	"github.com/google/uuid"

	"schooltrack/internal/apierr"
)

// StudentStore is the slice of the roster store the service needs.
type StudentStore interface {
	List(ctx context.Context, f Filter) ([]Student, error)
	FindByID(ctx context.Context, id string) (*Student, error)
	FindByClassKey(ctx context.Context, rollNumber, standard, section, excludeID string) (*Student, error)
	Insert(ctx context.Context, s Student) error
	Update(ctx context.Context, s Student) error
	SetActive(ctx context.Context, id string, active bool) error
}

// AddInput carries the fields required to enroll a student.
type AddInput struct {
	Name       string
	RollNumber string
	Standard   string
	Section    string
}

// UpdateInput carries a partial update; nil fields are left unchanged.
// IsActive changes only when explicitly provided.
type UpdateInput struct {
	Name       *string
	RollNumber *string
	Standard   *string
	Section    *string
	IsActive   *bool
}

// Service implements roster CRUD with uniqueness and soft-delete rules.
type Service struct {
	students StudentStore
}

// NewService creates a roster service.
func NewService(students StudentStore) *Service {
	return &Service{students: students}
}

// List returns active students matching the filter, roll number ascending.
func (s *Service) List(ctx context.Context, f Filter) ([]Student, error) {
	return s.students.List(ctx, f)
}

// GetByID returns an active student.
func (s *Service) GetByID(ctx context.Context, id string) (*Student, error) {
	if !validID(id) {
		return nil, apierr.New(apierr.BadRequest, "invalid student id format")
	}
	st, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil || !st.IsActive {
		return nil, apierr.New(apierr.NotFound, "student not found or inactive")
	}
	return st, nil
}

// Add enrolls a student after checking the class-key uniqueness rule.
func (s *Service) Add(ctx context.Context, in AddInput) (*Student, error) {
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "required"
	}
	if in.RollNumber == "" {
		fields["rollNumber"] = "required"
	}
	if in.Standard == "" {
		fields["standard"] = "required"
	}
	if in.Section == "" {
		fields["section"] = "required"
	}
	if len(fields) > 0 {
		return nil, apierr.New(apierr.BadRequest, "please provide all required student details").WithFields(fields)
	}

	if existing, err := s.students.FindByClassKey(ctx, in.RollNumber, in.Standard, in.Section, ""); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apierr.New(apierr.Conflict, "student with this roll number already exists in this class")
	}

	st := Student{
		ID:         uuid.NewString(),
		Name:       in.Name,
		RollNumber: in.RollNumber,
		Standard:   in.Standard,
		Section:    in.Section,
		IsActive:   true,
	}
	if err := s.students.Insert(ctx, st); err != nil {
		return nil, err
	}
	return s.students.FindByID(ctx, st.ID)
}

// Update merges the provided fields into the student. When the full
// class key is supplied and differs from the current one, uniqueness is
// re-checked against other students first.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Student, error) {
	if !validID(id) {
		return nil, apierr.New(apierr.BadRequest, "invalid student id format")
	}
	st, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, apierr.New(apierr.NotFound, "student not found")
	}

	if in.RollNumber != nil && in.Standard != nil && in.Section != nil &&
		(st.RollNumber != *in.RollNumber || st.Standard != *in.Standard || st.Section != *in.Section) {
		other, err := s.students.FindByClassKey(ctx, *in.RollNumber, *in.Standard, *in.Section, id)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, apierr.New(apierr.Conflict, "another student has this roll number in this class")
		}
	}

	if in.Name != nil {
		st.Name = *in.Name
	}
	if in.RollNumber != nil {
		st.RollNumber = *in.RollNumber
	}
	if in.Standard != nil {
		st.Standard = *in.Standard
	}
	if in.Section != nil {
		st.Section = *in.Section
	}
	if in.IsActive != nil {
		st.IsActive = *in.IsActive
	}

	if err := s.students.Update(ctx, *st); err != nil {
		return nil, err
	}
	return s.students.FindByID(ctx, id)
}

// Deactivate soft-deletes a student. Calling it on an already inactive
// student succeeds again.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	if !validID(id) {
		return apierr.New(apierr.BadRequest, "invalid student id format")
	}
	st, err := s.students.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if st == nil {
		return apierr.New(apierr.NotFound, "student not found")
	}
	return s.students.SetActive(ctx, id, false)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
