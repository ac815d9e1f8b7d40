package roster

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"schooltrack/internal/apierr"
)

// fakeStudentStore mirrors the Postgres repo's behavior, unique index
// included.
type fakeStudentStore struct {
	students map[string]Student
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{students: map[string]Student{}}
}

func (f *fakeStudentStore) List(_ context.Context, filter Filter) ([]Student, error) {
	var out []Student
	for _, s := range f.students {
		if !s.IsActive {
			continue
		}
		if filter.Standard != "" && s.Standard != filter.Standard {
			continue
		}
		if filter.Section != "" && s.Section != filter.Section {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RollNumber < out[j].RollNumber })
	return out, nil
}

func (f *fakeStudentStore) FindByID(_ context.Context, id string) (*Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeStudentStore) FindByClassKey(_ context.Context, rollNumber, standard, section, excludeID string) (*Student, error) {
	for _, s := range f.students {
		if s.ID == excludeID {
			continue
		}
		if s.RollNumber == rollNumber && s.Standard == standard && s.Section == section {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeStudentStore) Insert(ctx context.Context, s Student) error {
	if dup, _ := f.FindByClassKey(ctx, s.RollNumber, s.Standard, s.Section, s.ID); dup != nil {
		return apierr.New(apierr.Conflict, "student with this roll number already exists in this class")
	}
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	f.students[s.ID] = s
	return nil
}

func (f *fakeStudentStore) Update(ctx context.Context, s Student) error {
	if dup, _ := f.FindByClassKey(ctx, s.RollNumber, s.Standard, s.Section, s.ID); dup != nil {
		return apierr.New(apierr.Conflict, "another student has this roll number in this class")
	}
	s.UpdatedAt = time.Now().UTC()
	f.students[s.ID] = s
	return nil
}

func (f *fakeStudentStore) SetActive(_ context.Context, id string, active bool) error {
	s := f.students[id]
	s.IsActive = active
	f.students[id] = s
	return nil
}

func mustAdd(t *testing.T, svc *Service, name, roll, standard, section string) *Student {
	t.Helper()
	st, err := svc.Add(context.Background(), AddInput{Name: name, RollNumber: roll, Standard: standard, Section: section})
	if err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	return st
}

func TestAddMissingFields(t *testing.T) {
	svc := NewService(newFakeStudentStore())
	_, err := svc.Add(context.Background(), AddInput{Name: "A"})
	if !apierr.IsKind(err, apierr.BadRequest) {
		t.Fatalf("expected BadRequest, got %v", err)
	}
}

func TestAddDuplicateClassKey(t *testing.T) {
	svc := NewService(newFakeStudentStore())
	mustAdd(t, svc, "A", "1", "10", "A")
	_, err := svc.Add(context.Background(), AddInput{Name: "B", RollNumber: "1", Standard: "10", Section: "A"})
	if !apierr.IsKind(err, apierr.Conflict) {
		t.Errorf("expected Conflict, got %v", err)
	}
}

func TestGetByIDInactive(t *testing.T) {
	svc := NewService(newFakeStudentStore())
	st := mustAdd(t, svc, "A", "1", "10", "A")
	if err := svc.Deactivate(context.Background(), st.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err := svc.GetByID(context.Background(), st.ID)
	if !apierr.IsKind(err, apierr.NotFound) {
		t.Errorf("expected NotFound for inactive student, got %v", err)
	}
}

func TestGetByIDBadFormat(t *testing.T) {
	svc := NewService(newFakeStudentStore())
	_, err := svc.GetByID(context.Background(), "not-a-uuid")
	if !apierr.IsKind(err, apierr.BadRequest) {
		t.Errorf("expected BadRequest, got %v", err)
	}
}

func TestListOrdersByRollNumber(t *testing.T) {
	svc := NewService(newFakeStudentStore())
	mustAdd(t, svc, "B", "2", "10", "A")
	mustAdd(t, svc, "A", "1", "10", "A")
	mustAdd(t, svc, "C", "3", "9", "B")

	students, err := svc.List(context.Background(), Filter{Standard: "10", Section: "A"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(students) != 2 || students[0].RollNumber != "1" || students[1].RollNumber != "2" {
		t.Errorf("unexpected listing: %+v", students)
	}
}

func TestUpdatePartialMerge(t *testing.T) {
	svc := NewService(newFakeStudentStore())
	st := mustAdd(t, svc, "A", "1", "10", "A")

	newName := "A. Renamed"
	updated, err := svc.Update(context.Background(), st.ID, UpdateInput{Name: &newName})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != newName {
		t.Errorf("name = %q, want %q", updated.Name, newName)
	}
	if updated.RollNumber != "1" || updated.Standard != "10" || updated.Section != "A" || !updated.IsActive {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestUpdateClassKeyCollision(t *testing.T) {
	svc := NewService(newFakeStudentStore())
	mustAdd(t, svc, "A", "1", "10", "A")
	st := mustAdd(t, svc, "B", "2", "10", "A")

	roll, standard, section := "1", "10", "A"
	_, err := svc.Update(context.Background(), st.ID, UpdateInput{
		RollNumber: &roll, Standard: &standard, Section: &section,
	})
	if !apierr.IsKind(err, apierr.Conflict) {
		t.Errorf("expected Conflict, got %v", err)
	}
}

func TestUpdateSameClassKeyNoConflict(t *testing.T) {
	svc := NewService(newFakeStudentStore())
	st := mustAdd(t, svc, "A", "1", "10", "A")

	// Re-submitting the student's own triple must not trip the check.
	roll, standard, section := "1", "10", "A"
	if _, err := svc.Update(context.Background(), st.ID, UpdateInput{
		RollNumber: &roll, Standard: &standard, Section: &section,
	}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUpdateIsActiveOnlyExplicit(t *testing.T) {
	svc := NewService(newFakeStudentStore())
	st := mustAdd(t, svc, "A", "1", "10", "A")
	if err := svc.Deactivate(context.Background(), st.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	name := "A2"
	updated, err := svc.Update(context.Background(), st.ID, UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.IsActive {
		t.Error("isActive flipped without being provided")
	}

	active := true
	updated, err = svc.Update(context.Background(), st.ID, UpdateInput{IsActive: &active})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.IsActive {
		t.Error("explicit isActive=true was not applied")
	}
}

func TestUpdateUnknownID(t *testing.T) {
	svc := NewService(newFakeStudentStore())
	name := "X"
	_, err := svc.Update(context.Background(), uuid.NewString(), UpdateInput{Name: &name})
	if !apierr.IsKind(err, apierr.NotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestDeactivateIdempotent(t *testing.T) {
	store := newFakeStudentStore()
	svc := NewService(store)
	st := mustAdd(t, svc, "A", "1", "10", "A")

	for i := 0; i < 2; i++ {
		if err := svc.Deactivate(context.Background(), st.ID); err != nil {
			t.Fatalf("deactivate call %d: %v", i+1, err)
		}
	}
	if store.students[st.ID].IsActive {
		t.Error("student still active")
	}
}
