package auth

import (
	"context"
	"testing"
	"time"

	"schooltrack/internal/apierr"
)

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	users map[string]User // by id
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]User{}}
}

func (f *fakeUserStore) Insert(_ context.Context, u User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return apierr.New(apierr.Conflict, "username already exists")
		}
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range f.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func newTestService(store UserStore) *Service {
	// Min bcrypt cost keeps the tests fast.
	return NewService(store, testIssuer, testKey, time.Hour, 4)
}

func TestRegisterDefaultsRole(t *testing.T) {
	svc := newTestService(newFakeUserStore())
	session, err := svc.Register(context.Background(), "alice", "pw", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if session.Role != RoleTeacher {
		t.Errorf("role = %q, want teacher", session.Role)
	}
	if session.Token == "" {
		t.Error("expected a token")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(newFakeUserStore())
	if _, err := svc.Register(context.Background(), "alice", "pw", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), "alice", "pw2", "")
	if !apierr.IsKind(err, apierr.Conflict) {
		t.Errorf("expected Conflict, got %v", err)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	svc := newTestService(newFakeUserStore())
	_, err := svc.Register(context.Background(), "", "", "")
	if !apierr.IsKind(err, apierr.BadRequest) {
		t.Fatalf("expected BadRequest, got %v", err)
	}
	var ae *apierr.Error
	if !asAPIErr(err, &ae) || ae.Fields()["username"] == "" || ae.Fields()["password"] == "" {
		t.Errorf("expected per-field details, got %v", err)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := newTestService(newFakeUserStore())
	_, err := svc.Register(context.Background(), "alice", "pw", "principal")
	if !apierr.IsKind(err, apierr.BadRequest) {
		t.Errorf("expected BadRequest, got %v", err)
	}
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)
	session, err := svc.Register(context.Background(), "alice", "secret", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	stored := store.users[session.ID]
	if stored.PasswordHash == "secret" || stored.PasswordHash == "" {
		t.Error("password must be stored as a hash")
	}
	if !CheckPassword(stored.PasswordHash, "secret") {
		t.Error("hash does not verify against the original password")
	}
}

func TestLoginGenericUnauthorized(t *testing.T) {
	svc := newTestService(newFakeUserStore())
	if _, err := svc.Register(context.Background(), "alice", "pw", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Unknown user and wrong password must be indistinguishable.
	_, errUnknown := svc.Login(context.Background(), "bob", "pw")
	_, errWrongPw := svc.Login(context.Background(), "alice", "nope")
	for _, err := range []error{errUnknown, errWrongPw} {
		if !apierr.IsKind(err, apierr.Unauthorized) {
			t.Fatalf("expected Unauthorized, got %v", err)
		}
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("messages differ: %q vs %q", errUnknown, errWrongPw)
	}
}

func TestLoginSuccess(t *testing.T) {
	svc := newTestService(newFakeUserStore())
	if _, err := svc.Register(context.Background(), "alice", "pw", RoleAdmin); err != nil {
		t.Fatalf("register: %v", err)
	}
	session, err := svc.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Role != RoleAdmin {
		t.Errorf("role = %q, want admin", session.Role)
	}
}

func TestProfileNotFound(t *testing.T) {
	svc := newTestService(newFakeUserStore())
	_, err := svc.Profile(context.Background(), "missing-id")
	if !apierr.IsKind(err, apierr.NotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func asAPIErr(err error, target **apierr.Error) bool {
	ae, ok := err.(*apierr.Error)
	if ok {
		*target = ae
	}
	return ok
}
