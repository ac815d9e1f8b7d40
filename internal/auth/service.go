package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"schooltrack/internal/apierr"
)

// UserStore is the slice of the identity store the service needs.
type UserStore interface {
	Insert(ctx context.Context, u User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

// Session is the outcome of a successful register or login.
type Session struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Token    string `json:"token"`
}

// Service verifies credentials and issues bearer tokens.
type Service struct {
	users      UserStore
	issuer     string
	signingKey string
	tokenTTL   time.Duration
	bcryptCost int
}

// NewService creates an auth service.
func NewService(users UserStore, issuer, signingKey string, tokenTTL time.Duration, bcryptCost int) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		users:      users,
		issuer:     issuer,
		signingKey: signingKey,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

// Register creates a user and returns a session. Role defaults to
// teacher when empty.
func (s *Service) Register(ctx context.Context, username, password string, role Role) (*Session, error) {
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "required"
	}
	if password == "" {
		fields["password"] = "required"
	}
	if len(fields) > 0 {
		return nil, apierr.New(apierr.BadRequest, "please provide username and password").WithFields(fields)
	}
	if role == "" {
		role = RoleTeacher
	}
	if !role.Valid() {
		return nil, apierr.Newf(apierr.BadRequest, "unsupported role %q", role).
			WithFields(map[string]string{"role": "must be admin or teacher"})
	}

	// Advisory pre-check; the unique index is the real guarantee.
	if existing, err := s.users.FindByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apierr.New(apierr.Conflict, "username already exists")
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, err
	}
	return s.session(u)
}

// Login checks credentials. The failure message never reveals whether
// the username or the password was wrong.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, apierr.New(apierr.BadRequest, "please provide username and password")
	}
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || !CheckPassword(u.PasswordHash, password) {
		return nil, apierr.New(apierr.Unauthorized, "invalid username or password")
	}
	return s.session(*u)
}

// Profile resolves a user by id, password hash excluded by the model's
// json tags.
func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apierr.New(apierr.NotFound, "user not found")
	}
	return u, nil
}

func (s *Service) session(u User) (*Session, error) {
	token, err := Issue(u.ID, u.Role, s.issuer, s.signingKey, s.tokenTTL)
	if err != nil {
		return nil, apierr.Wrap(apierr.Internal, "token issue failed", err)
	}
	return &Session{ID: u.ID, Username: u.Username, Role: u.Role, Token: token.Value}, nil
}
