package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"

	"brokerage/internal/audit"
	"brokerage/internal/storage"
	dErrors "brokerage/pkg/domain-errors"
	"brokerage/pkg/requestcontext"
)

// DefaultSessionTTL bounds how long a login stays valid without re-auth.
const DefaultSessionTTL = 8 * time.Hour

// Service implements account creation, login, and logout.
type Service struct {
	users      UserStore
	sessions   SessionStore
	tokens     *JWTService
	auditor    *audit.Publisher
	logger     *slog.Logger
	sessionTTL time.Duration
}

func NewService(users UserStore, sessions SessionStore, tokens *JWTService, auditor *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		auditor:    auditor,
		logger:     logger,
		sessionTTL: DefaultSessionTTL,
	}
}

// CreateUser registers an operator account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, username, password string, role Role) (User, error) {
	if username == "" {
		return User{}, dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if len(password) < 8 {
		return User{}, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	if !role.Valid() {
		return User{}, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown role %q", role))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}

	user := User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.users.Save(ctx, user); err != nil {
		if storage.IsDuplicate(err) {
			return User{}, dErrors.Wrap(err, dErrors.CodeConflict, fmt.Sprintf("username %q is taken", username))
		}
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "save user")
	}

	s.logger.InfoContext(ctx, "user created", "username", username, "role", role)
	s.auditor.Emit(ctx, audit.Event{
		Actor:      requestcontext.Username(ctx),
		Action:     audit.ActionUserCreated,
		EntityKind: "user",
		EntityID:   username,
		Detail:     "role=" + string(role),
	})
	return user, nil
}

// LoginResult is what a successful login returns to the client.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Role      Role
}

// Login verifies credentials, opens a session, and issues an access token.
// Failed attempts are audited with the caller's address and client.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if storage.IsNotFound(err) {
			s.auditLoginFailure(ctx, username, "unknown username")
			return LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "find user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.auditLoginFailure(ctx, username, "wrong password")
		return LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	now := requestcontext.Now(ctx)
	session := Session{
		ID:        uuid.NewString(),
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "create session")
	}

	token, err := s.tokens.GenerateAccessToken(user.Username, session.ID, user.Role, s.sessionTTL)
	if err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "sign token")
	}

	s.logger.InfoContext(ctx, "user logged in", "username", username)
	s.auditor.Emit(ctx, audit.Event{
		Actor:      username,
		Action:     audit.ActionUserLogin,
		EntityKind: "user",
		EntityID:   username,
		Detail:     describeClient(ctx),
	})
	return LoginResult{Token: token, ExpiresAt: session.ExpiresAt, Role: user.Role}, nil
}

// Logout revokes the caller's session. Idempotent.
func (s *Service) Logout(ctx context.Context) error {
	sessionID := requestcontext.SessionID(ctx)
	if sessionID == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "no active session")
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete session")
	}

	username := requestcontext.Username(ctx)
	s.logger.InfoContext(ctx, "user logged out", "username", username)
	s.auditor.Emit(ctx, audit.Event{
		Actor:      username,
		Action:     audit.ActionUserLogout,
		EntityKind: "user",
		EntityID:   username,
	})
	return nil
}

// ListUsers returns all operator accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list users")
	}
	return users, nil
}

func (s *Service) auditLoginFailure(ctx context.Context, username, reason string) {
	s.logger.WarnContext(ctx, "login failed", "username", username, "reason", reason)
	s.auditor.Emit(ctx, audit.Event{
		Actor:      username,
		Action:     audit.ActionUserLoginFailed,
		EntityKind: "user",
		EntityID:   username,
		Detail:     reason + "; " + describeClient(ctx),
	})
}

// describeClient renders the caller's browser and address for audit detail,
// e.g. "Chrome 120 on Linux from 10.0.0.7".
func describeClient(ctx context.Context) string {
	rawUA := requestcontext.UserAgent(ctx)
	ip := requestcontext.ClientIP(ctx)

	desc := "unknown client"
	if rawUA != "" {
		ua := useragent.New(rawUA)
		name, version := ua.Browser()
		switch {
		case name != "" && version != "":
			desc = name + " " + version + " on " + ua.OS()
		case name != "":
			desc = name + " on " + ua.OS()
		default:
			desc = rawUA
		}
	}
	if ip != "" {
		desc += " from " + ip
	}
	return desc
}
