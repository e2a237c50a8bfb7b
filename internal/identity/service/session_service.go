// Package service implements the identity provider: credential sign-in and
// sign-out, and per-request session resolution with an observable loading
// phase for the access gate.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-gateway/internal/identity/domain"
	"storefront-gateway/internal/security"
)

// Sentinel errors for the identity service; handlers map them to HTTP responses.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

// UserRepo is the minimal user repository needed by the identity service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

// SessionRepo is the minimal session repository needed by the identity service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Revoke(ctx context.Context, id string) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}

// SignInResult holds the outcome of a successful sign-in.
type SignInResult struct {
	Token     string
	ExpiresAt time.Time
	Principal domain.Principal
}

// Service implements password sign-in, sign-out, and session resolution.
type Service struct {
	userRepo    UserRepo
	sessionRepo SessionRepo
	hasher      *security.Hasher
	tokens      *security.TokenProvider
	logger      *zap.Logger
}

// NewService returns a Service with the given dependencies. logger may be nil.
func NewService(userRepo UserRepo, sessionRepo SessionRepo, hasher *security.Hasher, tokens *security.TokenProvider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger,
	}
}

// Register creates a user with the given email and password. Returns the new
// user's id. The caller must sign in to obtain a session.
func (s *Service) Register(ctx context.Context, email, password, name string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return "", err
	}
	if err := validatePassword(password); err != nil {
		return "", err
	}
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hashed,
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return "", err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", err
	}
	return user.ID, nil
}

// SignIn authenticates with email/password, creates a session, and returns the
// session token for the cookie.
func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != domain.UserStatusActive {
		return nil, ErrInvalidCredentials
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	sessionID := uuid.New().String()
	token, expiresAt, err := s.tokens.IssueSession(sessionID, user.ID)
	if err != nil {
		return nil, err
	}
	sess := &domain.Session{
		ID:        sessionID,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return &SignInResult{Token: token, ExpiresAt: expiresAt, Principal: user.AsPrincipal()}, nil
}

// SignOut revokes the session referenced by the given cookie token.
// Invalid tokens are a no-op: the outcome (no session) is what the caller wanted.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sessionID, _, err := s.tokens.ValidateSession(token)
	if err != nil {
		return nil
	}
	return s.sessionRepo.Revoke(ctx, sessionID)
}

// Resolution is a one-shot asynchronous session resolution. State is loading
// until the resolver answers, then transitions exactly once to authenticated
// or unauthenticated and stays there.
type Resolution struct {
	mu    sync.Mutex
	state domain.SessionState
	done  chan struct{}
}

// State returns the current SessionState. Never a stale loading read: once
// Done is closed, State returns the terminal state.
func (r *Resolution) State() domain.SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Done is closed when resolution reaches a terminal state.
func (r *Resolution) Done() <-chan struct{} { return r.done }

// Await blocks until resolution completes or ctx is done, returning the state
// observed at that point (loading if ctx expired first).
func (r *Resolution) Await(ctx context.Context) domain.SessionState {
	select {
	case <-r.done:
	case <-ctx.Done():
	}
	return r.State()
}

func (r *Resolution) finish(state domain.SessionState) {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
	close(r.done)
}

// StartResolve begins resolving the session carried by token. An empty token
// resolves to unauthenticated without touching storage. Database failures
// resolve to unauthenticated (fail-closed) and are logged.
func (s *Service) StartResolve(ctx context.Context, token string) *Resolution {
	res := &Resolution{state: domain.Loading(), done: make(chan struct{})}
	go func() {
		res.finish(s.resolve(ctx, token))
	}()
	return res
}

func (s *Service) resolve(ctx context.Context, token string) domain.SessionState {
	if token == "" {
		return domain.Unauthenticated()
	}
	sessionID, userID, err := s.tokens.ValidateSession(token)
	if err != nil {
		return domain.Unauthenticated()
	}
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		s.logger.Warn("session lookup failed", zap.String("session_id", sessionID), zap.Error(err))
		return domain.Unauthenticated()
	}
	now := time.Now().UTC()
	if !sess.Live(now) {
		return domain.Unauthenticated()
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("user lookup failed", zap.String("user_id", userID), zap.Error(err))
		return domain.Unauthenticated()
	}
	if user == nil || user.Status != domain.UserStatusActive {
		return domain.Unauthenticated()
	}
	_ = s.sessionRepo.UpdateLastSeen(ctx, sessionID, now)
	return domain.Authenticated(user.AsPrincipal())
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		case r < '0' || (r > '9' && r < 'A') || (r > 'Z' && r < 'a') || r > 'z':
			hasSymbol = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.New("password must contain at least one number")
	}
	if !hasSymbol {
		return errors.New("password must contain at least one symbol")
	}
	return nil
}
