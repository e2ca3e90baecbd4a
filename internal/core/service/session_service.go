package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
	"github.com/gradeflow/assignment-portal/internal/pkg/metrics"
)

// demoPassword is the only password the mock login accepts.
const demoPassword = "password123"

// SessionOptions tunes a SessionManager.
type SessionOptions struct {
	JWTSecret      string
	TokenTTL       time.Duration
	Latency        time.Duration // login and register
	ProfileLatency time.Duration // profile updates
}

// SessionManager opens Session Stores over the local storage of a session
// context and issues the tokens carrying context ids.
type SessionManager struct {
	users   ports.UserRepository
	storage ports.StorageProvider
	opts    SessionOptions
	ids     *idGenerator
	now     func() time.Time
	logger  zerolog.Logger
}

var _ ports.SessionManager = (*SessionManager)(nil)

func NewSessionManager(users ports.UserRepository, storage ports.StorageProvider, opts SessionOptions, logger zerolog.Logger) *SessionManager {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &SessionManager{
		users:   users,
		storage: storage,
		opts:    opts,
		ids:     &idGenerator{now: time.Now},
		now:     time.Now,
		logger:  logger,
	}
}

// NewContextID allocates a fresh session context id.
func (m *SessionManager) NewContextID() string {
	return uuid.NewString()
}

// IssueToken signs a token whose "sid" claim is contextID.
func (m *SessionManager) IssueToken(contextID string) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"sid": contextID,
		"iat": now.Unix(),
		"exp": now.Add(m.opts.TokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(m.opts.JWTSecret))
}

// Open restores the Session Store of contextID. notifier may be nil.
func (m *SessionManager) Open(ctx context.Context, contextID string, notifier ports.Notifier) (ports.Session, error) {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	s := &SessionStore{
		m:        m,
		storage:  m.storage.Scope(SessionNamespace(contextID)),
		notifier: notifier,
		logger:   m.logger.With().Str("sid", contextID).Logger(),
	}
	if err := s.Restore(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// SessionNamespacePrefix starts every session namespace.
const SessionNamespacePrefix = "session/"

// SessionNamespace is the local storage namespace of a session context.
func SessionNamespace(contextID string) string {
	return SessionNamespacePrefix + contextID
}

// SessionStore holds the current user of one session context.
type SessionStore struct {
	m        *SessionManager
	storage  ports.LocalStorage
	notifier ports.Notifier
	logger   zerolog.Logger

	mu   sync.RWMutex
	user *domain.User
}

var _ ports.Session = (*SessionStore)(nil)

// Current returns a copy of the signed-in user, or nil.
func (s *SessionStore) Current() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Restore loads the persisted user. Unreadable values are discarded and the
// session starts signed out.
func (s *SessionStore) Restore(ctx context.Context) error {
	raw, found, err := s.storage.Get(ctx, ports.SessionUserKey)
	if err != nil {
		metrics.SessionOperationsTotal.WithLabelValues("restore", "error").Inc()
		return fmt.Errorf("restore session: %w", err)
	}
	if !found {
		return nil
	}

	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		s.logger.Debug().Err(err).Msg("discarding unreadable session")
		if err := s.storage.Remove(ctx, ports.SessionUserKey); err != nil {
			return fmt.Errorf("discard session: %w", err)
		}
		metrics.SessionOperationsTotal.WithLabelValues("restore", "error").Inc()
		return nil
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	metrics.SessionOperationsTotal.WithLabelValues("restore", "ok").Inc()
	return nil
}

// Login signs in the user with email. The previous session is untouched on
// failure.
func (s *SessionStore) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if err := sleep(ctx, s.m.opts.Latency); err != nil {
		return nil, err
	}

	user, err := s.m.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) || (err == nil && password != demoPassword) {
		metrics.SessionOperationsTotal.WithLabelValues("login", "error").Inc()
		s.logger.Info().Str("email", email).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		metrics.SessionOperationsTotal.WithLabelValues("login", "error").Inc()
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.persist(ctx, user); err != nil {
		metrics.SessionOperationsTotal.WithLabelValues("login", "error").Inc()
		return nil, err
	}

	metrics.SessionOperationsTotal.WithLabelValues("login", "ok").Inc()
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")
	s.notifier.Notify(ctx, domain.Notification{
		Level:       domain.NotifySuccess,
		Title:       "Welcome back!",
		Description: "Logged in as " + user.Name,
	})
	return s.Current(), nil
}

// Register creates an account and signs it in.
func (s *SessionStore) Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.NewValidationError("role", "Role must be teacher or student.")
	}
	if err := sleep(ctx, s.m.opts.Latency); err != nil {
		return nil, err
	}

	_, err := s.m.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		metrics.SessionOperationsTotal.WithLabelValues("register", "error").Inc()
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		metrics.SessionOperationsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("find user: %w", err)
	}

	created, err := s.m.users.Create(ctx, &domain.User{
		ID:        s.m.ids.next(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: s.m.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		metrics.SessionOperationsTotal.WithLabelValues("register", "error").Inc()
		return nil, err
	}

	if err := s.persist(ctx, created); err != nil {
		metrics.SessionOperationsTotal.WithLabelValues("register", "error").Inc()
		return nil, err
	}

	metrics.SessionOperationsTotal.WithLabelValues("register", "ok").Inc()
	s.logger.Info().Str("user_id", created.ID).Str("role", string(role)).Msg("user registered")
	s.notifier.Notify(ctx, domain.Notification{
		Level:       domain.NotifySuccess,
		Title:       "Account created!",
		Description: "Welcome to the assignment system, " + created.Name,
	})
	return s.Current(), nil
}

// Logout clears the session and its persisted copy.
func (s *SessionStore) Logout(ctx context.Context) error {
	if err := s.storage.Remove(ctx, ports.SessionUserKey); err != nil {
		metrics.SessionOperationsTotal.WithLabelValues("logout", "error").Inc()
		return fmt.Errorf("clear session: %w", err)
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	metrics.SessionOperationsTotal.WithLabelValues("logout", "ok").Inc()
	s.notifier.Notify(ctx, domain.Notification{
		Level:       domain.NotifySuccess,
		Title:       "Logged out",
		Description: "You have been successfully logged out",
	})
	return nil
}

// UpdateProfile merges the non-empty fields of update into the current user.
// Without a session it does nothing and returns nil.
func (s *SessionStore) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	current := s.Current()
	if current == nil {
		return nil, nil
	}
	if err := sleep(ctx, s.m.opts.ProfileLatency); err != nil {
		return nil, err
	}

	merged := *current
	if err := copier.CopyWithOption(&merged, &update, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, fmt.Errorf("merge profile: %w", err)
	}

	saved, err := s.m.users.Update(ctx, &merged)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		// Sessions may outlive the account store; keep the local copy.
		s.logger.Warn().Str("user_id", merged.ID).Msg("profile owner missing from user store")
		saved = &merged
	case err != nil:
		metrics.SessionOperationsTotal.WithLabelValues("update_profile", "error").Inc()
		return nil, err
	}

	if err := s.persist(ctx, saved); err != nil {
		metrics.SessionOperationsTotal.WithLabelValues("update_profile", "error").Inc()
		return nil, err
	}

	metrics.SessionOperationsTotal.WithLabelValues("update_profile", "ok").Inc()
	s.notifier.Notify(ctx, domain.Notification{
		Level:       domain.NotifySuccess,
		Title:       "Profile updated",
		Description: "Your profile has been successfully updated",
	})
	return s.Current(), nil
}

// persist writes u to local storage, then makes it the current user.
func (s *SessionStore) persist(ctx context.Context, u *domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.storage.Set(ctx, ports.SessionUserKey, raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	cp := *u
	s.mu.Lock()
	s.user = &cp
	s.mu.Unlock()
	return nil
}

// idGenerator hands out Unix-millisecond ids, bumping by one when two
// registrations land in the same millisecond.
type idGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func (g *idGenerator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, domain.Notification) {}
