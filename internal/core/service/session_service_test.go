package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

var demoStudent = domain.User{
	ID:        "2",
	Email:     "student@example.com",
	Name:      "Alex Smith",
	Role:      domain.RoleStudent,
	CreatedAt: "2024-01-01T00:00:00Z",
}

func newTestManager(repo *stubUserRepo, storage *mapStorage) *SessionManager {
	return NewSessionManager(repo, storage, SessionOptions{JWTSecret: "secret", TokenTTL: time.Hour}, zerolog.Nop())
}

func openSession(t *testing.T, m *SessionManager, sid string, n ports.Notifier) ports.Session {
	t.Helper()
	s, err := m.Open(context.Background(), sid, n)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	return s
}

func TestSessionStore_Login_Success(t *testing.T) {
	storage := newMapStorage()
	m := newTestManager(newStubUserRepo(demoStudent), storage)
	notes := NewNotificationCollector(zerolog.Nop())
	s := openSession(t, m, "ctx-1", notes)

	user, err := s.Login(context.Background(), "student@example.com", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != "2" || s.Current() == nil || s.Current().Email != "student@example.com" {
		t.Fatalf("unexpected session user: %+v", s.Current())
	}

	raw, ok := storage.raw("session/ctx-1/" + ports.SessionUserKey)
	if !ok {
		t.Fatal("expected session to be persisted")
	}
	var persisted domain.User
	if err := json.Unmarshal(raw, &persisted); err != nil || persisted.ID != "2" {
		t.Fatalf("unexpected persisted session %s (%v)", raw, err)
	}

	got := notes.Drain()
	if len(got) != 1 || got[0].Title != "Welcome back!" || got[0].Description != "Logged in as Alex Smith" {
		t.Fatalf("unexpected notifications: %+v", got)
	}
}

func TestSessionStore_Login_InvalidCredentialsKeepsSession(t *testing.T) {
	m := newTestManager(newStubUserRepo(demoStudent), newMapStorage())
	s := openSession(t, m, "ctx-1", nil)
	if _, err := s.Login(context.Background(), "student@example.com", "password123"); err != nil {
		t.Fatalf("setup login failed: %v", err)
	}

	cases := []struct{ email, password string }{
		{"student@example.com", "wrong"},
		{"nobody@example.com", "password123"},
		{"STUDENT@example.com", "password123"},
	}
	for _, tc := range cases {
		if _, err := s.Login(context.Background(), tc.email, tc.password); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("Login(%q, %q): expected ErrInvalidCredentials, got %v", tc.email, tc.password, err)
		}
	}
	if cur := s.Current(); cur == nil || cur.ID != "2" {
		t.Fatalf("expected prior session to survive, got %+v", cur)
	}
}

func TestSessionStore_Login_HonoursCancellation(t *testing.T) {
	repo := newStubUserRepo(demoStudent)
	m := NewSessionManager(repo, newMapStorage(), SessionOptions{Latency: time.Minute}, zerolog.Nop())
	s := openSession(t, m, "ctx-1", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Login(ctx, "student@example.com", "password123"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if s.Current() != nil {
		t.Fatal("expected no session after cancelled login")
	}
}

func TestSessionStore_Register(t *testing.T) {
	repo := newStubUserRepo(demoStudent)
	storage := newMapStorage()
	m := newTestManager(repo, storage)
	fixed := time.UnixMilli(1_700_000_000_000)
	m.ids.now = func() time.Time { return fixed }
	notes := NewNotificationCollector(zerolog.Nop())

	s := openSession(t, m, "a", notes)
	first, err := s.Register(context.Background(), "new@example.com", "pw", "New Student", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	second, err := openSession(t, m, "b", nil).Register(context.Background(), "other@example.com", "pw", "Other", domain.RoleTeacher)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if first.ID != "1700000000000" || second.ID != "1700000000001" {
		t.Fatalf("expected strictly increasing ids, got %s then %s", first.ID, second.ID)
	}
	if _, err := repo.FindByEmail(context.Background(), "new@example.com"); err != nil {
		t.Fatalf("expected user in repository: %v", err)
	}
	if got := repo.size(); got != 3 {
		t.Fatalf("expected 3 users after two registrations, got %d", got)
	}
	if cur := s.Current(); cur == nil || cur.ID != first.ID || cur.Role != domain.RoleStudent {
		t.Fatalf("expected session to hold the new user, got %+v", cur)
	}

	raw, ok := storage.raw("session/a/" + ports.SessionUserKey)
	if !ok {
		t.Fatal("expected registered user to be persisted")
	}
	var persisted domain.User
	if err := json.Unmarshal(raw, &persisted); err != nil || persisted.ID != first.ID || persisted.Email != "new@example.com" {
		t.Fatalf("unexpected persisted session %s (%v)", raw, err)
	}
	if got := notes.Drain(); len(got) != 1 || got[0].Title != "Account created!" {
		t.Fatalf("unexpected notifications: %+v", got)
	}
}

func TestSessionStore_Register_DuplicateEmail(t *testing.T) {
	m := newTestManager(newStubUserRepo(demoStudent), newMapStorage())
	s := openSession(t, m, "a", nil)

	_, err := s.Register(context.Background(), "student@example.com", "pw", "Dup", domain.RoleStudent)
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if err.Error() != "User with this email already exists" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if s.Current() != nil {
		t.Fatal("expected no session")
	}
}

func TestSessionStore_Register_RejectsUnknownRole(t *testing.T) {
	m := newTestManager(newStubUserRepo(), newMapStorage())
	_, err := openSession(t, m, "a", nil).Register(context.Background(), "x@example.com", "pw", "X", domain.Role("admin"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSessionStore_Logout(t *testing.T) {
	storage := newMapStorage()
	m := newTestManager(newStubUserRepo(demoStudent), storage)
	notes := NewNotificationCollector(zerolog.Nop())
	s := openSession(t, m, "ctx-1", notes)
	if _, err := s.Login(context.Background(), "student@example.com", "password123"); err != nil {
		t.Fatalf("setup login failed: %v", err)
	}
	notes.Drain()

	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if s.Current() != nil {
		t.Fatal("expected session to be cleared")
	}
	if _, ok := storage.raw("session/ctx-1/" + ports.SessionUserKey); ok {
		t.Fatal("expected persisted session to be removed")
	}
	if got := notes.Drain(); len(got) != 1 || got[0].Title != "Logged out" {
		t.Fatalf("unexpected notifications: %+v", got)
	}
}

func TestSessionStore_UpdateProfile_NoSessionIsNoop(t *testing.T) {
	storage := newMapStorage()
	m := newTestManager(newStubUserRepo(demoStudent), storage)
	notes := NewNotificationCollector(zerolog.Nop())

	user, err := openSession(t, m, "ctx-1", notes).UpdateProfile(context.Background(), domain.ProfileUpdate{Name: "X"})
	if err != nil || user != nil {
		t.Fatalf("expected (nil, nil), got (%+v, %v)", user, err)
	}
	if len(storage.values) != 0 {
		t.Fatalf("expected no writes, got %v", storage.values)
	}
	if got := notes.Drain(); len(got) != 0 {
		t.Fatalf("expected no notifications, got %+v", got)
	}
}

func TestSessionStore_UpdateProfile_MergesNonEmptyFields(t *testing.T) {
	repo := newStubUserRepo(demoStudent)
	m := newTestManager(repo, newMapStorage())
	s := openSession(t, m, "ctx-1", nil)
	if _, err := s.Login(context.Background(), "student@example.com", "password123"); err != nil {
		t.Fatalf("setup login failed: %v", err)
	}

	user, err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: "Alexandra Smith"})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if user.Name != "Alexandra Smith" || user.Email != "student@example.com" || user.ID != "2" || user.Role != domain.RoleStudent {
		t.Fatalf("unexpected merged user: %+v", user)
	}

	// A new request for the same context sees the merged user.
	restored := openSession(t, m, "ctx-1", nil).Current()
	if restored == nil || restored.Name != "Alexandra Smith" {
		t.Fatalf("expected restored merged user, got %+v", restored)
	}
}

func TestSessionManager_Open_DiscardsCorruptSession(t *testing.T) {
	storage := newMapStorage()
	_ = storage.Scope("session/ctx-1").Set(context.Background(), ports.SessionUserKey, []byte("{not json"))
	m := newTestManager(newStubUserRepo(), storage)

	s := openSession(t, m, "ctx-1", nil)
	if s.Current() != nil {
		t.Fatal("expected unauthenticated session")
	}
	if _, ok := storage.raw("session/ctx-1/" + ports.SessionUserKey); ok {
		t.Fatal("expected corrupt value to be removed")
	}
}

func TestSessionManager_Open_StorageError(t *testing.T) {
	storage := newMapStorage()
	storage.getErr = errors.New("boom")
	m := newTestManager(newStubUserRepo(), storage)

	if _, err := m.Open(context.Background(), "ctx-1", nil); err == nil {
		t.Fatal("expected error when storage fails")
	}
}

func TestSessionManager_IssueToken(t *testing.T) {
	m := newTestManager(newStubUserRepo(), newMapStorage())
	sid := m.NewContextID()

	token, err := m.IssueToken(sid)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}
	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return []byte("secret"), nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("token did not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sid"] != sid {
		t.Fatalf("expected sid %q, got %v", sid, claims["sid"])
	}
}
