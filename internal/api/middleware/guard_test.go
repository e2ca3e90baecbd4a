package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
	"github.com/gradeflow/assignment-portal/internal/core/service"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubSession struct {
	user *domain.User
}

func (s *stubSession) Current() *domain.User { return s.user }
func (s *stubSession) Login(context.Context, string, string) (*domain.User, error) {
	return nil, nil
}
func (s *stubSession) Register(context.Context, string, string, string, domain.Role) (*domain.User, error) {
	return nil, nil
}
func (s *stubSession) Logout(context.Context) error { return nil }
func (s *stubSession) UpdateProfile(context.Context, domain.ProfileUpdate) (*domain.User, error) {
	return nil, nil
}

type stubManager struct {
	opened  []string
	session ports.Session
	openErr error
}

func (m *stubManager) NewContextID() string { return "fresh-ctx" }

func (m *stubManager) Open(_ context.Context, sid string, _ ports.Notifier) (ports.Session, error) {
	m.opened = append(m.opened, sid)
	return m.session, m.openErr
}

func (m *stubManager) IssueToken(string) (string, error) { return "token", nil }

// ---------------------------------------------------------------------------
// Guard
// ---------------------------------------------------------------------------

func runGuard(t *testing.T, session ports.Session, roles ...domain.Role) (called bool, err error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if session != nil {
		c.Set(ContextSession, session)
	}
	err = Guard(roles...)(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return called, err
}

func TestGuard_AllowsRole(t *testing.T) {
	called, err := runGuard(t, &stubSession{user: &domain.User{ID: "1", Role: domain.RoleTeacher}}, domain.RoleTeacher)
	if err != nil || !called {
		t.Fatalf("expected next to be called, got called=%v err=%v", called, err)
	}
}

func TestGuard_ForbidsOtherRole(t *testing.T) {
	called, err := runGuard(t, &stubSession{user: &domain.User{ID: "2", Role: domain.RoleStudent}}, domain.RoleTeacher)
	if called || !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got called=%v err=%v", called, err)
	}
}

func TestGuard_RequiresSession(t *testing.T) {
	if called, err := runGuard(t, &stubSession{}); called || !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession for signed-out session, got called=%v err=%v", called, err)
	}
	if called, err := runGuard(t, nil); called || !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession without session middleware, got called=%v err=%v", called, err)
	}
}

func TestGuard_AnyRole(t *testing.T) {
	called, err := runGuard(t, &stubSession{user: &domain.User{ID: "2", Role: domain.RoleStudent}})
	if err != nil || !called {
		t.Fatalf("expected any signed-in user to pass, got called=%v err=%v", called, err)
	}
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

func TestSession_OpensCarriedContext(t *testing.T) {
	manager := &stubManager{session: &stubSession{}}
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(ContextSID, "ctx-1")

	err := Session(manager, zerolog.Nop())(func(c echo.Context) error {
		if _, ok := c.Get(ContextSession).(ports.Session); !ok {
			t.Fatal("session not set")
		}
		if _, ok := c.Get(ContextNotifications).(*service.NotificationCollector); !ok {
			t.Fatal("notification collector not set")
		}
		return nil
	})(c)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(manager.opened) != 1 || manager.opened[0] != "ctx-1" {
		t.Fatalf("unexpected opened contexts: %v", manager.opened)
	}
}

func TestSession_AllocatesContextWhenMissing(t *testing.T) {
	manager := &stubManager{session: &stubSession{}}
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/login", nil), httptest.NewRecorder())

	_ = Session(manager, zerolog.Nop())(func(c echo.Context) error { return nil })(c)
	if c.Get(ContextSID) != "fresh-ctx" {
		t.Fatalf("expected fresh context id, got %v", c.Get(ContextSID))
	}
}

func TestSession_OpenError(t *testing.T) {
	manager := &stubManager{openErr: errors.New("storage down")}
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(ContextSID, "ctx-1")

	err := Session(manager, zerolog.Nop())(func(c echo.Context) error {
		t.Fatal("should not reach next")
		return nil
	})(c)
	if err == nil {
		t.Fatal("expected error")
	}
}
