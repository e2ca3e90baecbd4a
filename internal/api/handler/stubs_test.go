package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gradeflow/assignment-portal/internal/api/middleware"
	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
	"github.com/gradeflow/assignment-portal/internal/core/service"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubSession struct {
	user       *domain.User
	loginFn    func(ctx context.Context, email, password string) (*domain.User, error)
	registerFn func(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error)
	logoutFn   func(ctx context.Context) error
	profileFn  func(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)
}

func (s *stubSession) Current() *domain.User { return s.user }

func (s *stubSession) Login(ctx context.Context, email, password string) (*domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubSession) Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	return s.registerFn(ctx, email, password, name, role)
}

func (s *stubSession) Logout(ctx context.Context) error { return s.logoutFn(ctx) }

func (s *stubSession) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	return s.profileFn(ctx, update)
}

type stubManager struct {
	issued []string
}

func (m *stubManager) NewContextID() string { return "fresh" }

func (m *stubManager) Open(context.Context, string, ports.Notifier) (ports.Session, error) {
	return nil, nil
}

func (m *stubManager) IssueToken(sid string) (string, error) {
	m.issued = append(m.issued, sid)
	return "token-" + sid, nil
}

var (
	teacher = &domain.User{ID: "1", Email: "teacher@example.com", Name: "Dr. Sarah Johnson", Role: domain.RoleTeacher}
	student = &domain.User{ID: "2", Email: "student@example.com", Name: "Alex Smith", Role: domain.RoleStudent}
)

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

func newContext(req *http.Request, session ports.Session) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextSID, "ctx-1")
	if session != nil {
		c.Set(middleware.ContextSession, session)
	}
	c.Set(middleware.ContextNotifications, service.NewNotificationCollector(zerolog.Nop()))
	return c, rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

type filePart struct {
	field, name string
	content     []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = fw.Write(f.content)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

type testEnvelope struct {
	Data          json.RawMessage       `json:"data"`
	Notifications []domain.Notification `json:"notifications"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) []domain.Notification {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("invalid data: %v (%s)", err, env.Data)
		}
	}
	return env.Notifications
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}
