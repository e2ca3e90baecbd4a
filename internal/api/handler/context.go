package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gradeflow/assignment-portal/internal/api/middleware"
	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
	"github.com/gradeflow/assignment-portal/internal/core/service"
)

// MaxUploadBytes caps a single uploaded file.
const MaxUploadBytes = 20 << 20

// envelope wraps every successful response with the notifications raised
// while serving it.
type envelope struct {
	Data          any                   `json:"data"`
	Notifications []domain.Notification `json:"notifications"`
}

// sessionFrom returns the Session restored by the Session middleware.
func sessionFrom(c echo.Context) (ports.Session, error) {
	s, ok := c.Get(middleware.ContextSession).(ports.Session)
	if !ok || s == nil {
		return nil, domain.ErrNoSession
	}
	return s, nil
}

// currentUser fails fast with ErrNoSession when nobody is signed in.
func currentUser(c echo.Context) (*domain.User, error) {
	s, err := sessionFrom(c)
	if err != nil {
		return nil, err
	}
	u := s.Current()
	if u == nil {
		return nil, domain.ErrNoSession
	}
	return u, nil
}

func notify(c echo.Context, n domain.Notification) {
	if nc, ok := c.Get(middleware.ContextNotifications).(*service.NotificationCollector); ok {
		nc.Notify(c.Request().Context(), n)
	}
}

// Notifications drains the notifications collected for this request.
func Notifications(c echo.Context) []domain.Notification {
	if nc, ok := c.Get(middleware.ContextNotifications).(*service.NotificationCollector); ok {
		return nc.Drain()
	}
	return []domain.Notification{}
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Data: data, Notifications: Notifications(c)})
}

// readUpload reads the multipart file in field. A missing file is not an
// error and yields nil.
func readUpload(c echo.Context, field string) (*domain.FileUpload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart payload")
	}
	if fh.Size > MaxUploadBytes {
		return nil, domain.NewValidationError(field, fmt.Sprintf("File exceeds the %d MB limit.", MaxUploadBytes>>20))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &domain.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Content:     content,
	}, nil
}

// requireUpload is readUpload for endpoints where the file is mandatory.
func requireUpload(c echo.Context, field string) (*domain.FileUpload, error) {
	f, err := readUpload(c, field)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, domain.NewValidationError(field, "Please select a file to upload.")
	}
	return f, nil
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
