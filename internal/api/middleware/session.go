package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gradeflow/assignment-portal/internal/core/ports"
	"github.com/gradeflow/assignment-portal/internal/core/service"
)

// Session restores the Session Store of the request's context id. Requests
// without one get a fresh context id, which sign-in handlers hand back as a
// token. Notifications raised while serving the request are collected in
// ContextNotifications.
func Session(manager ports.SessionManager, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, _ := c.Get(ContextSID).(string)
			if sid == "" {
				sid = manager.NewContextID()
				c.Set(ContextSID, sid)
			}

			notes := service.NewNotificationCollector(log)
			session, err := manager.Open(c.Request().Context(), sid, notes)
			if err != nil {
				return err
			}

			c.Set(ContextSession, session)
			c.Set(ContextNotifications, notes)
			return next(c)
		}
	}
}
