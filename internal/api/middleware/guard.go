package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

// Guard lets through requests whose session user holds one of the allowed
// roles. No allowed roles means any signed-in user. Must run after Session.
func Guard(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, _ := c.Get(ContextSession).(ports.Session)
			if session == nil {
				return domain.ErrNoSession
			}
			user := session.Current()
			if user == nil {
				return domain.ErrNoSession
			}
			if len(allowed) == 0 {
				return next(c)
			}
			if _, ok := allowed[user.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
