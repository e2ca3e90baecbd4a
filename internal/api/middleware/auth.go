package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by the middleware in this package.
const (
	ContextSID           = "sid"
	ContextSession       = "session"
	ContextNotifications = "notifications"
)

// Auth validates the bearer token and injects its session context id.
// Browsers cannot set headers on WebSocket handshakes, so the token may also
// arrive as the access_token query parameter.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if token := c.QueryParam("access_token"); token != "" {
					authHeader = "Bearer " + token
				}
			}
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			sid, err := parseBearer(authHeader, jwtSecret)
			if err != nil {
				return err
			}

			c.Set(ContextSID, sid)
			return next(c)
		}
	}
}

// OptionalAuth behaves like Auth when a valid token is present and otherwise
// lets the request through without a session context id. Used by sign-in
// routes, which start a new context when none is carried.
func OptionalAuth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
				if sid, err := parseBearer(authHeader, jwtSecret); err == nil {
					c.Set(ContextSID, sid)
				}
			}
			return next(c)
		}
	}
}

func parseBearer(authHeader, jwtSecret string) (string, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "token missing session context")
	}
	return sid, nil
}
