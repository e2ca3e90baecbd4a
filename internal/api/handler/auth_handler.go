package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gradeflow/assignment-portal/internal/api/middleware"
	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

type AuthHandler struct {
	sessions ports.SessionManager
}

func NewAuthHandler(sessions ports.SessionManager) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Login signs in with a demo account or a registered one.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  envelope{data=authResponse}
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}

	user, err := session.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.signedIn(c, http.StatusOK, user)
}

// Register creates an account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  envelope{data=authResponse}
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}

	user, err := session.Register(c.Request().Context(), req.Email, req.Password, req.Name, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return h.signedIn(c, http.StatusCreated, user)
}

func (h *AuthHandler) signedIn(c echo.Context, status int, user *domain.User) error {
	sid, _ := c.Get(middleware.ContextSID).(string)
	token, err := h.sessions.IssueToken(sid)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	return respond(c, status, authResponse{Token: token, User: user})
}

// Logout ends the session of the bearer token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}
	if err := session.Logout(c.Request().Context()); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil)
}

// Me returns the signed-in user, or null when the session is signed out.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=meResponse}
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, meResponse{User: session.Current()})
}

// UpdateProfile merges the given fields into the signed-in user. Signed-out
// sessions are left alone and get a null user back.
//
// @Summary      Update profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileRequest  true  "Fields to change"
// @Success      200   {object}  envelope{data=meResponse}
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /auth/profile [patch]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}

	update := domain.ProfileUpdate{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	}
	if update.IsEmpty() {
		return domain.NewValidationError("name", "Nothing to update.")
	}
	user, err := session.UpdateProfile(c.Request().Context(), update)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, meResponse{User: user})
}

// Dashboard returns the views available to the signed-in user's role. A view
// query parameter opens that view, if the role may see it.
//
// @Summary      Role dashboard
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        view  query     string  false  "View to open"
// @Success      200  {object}  envelope{data=domain.Dashboard}
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /dashboard [get]
func (h *AuthHandler) Dashboard(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	dash, err := domain.DashboardFor(user)
	if err != nil {
		return err
	}
	if view := domain.View(c.QueryParam("view")); view != "" {
		if !domain.CanAccess(user, view) {
			return domain.ErrForbidden
		}
		dash.DefaultView = view
	}
	return respond(c, http.StatusOK, dash)
}
