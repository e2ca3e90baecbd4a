package handler

import "github.com/gradeflow/assignment-portal/internal/core/domain"

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=teacher student"`
}

type profileRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email" validate:"omitempty,email"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}

// authResponse carries the token the client must send back as a bearer
// token to stay in the same session context.
type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user"`
}

type meResponse struct {
	User *domain.User `json:"user"`
}

type extractResponse struct {
	Text string `json:"text"`
}

// studentBoardResponse is the question board plus the locally recorded
// completions, which may be ahead of the grading API's results.
type studentBoardResponse struct {
	*domain.StudentBoard
	Completed []string `json:"completed"`
}
