package ports

import (
	"context"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
)

// Session holds the identity of one session context.
type Session interface {
	Current() *domain.User
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)
}

// SessionManager opens sessions by context id and issues the tokens that
// carry those ids.
type SessionManager interface {
	NewContextID() string
	Open(ctx context.Context, contextID string, notifier Notifier) (Session, error)
	IssueToken(contextID string) (string, error)
}
