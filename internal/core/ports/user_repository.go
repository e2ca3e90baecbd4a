package ports

import (
	"context"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
)

// UserRepository is the account store behind the session. FindByEmail returns
// domain.ErrUserNotFound for unknown emails; Create returns domain.ErrUserExists
// when the email is taken.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
}
