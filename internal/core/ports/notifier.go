package ports

import (
	"context"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
)

// Notifier receives toast-style notifications from mutating operations.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// CompletionListener is called for every completion signal of the student it
// subscribed to.
type CompletionListener func(signal domain.CompletionSignal)

// CompletionBus is the observer registry for "submission completed" signals.
type CompletionBus interface {
	Subscribe(studentID string, listener CompletionListener) (unsubscribe func())
	Publish(signal domain.CompletionSignal)
}
