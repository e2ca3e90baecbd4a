package ports

import (
	"context"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
)

// Gateway is the only boundary between the portal and the grading API.
// Every method makes at most one HTTP call, honours ctx cancellation and
// reports every failure as a *domain.RemoteError. List methods also return a
// non-nil empty slice on failure.
type Gateway interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	CreateQuestion(ctx context.Context, draft domain.QuestionDraft) (*domain.Question, error)
	UpdateQuestion(ctx context.Context, id string, patch domain.QuestionPatch) (*domain.Question, error)
	DeleteQuestion(ctx context.Context, id string) error

	EvaluateAnswer(ctx context.Context, req domain.EvaluationRequest) (*domain.Evaluation, error)
	UploadTeacherGuide(ctx context.Context, file domain.FileUpload) (*domain.UploadReceipt, error)
	UploadAssignment(ctx context.Context, upload domain.AssignmentUpload) (*domain.AssignmentReceipt, error)
	ExtractText(ctx context.Context, file domain.FileUpload) (string, error)
	GetResults(ctx context.Context, userID string, role domain.Role) ([]domain.Result, error)
}
