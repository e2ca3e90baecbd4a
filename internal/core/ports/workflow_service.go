package ports

import (
	"context"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
)

// QuestionBoardService builds the student's question browsing view.
type QuestionBoardService interface {
	Board(ctx context.Context, studentID string) (*domain.StudentBoard, error)
}

// AnswerService handles answer drafting and submission for students.
type AnswerService interface {
	ExtractText(ctx context.Context, file domain.FileUpload) (string, error)
	Submit(ctx context.Context, upload domain.AssignmentUpload) (*domain.AssignmentReceipt, error)
	Completed(ctx context.Context, studentID string) ([]string, error)
}

// SubmissionHistory lists graded submissions.
type SubmissionHistory struct {
	Submissions []domain.SubmissionRow `json:"submissions"`
	Stats       domain.SubmissionStats `json:"stats"`
}

// SubmissionService reshapes results into submission rows.
type SubmissionService interface {
	ForStudent(ctx context.Context, studentID string) (*SubmissionHistory, error)
	ForTeacher(ctx context.Context) (*SubmissionHistory, error)
}

// QuestionService is the teacher's question management.
type QuestionService interface {
	List(ctx context.Context, filter domain.QuestionFilter) (*domain.QuestionBank, error)
	Create(ctx context.Context, draft domain.QuestionDraft) (*domain.Question, error)
	Update(ctx context.Context, id string, patch domain.QuestionPatch) (*domain.Question, error)
	Delete(ctx context.Context, id string, confirmed bool) error
}

// GradingService exposes the teacher's grading tools.
type GradingService interface {
	Evaluate(ctx context.Context, req domain.EvaluationRequest) (*domain.Evaluation, error)
	UploadTeacherGuide(ctx context.Context, file domain.FileUpload) (*domain.UploadReceipt, error)
}
