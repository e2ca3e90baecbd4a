package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

// teacherResultsOwner is the user id the grading API expects when a teacher
// lists every student's results.
const teacherResultsOwner = "0"

// SubmissionService reshapes graded results into submission rows.
type SubmissionService struct {
	gateway ports.Gateway
	logger  zerolog.Logger
}

var _ ports.SubmissionService = (*SubmissionService)(nil)

func NewSubmissionService(gateway ports.Gateway, logger zerolog.Logger) *SubmissionService {
	return &SubmissionService{gateway: gateway, logger: logger}
}

// ForStudent lists the submissions of one student.
func (s *SubmissionService) ForStudent(ctx context.Context, studentID string) (*ports.SubmissionHistory, error) {
	return s.history(ctx, studentID, domain.RoleStudent)
}

// ForTeacher lists the submissions of every student.
func (s *SubmissionService) ForTeacher(ctx context.Context) (*ports.SubmissionHistory, error) {
	return s.history(ctx, teacherResultsOwner, domain.RoleTeacher)
}

func (s *SubmissionService) history(ctx context.Context, userID string, role domain.Role) (*ports.SubmissionHistory, error) {
	results, err := s.gateway.GetResults(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.SubmissionRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, domain.NewSubmissionRow(r))
	}
	s.logger.Debug().Str("user_id", userID).Str("role", string(role)).Int("rows", len(rows)).Msg("submission history loaded")
	return &ports.SubmissionHistory{
		Submissions: rows,
		Stats:       domain.SummarizeSubmissions(rows),
	}, nil
}
