package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

// QuestionBoardService builds the student's question list with completion
// status and progress stats.
type QuestionBoardService struct {
	gateway ports.Gateway
	now     func() time.Time
	logger  zerolog.Logger
}

var _ ports.QuestionBoardService = (*QuestionBoardService)(nil)

func NewQuestionBoardService(gateway ports.Gateway, logger zerolog.Logger) *QuestionBoardService {
	return &QuestionBoardService{gateway: gateway, now: time.Now, logger: logger}
}

// Board fetches questions and the student's results concurrently and joins
// them. Either fetch failing fails the board.
func (s *QuestionBoardService) Board(ctx context.Context, studentID string) (*domain.StudentBoard, error) {
	var (
		questions []domain.Question
		results   []domain.Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		questions, err = s.gateway.ListQuestions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		results, err = s.gateway.GetResults(gctx, studentID, domain.RoleStudent)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("question board fetch failed")
		return nil, err
	}

	for i := range questions {
		questions[i].Difficulty = domain.NormalizeDifficulty(questions[i].Difficulty)
	}
	board := domain.BuildStudentBoard(questions, results, s.now())
	return &board, nil
}
