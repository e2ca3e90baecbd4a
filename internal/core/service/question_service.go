package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

// QuestionService is the teacher's question management. Validation runs
// before any call to the grading API.
type QuestionService struct {
	gateway ports.Gateway
	logger  zerolog.Logger
}

var _ ports.QuestionService = (*QuestionService)(nil)

func NewQuestionService(gateway ports.Gateway, logger zerolog.Logger) *QuestionService {
	return &QuestionService{gateway: gateway, logger: logger}
}

// List fetches the bank and applies filter. Stats cover the unfiltered bank.
func (s *QuestionService) List(ctx context.Context, filter domain.QuestionFilter) (*domain.QuestionBank, error) {
	all, err := s.gateway.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.Question, 0, len(all))
	for i := range all {
		all[i].Difficulty = domain.NormalizeDifficulty(all[i].Difficulty)
		if filter.Match(all[i]) {
			matched = append(matched, all[i])
		}
	}
	return &domain.QuestionBank{
		Questions: matched,
		Stats:     domain.SummarizeQuestions(all),
	}, nil
}

func (s *QuestionService) Create(ctx context.Context, draft domain.QuestionDraft) (*domain.Question, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	q, err := s.gateway.CreateQuestion(ctx, draft)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("question_id", q.ID).Msg("question created")
	return q, nil
}

func (s *QuestionService) Update(ctx context.Context, id string, patch domain.QuestionPatch) (*domain.Question, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "Question id is required.")
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.TurnsOffOneFormat() {
		current, err := s.find(ctx, id)
		if err != nil {
			return nil, err
		}
		if !patch.AllowsAnswerOn(*current) {
			return nil, domain.NewValidationError("allowTextAnswer", "At least one answer format must be allowed.")
		}
	}
	q, err := s.gateway.UpdateQuestion(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("question_id", id).Msg("question updated")
	return q, nil
}

// find looks id up in the bank. The API has no single-question read.
func (s *QuestionService) find(ctx context.Context, id string) (*domain.Question, error) {
	all, err := s.gateway.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, domain.ErrQuestionNotFound
}

// Delete removes a question. Without confirmed the API is never called.
func (s *QuestionService) Delete(ctx context.Context, id string, confirmed bool) error {
	if id == "" {
		return domain.NewValidationError("id", "Question id is required.")
	}
	if !confirmed {
		return domain.ErrConfirmationRequired
	}
	if err := s.gateway.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("question_id", id).Msg("question deleted")
	return nil
}
