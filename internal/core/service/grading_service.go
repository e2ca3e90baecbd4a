package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

// GradingService exposes the teacher's ad-hoc evaluator and reference
// document upload.
type GradingService struct {
	gateway ports.Gateway
	logger  zerolog.Logger
}

var _ ports.GradingService = (*GradingService)(nil)

func NewGradingService(gateway ports.Gateway, logger zerolog.Logger) *GradingService {
	return &GradingService{gateway: gateway, logger: logger}
}

func (s *GradingService) Evaluate(ctx context.Context, req domain.EvaluationRequest) (*domain.Evaluation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.gateway.EvaluateAnswer(ctx, req)
}

// UploadTeacherGuide accepts PDF documents only.
func (s *GradingService) UploadTeacherGuide(ctx context.Context, file domain.FileUpload) (*domain.UploadReceipt, error) {
	if err := sniffDocument(&file, false); err != nil {
		return nil, err
	}
	receipt, err := s.gateway.UploadTeacherGuide(ctx, file)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("filename", file.Filename).Msg("teacher guide uploaded")
	return receipt, nil
}
