package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
	"github.com/gradeflow/assignment-portal/internal/pkg/metrics"
)

// AnswerService drafts and submits student answers.
type AnswerService struct {
	gateway ports.Gateway
	storage ports.StorageProvider
	bus     ports.CompletionBus
	logger  zerolog.Logger

	// serializes read-modify-write of the completed sets
	mu sync.Mutex
}

var _ ports.AnswerService = (*AnswerService)(nil)

func NewAnswerService(gateway ports.Gateway, storage ports.StorageProvider, bus ports.CompletionBus, logger zerolog.Logger) *AnswerService {
	return &AnswerService{gateway: gateway, storage: storage, bus: bus, logger: logger}
}

// StudentNamespace is the local storage namespace of a student's own data.
func StudentNamespace(studentID string) string {
	return "student/" + studentID
}

// ExtractText runs OCR on an uploaded PDF or image and returns its text.
func (s *AnswerService) ExtractText(ctx context.Context, file domain.FileUpload) (string, error) {
	if err := sniffDocument(&file, true); err != nil {
		return "", err
	}
	text, err := s.gateway.ExtractText(ctx, file)
	if err != nil {
		return "", err
	}
	s.logger.Debug().Str("filename", file.Filename).Int("chars", len(text)).Msg("text extracted")
	return text, nil
}

// Submit uploads the answer. Only on success is the question recorded as
// completed and a completion signal published.
func (s *AnswerService) Submit(ctx context.Context, upload domain.AssignmentUpload) (*domain.AssignmentReceipt, error) {
	modality := "text"
	if upload.File != nil {
		modality = "file"
	}

	if err := validateUpload(&upload); err != nil {
		metrics.SubmissionsTotal.WithLabelValues(modality, "invalid").Inc()
		return nil, err
	}

	receipt, err := s.gateway.UploadAssignment(ctx, upload)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues(modality, "failed").Inc()
		return nil, err
	}
	metrics.SubmissionsTotal.WithLabelValues(modality, "ok").Inc()

	// The remote side accepted the answer; record it even if the caller has
	// gone away in the meantime.
	if err := s.markCompleted(context.WithoutCancel(ctx), upload.StudentID, upload.QuestionID); err != nil {
		s.logger.Error().Err(err).
			Str("student_id", upload.StudentID).
			Str("question_id", upload.QuestionID).
			Msg("failed to record completed submission")
	}
	s.bus.Publish(domain.CompletionSignal{StudentID: upload.StudentID, QuestionID: upload.QuestionID})

	s.logger.Info().
		Str("student_id", upload.StudentID).
		Str("question_id", upload.QuestionID).
		Str("modality", modality).
		Msg("assignment submitted")
	return receipt, nil
}

// Completed returns the question ids recorded as completed for studentID, in
// completion order.
func (s *AnswerService) Completed(ctx context.Context, studentID string) ([]string, error) {
	return s.readCompleted(ctx, s.storage.Scope(StudentNamespace(studentID)))
}

func (s *AnswerService) markCompleted(ctx context.Context, studentID, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.storage.Scope(StudentNamespace(studentID))
	ids, err := s.readCompleted(ctx, store)
	if err != nil {
		return err
	}
	if slices.Contains(ids, questionID) {
		return nil
	}
	raw, err := json.Marshal(append(ids, questionID))
	if err != nil {
		return fmt.Errorf("encode completed set: %w", err)
	}
	return store.Set(ctx, ports.CompletedSubmissionKey, raw)
}

func (s *AnswerService) readCompleted(ctx context.Context, store ports.LocalStorage) ([]string, error) {
	raw, found, err := store.Get(ctx, ports.CompletedSubmissionKey)
	if err != nil {
		return nil, fmt.Errorf("read completed set: %w", err)
	}
	ids := []string{}
	if !found {
		return ids, nil
	}
	if err := json.Unmarshal(raw, &ids); err != nil {
		// Treat a corrupt set as empty; the next write replaces it.
		s.logger.Warn().Err(err).Msg("discarding unreadable completed set")
		return []string{}, nil
	}
	return ids, nil
}

func validateUpload(u *domain.AssignmentUpload) error {
	if strings.TrimSpace(u.QuestionID) == "" {
		return domain.NewValidationError("question_id", "Please select a question.")
	}
	if strings.TrimSpace(u.Text) == "" && u.File == nil {
		return domain.NewValidationError("text_answer", "Please provide an answer before submitting.")
	}
	if u.File != nil {
		return sniffDocument(u.File, true)
	}
	return nil
}

// sniffDocument checks the file content is a PDF, or an image when
// allowImages is set, and fills in the detected content type.
func sniffDocument(f *domain.FileUpload, allowImages bool) error {
	if len(f.Content) == 0 {
		return domain.NewValidationError("file", "The uploaded file is empty.")
	}
	mt := mimetype.Detect(f.Content)
	switch {
	case mt.Is("application/pdf"):
	case allowImages && strings.HasPrefix(mt.String(), "image/"):
	case allowImages:
		return domain.NewValidationError("file", "Please upload a PDF or image file.")
	default:
		return domain.NewValidationError("file", "Please upload a PDF file only.")
	}
	f.ContentType = mt.String()
	return nil
}
