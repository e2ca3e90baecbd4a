package domain

import "strings"

// FileUpload is a file handed in through a multipart form.
type FileUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// EvaluationRequest asks the grading API to score a single answer against a
// model answer.
type EvaluationRequest struct {
	Question      string `json:"question"`
	ModelAnswer   string `json:"model_answer"`
	StudentAnswer string `json:"student_answer"`
}

// Validate requires all three fields.
func (r EvaluationRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" || strings.TrimSpace(r.ModelAnswer) == "" || strings.TrimSpace(r.StudentAnswer) == "" {
		return NewValidationError("evaluation", "Please fill in all fields.")
	}
	return nil
}

// Evaluation is the similarity score returned for an EvaluationRequest.
type Evaluation struct {
	Score float64 `json:"score"`
}

// AssignmentUpload is a student's answer to one question. Text and File may
// both be set; at least one must be.
type AssignmentUpload struct {
	StudentID  string
	QuestionID string
	Text       string
	File       *FileUpload
}

// AssignmentReceipt is what the grading API answers to an upload.
type AssignmentReceipt struct {
	Message  string   `json:"message"`
	Score    *float64 `json:"score,omitempty"`
	Feedback string   `json:"feedback,omitempty"`
}

// UploadReceipt acknowledges a teacher guide upload.
type UploadReceipt struct {
	Message string `json:"message"`
}
