package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
)

type evaluationResponse struct {
	Score float64 `json:"score"`
	Error string  `json:"error"`
}

type uploadResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type assignmentResponse struct {
	Message  string   `json:"message"`
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
	Error    string   `json:"error"`
}

type extractResponse struct {
	ExtractedText string `json:"extracted_text"`
	Error         string `json:"error"`
}

// EvaluateAnswer scores a student answer against a model answer.
func (c *Client) EvaluateAnswer(ctx context.Context, req domain.EvaluationRequest) (*domain.Evaluation, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, c.fail(opEvaluateAnswer, domain.RemoteNetwork, 0, "", err)
	}
	var out evaluationResponse
	err = c.do(ctx, request{
		op:          opEvaluateAnswer,
		method:      http.MethodPost,
		path:        "/evaluate",
		body:        body,
		contentType: jsonContentType,
		rejection:   func() string { return out.Error },
	}, &out)
	if err != nil {
		return nil, err
	}
	return &domain.Evaluation{Score: out.Score}, nil
}

// UploadTeacherGuide sends a reference document as the "file" part.
func (c *Client) UploadTeacherGuide(ctx context.Context, file domain.FileUpload) (*domain.UploadReceipt, error) {
	body, ct, err := encodeForm(formField{name: "file", file: &file})
	if err != nil {
		return nil, c.fail(opUploadTeacherGuide, domain.RemoteNetwork, 0, "", err)
	}
	var out uploadResponse
	err = c.do(ctx, request{
		op:          opUploadTeacherGuide,
		method:      http.MethodPost,
		path:        "/upload_teacher_guide",
		body:        body,
		contentType: ct,
		rejection:   func() string { return out.Error },
	}, &out)
	if err != nil {
		return nil, err
	}
	return &domain.UploadReceipt{Message: out.Message}, nil
}

// UploadAssignment submits a student's answer. text_answer is sent whenever
// there is text or no file; the file part only when a file is attached.
func (c *Client) UploadAssignment(ctx context.Context, upload domain.AssignmentUpload) (*domain.AssignmentReceipt, error) {
	fields := []formField{
		{name: "student_id", value: upload.StudentID},
		{name: "question_id", value: upload.QuestionID},
	}
	if upload.Text != "" || upload.File == nil {
		fields = append(fields, formField{name: "text_answer", value: upload.Text})
	}
	if upload.File != nil {
		fields = append(fields, formField{name: "file", file: upload.File})
	}

	body, ct, err := encodeForm(fields...)
	if err != nil {
		return nil, c.fail(opUploadAssignment, domain.RemoteNetwork, 0, "", err)
	}
	var out assignmentResponse
	err = c.do(ctx, request{
		op:          opUploadAssignment,
		method:      http.MethodPost,
		path:        "/upload_assignment",
		body:        body,
		contentType: ct,
		rejection:   func() string { return out.Error },
	}, &out)
	if err != nil {
		return nil, err
	}
	return &domain.AssignmentReceipt{
		Message:  out.Message,
		Score:    out.Score,
		Feedback: out.Feedback,
	}, nil
}

// ExtractText runs OCR on file. A 2xx reply without text counts as a failure.
func (c *Client) ExtractText(ctx context.Context, file domain.FileUpload) (string, error) {
	body, ct, err := encodeForm(formField{name: "file", file: &file})
	if err != nil {
		return "", c.fail(opExtractText, domain.RemoteNetwork, 0, "", err)
	}
	var out extractResponse
	err = c.do(ctx, request{
		op:          opExtractText,
		method:      http.MethodPost,
		path:        "/extract_text_from_file",
		body:        body,
		contentType: ct,
		rejection: func() string {
			switch {
			case out.ExtractedText != "":
				return ""
			case out.Error != "":
				return out.Error
			}
			return "Unknown error"
		},
	}, &out)
	if err != nil {
		return "", err
	}
	return out.ExtractedText, nil
}

// GetResults lists graded results visible to userID acting as role. On
// failure the slice is empty, never nil.
func (c *Client) GetResults(ctx context.Context, userID string, role domain.Role) ([]domain.Result, error) {
	var out []domain.Result
	err := c.do(ctx, request{
		op:     opGetResults,
		method: http.MethodGet,
		path:   "/get_results/" + url.PathEscape(userID) + "/" + url.PathEscape(string(role)),
	}, &out)
	if err != nil || out == nil {
		return []domain.Result{}, err
	}
	return out, nil
}
