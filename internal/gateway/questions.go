package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
)

const jsonContentType = "application/json"

// ListQuestions fetches every question. On failure the slice is empty, never nil.
func (c *Client) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	var out []domain.Question
	err := c.do(ctx, request{op: opListQuestions, method: http.MethodGet, path: "/questions"}, &out)
	if err != nil || out == nil {
		return []domain.Question{}, err
	}
	return out, nil
}

// CreateQuestion posts draft and returns the stored question.
func (c *Client) CreateQuestion(ctx context.Context, draft domain.QuestionDraft) (*domain.Question, error) {
	body, err := jsonBody(draft)
	if err != nil {
		return nil, c.fail(opCreateQuestion, domain.RemoteNetwork, 0, "", err)
	}
	var out domain.Question
	err = c.do(ctx, request{
		op:          opCreateQuestion,
		method:      http.MethodPost,
		path:        "/questions",
		body:        body,
		contentType: jsonContentType,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateQuestion sends the fields present in patch.
func (c *Client) UpdateQuestion(ctx context.Context, id string, patch domain.QuestionPatch) (*domain.Question, error) {
	body, err := jsonBody(patch)
	if err != nil {
		return nil, c.fail(opUpdateQuestion, domain.RemoteNetwork, 0, "", err)
	}
	var out domain.Question
	err = c.do(ctx, request{
		op:          opUpdateQuestion,
		method:      http.MethodPut,
		path:        "/questions/" + url.PathEscape(id),
		body:        body,
		contentType: jsonContentType,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteQuestion removes the question. The response body is ignored.
func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	return c.do(ctx, request{
		op:     opDeleteQuestion,
		method: http.MethodDelete,
		path:   "/questions/" + url.PathEscape(id),
	}, nil)
}
