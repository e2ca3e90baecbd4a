// Package gateway is the typed HTTP client of the remote grading API.
//
// Every call is a single attempt. Failures of any kind are folded into
// *domain.RemoteError so callers handle one error shape.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
	"github.com/gradeflow/assignment-portal/internal/pkg/metrics"
	"github.com/gradeflow/assignment-portal/pkg/tracing"
)

const maxResponseBytes = 10 << 20

// Operation names, used in errors, logs, metrics and spans.
const (
	opListQuestions      = "list_questions"
	opCreateQuestion     = "create_question"
	opUpdateQuestion     = "update_question"
	opDeleteQuestion     = "delete_question"
	opEvaluateAnswer     = "evaluate_answer"
	opUploadTeacherGuide = "upload_teacher_guide"
	opUploadAssignment   = "upload_assignment"
	opExtractText        = "extract_text"
	opGetResults         = "get_results"
)

var failureMessages = map[string]string{
	opListQuestions:      "Failed to fetch questions",
	opCreateQuestion:     "Failed to create question",
	opUpdateQuestion:     "Failed to update question",
	opDeleteQuestion:     "Failed to delete question",
	opEvaluateAnswer:     "Failed to evaluate answer",
	opUploadTeacherGuide: "Failed to upload teacher guide",
	opUploadAssignment:   "Failed to upload assignment",
	opExtractText:        "Failed to extract text",
	opGetResults:         "Failed to fetch results",
}

// Client implements ports.Gateway over net/http.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

var _ ports.Gateway = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds every call. Zero keeps calls bounded only by their context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New returns a Client for the API rooted at baseURL.
func New(baseURL string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request describes one call to the grading API.
type request struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string

	// rejection, when set, inspects the decoded 2xx body and returns the
	// API's failure message, or "" when the reply is usable.
	rejection func() string
}

// remoteEnvelope captures the error field the API sets on failures.
type remoteEnvelope struct {
	Error string `json:"error"`
}

// do sends r and decodes a 2xx body into out (skipped when out is nil).
func (c *Client) do(ctx context.Context, r request, out any) (err error) {
	ctx, span := tracing.Tracer().Start(ctx, "gateway."+r.op)
	span.SetAttributes(
		attribute.String("http.method", r.method),
		attribute.String("http.route", r.path),
	)
	start := time.Now()
	defer func() {
		outcome := "ok"
		if re, ok := domain.AsRemoteError(err); ok {
			outcome = string(re.Kind)
			span.RecordError(err)
			span.SetStatus(codes.Error, re.Message)
			c.log.Warn().Err(err).Str("op", r.op).Msg("grading api call failed")
		} else {
			c.log.Debug().Str("op", r.op).Dur("elapsed", time.Since(start)).Msg("grading api call")
		}
		metrics.GatewayRequestsTotal.WithLabelValues(r.op, outcome).Inc()
		metrics.GatewayRequestDuration.WithLabelValues(r.op).Observe(time.Since(start).Seconds())
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return c.fail(r.op, domain.RemoteNetwork, 0, "", err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return c.fail(r.op, domain.RemoteCanceled, 0, "", ctx.Err())
		}
		return c.fail(r.op, domain.RemoteNetwork, 0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return c.fail(r.op, domain.RemoteCanceled, resp.StatusCode, "", ctx.Err())
		}
		return c.fail(r.op, domain.RemoteNetwork, resp.StatusCode, "", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env remoteEnvelope
		_ = json.Unmarshal(body, &env)
		return c.fail(r.op, domain.RemoteStatus, resp.StatusCode, env.Error, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return c.fail(r.op, domain.RemoteDecode, resp.StatusCode, "", err)
	}
	if r.rejection != nil {
		if msg := r.rejection(); msg != "" {
			return c.fail(r.op, domain.RemoteRejected, resp.StatusCode, msg, nil)
		}
	}
	return nil
}

// fail builds the RemoteError for op. An empty message falls back to the
// operation's generic failure message.
func (c *Client) fail(op string, kind domain.RemoteErrorKind, status int, message string, cause error) *domain.RemoteError {
	if message == "" {
		message = failureMessages[op]
	}
	return &domain.RemoteError{
		Op:         op,
		Kind:       kind,
		StatusCode: status,
		Message:    message,
		Err:        cause,
	}
}

// IsCanceled reports whether err is a gateway failure caused by cancellation.
func IsCanceled(err error) bool {
	if re, ok := domain.AsRemoteError(err); ok {
		return re.Kind == domain.RemoteCanceled
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return bytes.NewReader(b), nil
}
