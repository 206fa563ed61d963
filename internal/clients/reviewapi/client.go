package reviewapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errsx "github.com/yungbote/conceptgraph-backend/internal/pkg/errors"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
	"github.com/yungbote/conceptgraph-backend/internal/review"
)

// Client is the HTTP implementation of review.API. It talks to the
// backend's /api surface with a bearer token and decodes the session
// payloads the review controller consumes directly.
type Client struct {
	log        *logger.Logger
	httpClient *http.Client
	baseURL    string
	token      string
}

var _ review.API = (*Client)(nil)

func NewClient(baseLog *logger.Logger, baseURL, token string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("reviewapi: base URL is required")
	}
	return &Client{
		log:        baseLog.With("client", "ReviewAPI"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		token:      strings.TrimSpace(token),
	}, nil
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("reviewapi: %s (%s, http %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("reviewapi: %s (http %d)", e.Message, e.Status)
}

func (e *apiError) HTTPStatusCode() int { return e.Status }

// Unwrap maps well-known statuses onto the shared sentinels so callers
// can branch with errors.Is.
func (e *apiError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return errsx.ErrNotFound
	case http.StatusConflict:
		return errsx.ErrSessionClosed
	case http.StatusBadRequest:
		return errsx.ErrInvalidArgument
	case http.StatusUnauthorized:
		return errsx.ErrUnauthorized
	}
	return nil
}

func (c *Client) SubmitContent(ctx context.Context, content, title string, skipReview bool) (review.SubmitOutcome, error) {
	body := map[string]any{
		"content":     content,
		"title":       title,
		"skip_review": skipReview,
	}
	var resp struct {
		SessionID     string `json:"session_id"`
		ConceptsCount int    `json:"concepts_count"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/ingest", body, &resp); err != nil {
		return review.SubmitOutcome{}, err
	}
	return review.SubmitOutcome{
		SessionID:       resp.SessionID,
		ConceptsCreated: resp.ConceptsCount,
	}, nil
}

func (c *Client) ListPendingSessions(ctx context.Context) ([]review.PendingSummary, error) {
	var resp struct {
		Sessions []review.PendingSummary `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/review-sessions/pending", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func (c *Client) FetchSession(ctx context.Context, sessionID string) (review.Session, error) {
	var session review.Session
	path := fmt.Sprintf("/api/review-sessions/%s", sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &session); err != nil {
		return review.Session{}, err
	}
	return session, nil
}

func (c *Client) ApproveSession(ctx context.Context, sessionID string, approved []review.Item, removedIDs []string) (review.CommitResult, error) {
	if approved == nil {
		approved = []review.Item{}
	}
	if removedIDs == nil {
		removedIDs = []string{}
	}
	body := map[string]any{
		"approved_concepts": approved,
		"removed_ids":       removedIDs,
	}
	var result review.CommitResult
	path := fmt.Sprintf("/api/review-sessions/%s/approve", sessionID)
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return review.CommitResult{}, err
	}
	return result, nil
}

func (c *Client) CancelSession(ctx context.Context, sessionID string) error {
	path := fmt.Sprintf("/api/review-sessions/%s/cancel", sessionID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("reviewapi: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("reviewapi: failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reviewapi: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reviewapi: failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &apiError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var envelope errorEnvelope
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
			apiErr.Code = envelope.Error.Code
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("reviewapi: failed to decode response: %w", err)
	}
	return nil
}
