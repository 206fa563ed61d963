package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/conceptgraph-backend/internal/pkg/envutil"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/httpx"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
)

// Candidate is one concept proposed by the extraction model, normalized
// into the ranges the review pipeline expects.
type Candidate struct {
	Name            string   `json:"name"`
	Definition      string   `json:"definition"`
	Domain          string   `json:"domain"`
	ComplexityScore int      `json:"complexity_score"`
	Confidence      float64  `json:"confidence"`
	RelatedConcepts []string `json:"related_concepts"`
}

// Client turns raw content into concept candidates.
type Client interface {
	ExtractConcepts(ctx context.Context, content, title string) ([]Candidate, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	spec       *promptSpec
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = "gpt-4o-mini"
	}

	spec, err := loadPromptSpec()
	if err != nil {
		return nil, err
	}

	return &client{
		log:        log.With("client", "ExtractionClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		spec:       spec,
		maxRetries: envutil.GetEnvAsInt("OPENAI_MAX_RETRIES", 3, log),
	}, nil
}

type apiError struct {
	status     int
	body       string
	retryAfter time.Duration
}

func (e *apiError) Error() string {
	return fmt.Sprintf("extraction api: status %d: %s", e.status, e.body)
}

func (e *apiError) HTTPStatusCode() int { return e.status }

func (c *client) ExtractConcepts(ctx context.Context, content, title string) ([]Candidate, error) {
	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]any{
			{"role": "system", "content": c.spec.System},
			{"role": "user", "content": c.spec.renderUser(content, title)},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   c.spec.SchemaName,
				"strict": true,
				"schema": c.spec.responseSchema(),
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := httpx.JitterSleep(time.Duration(attempt) * time.Second)
			var apiErr *apiError
			if errors.As(lastErr, &apiErr) && apiErr.retryAfter > 0 {
				backoff = apiErr.retryAfter
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		raw, err := c.doRequest(ctx, body)
		if err != nil {
			lastErr = err
			if httpx.IsRetryableError(err) {
				c.log.Warn("extraction request failed, retrying", "attempt", attempt, "error", err)
				continue
			}
			return nil, err
		}
		return c.decodeCandidates(raw)
	}
	return nil, lastErr
}

func (c *client) doRequest(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &apiError{
			status:     resp.StatusCode,
			body:       truncate(string(raw), 512),
			retryAfter: httpx.RetryAfterDuration(resp, 0, 30*time.Second),
		}
	}

	var envelope struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode completion envelope: %w", err)
	}
	if len(envelope.Choices) == 0 {
		return nil, fmt.Errorf("extraction api: empty choices")
	}
	return []byte(envelope.Choices[0].Message.Content), nil
}

// decodeCandidates parses the model's structured output and clamps the
// numeric fields into their documented ranges. Unnamed entries are
// dropped rather than failing the whole batch.
func (c *client) decodeCandidates(raw []byte) ([]Candidate, error) {
	var out struct {
		Concepts []Candidate `json:"concepts"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode extracted concepts: %w", err)
	}

	candidates := make([]Candidate, 0, len(out.Concepts))
	for _, cand := range out.Concepts {
		cand.Name = strings.TrimSpace(cand.Name)
		if cand.Name == "" {
			c.log.Warn("dropping unnamed candidate concept")
			continue
		}
		if cand.ComplexityScore < c.spec.Limits.MinComplexity {
			cand.ComplexityScore = c.spec.Limits.MinComplexity
		}
		if cand.ComplexityScore > c.spec.Limits.MaxComplexity {
			cand.ComplexityScore = c.spec.Limits.MaxComplexity
		}
		if cand.Confidence < 0 {
			cand.Confidence = 0
		}
		if cand.Confidence > 1 {
			cand.Confidence = 1
		}
		candidates = append(candidates, cand)
		if len(candidates) == c.spec.Limits.MaxConcepts {
			break
		}
	}
	return candidates, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
