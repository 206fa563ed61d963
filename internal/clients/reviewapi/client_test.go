package reviewapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	errsx "github.com/yungbote/conceptgraph-backend/internal/pkg/errors"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
	"github.com/yungbote/conceptgraph-backend/internal/review"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	c, err := NewClient(log, srv.URL, "test-token")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestSubmitContent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ingest" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("missing bearer token, got %q", got)
		}
		var body struct {
			Content    string `json:"content"`
			Title      string `json:"title"`
			SkipReview bool   `json:"skip_review"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Content != "raw text" || body.Title != "notes" || body.SkipReview {
			t.Fatalf("unexpected body %+v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"session_id": "sess-1"})
	}))

	outcome, err := c.SubmitContent(context.Background(), "raw text", "notes", false)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !outcome.Pending() || outcome.SessionID != "sess-1" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestFetchSessionDecodesIntoReviewSession(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/review-sessions/sess-1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		// Matches the server-side session payload shape.
		w.Write([]byte(`{
			"session_id": "sess-1",
			"source_title": "notes",
			"status": "pending",
			"concepts": [
				{"id": "a", "name": "Entropy", "definition": "d", "domain": "physics",
				 "complexity_score": 5, "confidence": 0.9, "related_concepts": ["Energy"],
				 "is_selected": true, "user_modified": false, "is_duplicate": false},
				{"id": "b", "name": "Energy", "is_selected": false, "is_duplicate": true,
				 "matched_existing_id": "existing-1"}
			],
			"conflicts": [
				{"new_concept_name": "Energy",
				 "existing_concept": {"id": "existing-1", "name": "Energy", "definition": "old"}}
			]
		}`))
	}))

	session, err := c.FetchSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if session.ID != "sess-1" || len(session.Concepts) != 2 || len(session.Conflicts) != 1 {
		t.Fatalf("session not decoded: %+v", session)
	}
	dup := session.Concepts[1]
	if !dup.IsDuplicate || dup.MatchedExistingID != "existing-1" {
		t.Fatalf("duplicate metadata lost: %+v", dup)
	}
	conflict, ok := session.ConflictFor("energy")
	if !ok || conflict.Existing.ID != "existing-1" {
		t.Fatalf("conflict lookup failed: %+v ok=%v", conflict, ok)
	}
}

func TestApproveSessionSendsPartition(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Approved []review.Item `json:"approved_concepts"`
			Removed  []string      `json:"removed_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(body.Approved) != 1 || body.Approved[0].ID != "a" {
			t.Fatalf("approved not encoded: %+v", body.Approved)
		}
		if len(body.Removed) != 1 || body.Removed[0] != "b" {
			t.Fatalf("removed not encoded: %+v", body.Removed)
		}
		json.NewEncoder(w).Encode(review.CommitResult{ConceptsCreated: 1})
	}))

	result, err := c.ApproveSession(context.Background(), "sess-1", []review.Item{{ID: "a"}}, []string{"b"})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if result.ConceptsCreated != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestErrorEnvelopeMapsToSentinels(t *testing.T) {
	tests := []struct {
		status int
		code   string
		want   error
	}{
		{http.StatusNotFound, "session_not_found", errsx.ErrNotFound},
		{http.StatusConflict, "session_closed", errsx.ErrSessionClosed},
		{http.StatusBadRequest, "empty_content", errsx.ErrInvalidArgument},
		{http.StatusUnauthorized, "unauthorized", errsx.ErrUnauthorized},
	}
	for _, tt := range tests {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"message": "nope", "code": tt.code},
			})
		}))

		_, err := c.FetchSession(context.Background(), "sess-1")
		if !errors.Is(err, tt.want) {
			t.Fatalf("status %d: expected %v, got %v", tt.status, tt.want, err)
		}
		var apiErr *apiError
		if !errors.As(err, &apiErr) || apiErr.Code != tt.code {
			t.Fatalf("status %d: error code not decoded: %v", tt.status, err)
		}
	}
}

func TestCancelSession(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/review-sessions/sess-1/cancel" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}))
	if err := c.CancelSession(context.Background(), "sess-1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}
