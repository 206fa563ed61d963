package review

import (
	"context"
	"sort"
	"strings"
	"time"

	errsx "github.com/yungbote/conceptgraph-backend/internal/pkg/errors"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
)

// SubmitOutcome is the result of an ingest call. Exactly one of the two
// shapes is populated by protocol: a pending session requiring review,
// or the count of concepts the server created directly.
type SubmitOutcome struct {
	SessionID       string
	ConceptsCreated int
}

// Pending reports whether the server materialized a review session.
func (o SubmitOutcome) Pending() bool { return o.SessionID != "" }

// CommitResult is what the graph collaborator reports after approval.
type CommitResult struct {
	ConceptsCreated      int `json:"concepts_created"`
	RelationshipsCreated int `json:"relationships_created"`
}

// PendingSummary is one entry from the pending-sessions listing.
type PendingSummary struct {
	SessionID   string    `json:"session_id"`
	SourceTitle string    `json:"source_title,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// API is the surface of the extraction/graph collaborators the workflow
// drives. reviewapi.Client implements it over HTTP.
type API interface {
	SubmitContent(ctx context.Context, content, title string, skipReview bool) (SubmitOutcome, error)
	ListPendingSessions(ctx context.Context) ([]PendingSummary, error)
	FetchSession(ctx context.Context, sessionID string) (Session, error)
	ApproveSession(ctx context.Context, sessionID string, approved []Item, removedIDs []string) (CommitResult, error)
	CancelSession(ctx context.Context, sessionID string) error
}

// Workflow binds a Controller to the network collaborators. Network
// calls are the only suspension points; between them the controller
// stays in its pre-call state apart from the in-flight flag, which the
// caller surfaces to disable duplicate submissions.
type Workflow struct {
	log      *logger.Logger
	api      API
	ctrl     *Controller
	inFlight bool
}

func NewWorkflow(baseLog *logger.Logger, api API) *Workflow {
	return &Workflow{
		log:  baseLog.With("component", "ReviewWorkflow"),
		api:  api,
		ctrl: NewController(baseLog),
	}
}

func (w *Workflow) Controller() *Controller { return w.ctrl }

// InFlight reports whether a network submission is outstanding.
func (w *Workflow) InFlight() bool { return w.inFlight }

// SubmitContent sends raw content for extraction. On a pending outcome
// the full session is fetched and the controller moves to the review
// step; on a direct outcome the workflow completes immediately. On
// failure the step does not advance and the caller may retry with the
// same content.
func (w *Workflow) SubmitContent(ctx context.Context, content, title string) (SubmitOutcome, error) {
	if strings.TrimSpace(content) == "" {
		return SubmitOutcome{}, errsx.ErrInvalidArgument
	}
	if w.inFlight {
		return SubmitOutcome{}, errsx.ErrSubmissionInFlight
	}
	w.inFlight = true
	defer func() { w.inFlight = false }()

	outcome, err := w.api.SubmitContent(ctx, content, title, false)
	if err != nil {
		return SubmitOutcome{}, err
	}
	if !outcome.Pending() {
		w.ctrl.Complete()
		return outcome, nil
	}

	session, err := w.api.FetchSession(ctx, outcome.SessionID)
	if err != nil {
		return SubmitOutcome{}, err
	}
	w.ctrl.AttachSession(session)
	return outcome, nil
}

// RecoverPending reattaches the most recently created pending session,
// if any, and moves straight to the review step. Intended for workflow
// start only; older pending sessions are not surfaced. Returns whether
// a session was recovered.
func (w *Workflow) RecoverPending(ctx context.Context) (bool, error) {
	if w.ctrl.Step() != StepInput {
		return false, nil
	}
	pending, err := w.api.ListPendingSessions(ctx)
	if err != nil {
		return false, err
	}
	if len(pending) == 0 {
		return false, nil
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.After(pending[j].CreatedAt)
	})
	session, err := w.api.FetchSession(ctx, pending[0].SessionID)
	if err != nil {
		return false, err
	}
	w.ctrl.AttachSession(session)
	return true, nil
}

// Approve computes the approved/rejected partition and commits it. The
// partition is recomputed fresh on every attempt, so a failed commit
// preserves any local edits for the retry; on success the session is
// discarded and the workflow completes. Approving zero concepts is
// allowed.
func (w *Workflow) Approve(ctx context.Context) (CommitResult, error) {
	session := w.ctrl.Session()
	if session == nil {
		return CommitResult{}, errsx.ErrNotFound
	}
	if w.inFlight {
		return CommitResult{}, errsx.ErrSubmissionInFlight
	}
	approved, removedIDs, err := w.ctrl.Partition()
	if err != nil {
		return CommitResult{}, err
	}
	w.inFlight = true
	defer func() { w.inFlight = false }()

	result, err := w.api.ApproveSession(ctx, session.ID, approved, removedIDs)
	if err != nil {
		return CommitResult{}, err
	}
	w.ctrl.Complete()
	return result, nil
}

// Cancel discards the session. Server-side cleanup is best-effort: local
// state is cleared and the workflow returns to the input step regardless
// of the network outcome.
func (w *Workflow) Cancel(ctx context.Context) {
	session := w.ctrl.Session()
	if session != nil && !w.inFlight {
		w.inFlight = true
		err := w.api.CancelSession(ctx, session.ID)
		w.inFlight = false
		if err != nil {
			w.log.Warn("cancel request failed, clearing local session anyway", "session_id", session.ID, "error", err)
		}
	}
	w.ctrl.Reset()
}
