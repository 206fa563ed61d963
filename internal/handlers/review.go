package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	errsx "github.com/yungbote/conceptgraph-backend/internal/pkg/errors"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
	"github.com/yungbote/conceptgraph-backend/internal/requestdata"
	"github.com/yungbote/conceptgraph-backend/internal/services"
)

type ReviewHandler struct {
	log      *logger.Logger
	ingest   services.IngestService
	sessions services.ReviewSessionService
}

func NewReviewHandler(baseLog *logger.Logger, ingest services.IngestService, sessions services.ReviewSessionService) *ReviewHandler {
	return &ReviewHandler{
		log:      baseLog.With("handler", "ReviewHandler"),
		ingest:   ingest,
		sessions: sessions,
	}
}

func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errsx.ErrUnauthorized)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func sessionIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return uuid.Nil, false
	}
	return id, true
}

// POST /api/ingest
func (h *ReviewHandler) Ingest(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var body struct {
		Content    string `json:"content"`
		Title      string `json:"title"`
		SkipReview bool   `json:"skip_review"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	outcome, err := h.ingest.Ingest(c.Request.Context(), userID, body.Content, body.Title, body.SkipReview)
	if err != nil {
		if errors.Is(err, errsx.ErrInvalidArgument) {
			RespondError(c, http.StatusBadRequest, "empty_content", err)
			return
		}
		RespondError(c, http.StatusBadGateway, "ingest_failed", err)
		return
	}
	if outcome.Pending() {
		RespondOK(c, gin.H{"session_id": outcome.SessionID.String()})
		return
	}
	RespondOK(c, gin.H{"concepts_count": outcome.ConceptsCreated})
}

// GET /api/review-sessions/pending
func (h *ReviewHandler) ListPending(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessions, err := h.sessions.GetPending(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_pending_failed", err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions})
}

// GET /api/review-sessions/:id
func (h *ReviewHandler) GetSession(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	payload, err := h.sessions.Get(c.Request.Context(), userID, sessionID)
	if err != nil {
		if errors.Is(err, errsx.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "session_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "get_session_failed", err)
		return
	}
	RespondOK(c, payload)
}

// POST /api/review-sessions/:id/approve
func (h *ReviewHandler) ApproveSession(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var body struct {
		ApprovedConcepts []services.ApprovedConcept `json:"approved_concepts"`
		RemovedIDs       []string                   `json:"removed_ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	stats, err := h.sessions.Approve(c.Request.Context(), userID, sessionID, body.ApprovedConcepts, body.RemovedIDs)
	if err != nil {
		switch {
		case errors.Is(err, errsx.ErrNotFound):
			RespondError(c, http.StatusNotFound, "session_not_found", err)
		case errors.Is(err, errsx.ErrSessionClosed):
			RespondError(c, http.StatusConflict, "session_closed", err)
		case errors.Is(err, errsx.ErrInvalidArgument):
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
		default:
			RespondError(c, http.StatusInternalServerError, "approve_failed", err)
		}
		return
	}
	RespondOK(c, stats)
}

// POST /api/review-sessions/:id/cancel
func (h *ReviewHandler) CancelSession(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	if err := h.sessions.Cancel(c.Request.Context(), userID, sessionID); err != nil {
		if errors.Is(err, errsx.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "session_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "cancel_failed", err)
		return
	}
	RespondOK(c, gin.H{})
}
