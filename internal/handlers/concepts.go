package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/conceptgraph-backend/internal/services"
)

type ConceptHandler struct {
	concepts services.ConceptService
}

func NewConceptHandler(concepts services.ConceptService) *ConceptHandler {
	return &ConceptHandler{concepts: concepts}
}

// GET /api/concepts
func (h *ConceptHandler) GetGraph(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	payload, err := h.concepts.GetGraph(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_graph_failed", err)
		return
	}
	RespondOK(c, payload)
}
