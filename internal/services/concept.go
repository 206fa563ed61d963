package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/conceptgraph-backend/internal/data/repos/knowledge"
	types "github.com/yungbote/conceptgraph-backend/internal/domain"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
)

// GraphPayload is the user's committed knowledge graph, for display.
type GraphPayload struct {
	Concepts []*types.Concept     `json:"concepts"`
	Edges    []*types.ConceptEdge `json:"edges"`
}

type ConceptService interface {
	GetGraph(ctx context.Context, userID uuid.UUID) (*GraphPayload, error)
}

type conceptService struct {
	db          *gorm.DB
	log         *logger.Logger
	conceptRepo knowledge.ConceptRepo
	edgeRepo    knowledge.ConceptEdgeRepo
}

func NewConceptService(db *gorm.DB, baseLog *logger.Logger, conceptRepo knowledge.ConceptRepo, edgeRepo knowledge.ConceptEdgeRepo) ConceptService {
	return &conceptService{
		db:          db,
		log:         baseLog.With("service", "ConceptService"),
		conceptRepo: conceptRepo,
		edgeRepo:    edgeRepo,
	}
}

func (s *conceptService) GetGraph(ctx context.Context, userID uuid.UUID) (*GraphPayload, error) {
	concepts, err := s.conceptRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	edges, err := s.edgeRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	return &GraphPayload{Concepts: concepts, Edges: edges}, nil
}
