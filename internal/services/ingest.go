package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/conceptgraph-backend/internal/clients/extraction"
	"github.com/yungbote/conceptgraph-backend/internal/data/repos/knowledge"
	reviewrepo "github.com/yungbote/conceptgraph-backend/internal/data/repos/review"
	types "github.com/yungbote/conceptgraph-backend/internal/domain"
	errsx "github.com/yungbote/conceptgraph-backend/internal/pkg/errors"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
)

// IngestOutcome is the result of an ingest call. Exactly one of the two
// shapes is meaningful: a review session id when human review is
// required, or the count of concepts created when review was skipped.
type IngestOutcome struct {
	SessionID       *uuid.UUID `json:"session_id,omitempty"`
	ConceptsCreated int        `json:"concepts_created"`
}

func (o *IngestOutcome) Pending() bool { return o.SessionID != nil }

type IngestService interface {
	Ingest(ctx context.Context, userID uuid.UUID, content, title string, skipReview bool) (*IngestOutcome, error)
}

type ingestService struct {
	db  *gorm.DB
	log *logger.Logger

	extractor extraction.Client

	conceptRepo       knowledge.ConceptRepo
	sessionRepo       reviewrepo.SessionRepo
	reviewConceptRepo reviewrepo.ConceptRepo
	conflictRepo      reviewrepo.ConflictRepo

	sessions ReviewSessionService
	notifier ReviewNotifier
}

func NewIngestService(
	db *gorm.DB,
	baseLog *logger.Logger,
	extractor extraction.Client,
	conceptRepo knowledge.ConceptRepo,
	sessionRepo reviewrepo.SessionRepo,
	reviewConceptRepo reviewrepo.ConceptRepo,
	conflictRepo reviewrepo.ConflictRepo,
	sessions ReviewSessionService,
	notifier ReviewNotifier,
) IngestService {
	return &ingestService{
		db:                db,
		log:               baseLog.With("service", "IngestService"),
		extractor:         extractor,
		conceptRepo:       conceptRepo,
		sessionRepo:       sessionRepo,
		reviewConceptRepo: reviewConceptRepo,
		conflictRepo:      conflictRepo,
		sessions:          sessions,
		notifier:          notifier,
	}
}

func (s *ingestService) Ingest(ctx context.Context, userID uuid.UUID, content, title string, skipReview bool) (*IngestOutcome, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is empty", errsx.ErrInvalidArgument)
	}
	if userID == uuid.Nil {
		return nil, errsx.ErrUnauthorized
	}

	candidates, err := s.extractor.ExtractConcepts(ctx, content, title)
	if err != nil {
		return nil, fmt.Errorf("extract concepts: %w", err)
	}
	if len(candidates) == 0 {
		s.log.Info("extraction produced no candidates", "user_id", userID)
		return &IngestOutcome{}, nil
	}

	existingByNorm, err := s.lookupCollisions(ctx, userID, candidates)
	if err != nil {
		return nil, err
	}

	if skipReview {
		stats, err := s.sessions.CommitDirect(ctx, userID, directApproved(candidates, existingByNorm))
		if err != nil {
			return nil, err
		}
		return &IngestOutcome{ConceptsCreated: stats.ConceptsCreated}, nil
	}

	session := &types.ReviewSession{
		ID:          uuid.New(),
		UserID:      userID,
		SourceTitle: title,
		Status:      types.ReviewSessionStatusPending,
	}
	conceptRows, conflictRows := buildReviewRows(session.ID, candidates, existingByNorm)

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.sessionRepo.Create(ctx, tx, session); err != nil {
			return err
		}
		if _, err := s.reviewConceptRepo.Create(ctx, tx, conceptRows); err != nil {
			return err
		}
		if _, err := s.conflictRepo.Create(ctx, tx, conflictRows); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.Info("review session created",
		"session_id", session.ID,
		"concepts", len(conceptRows),
		"conflicts", len(conflictRows),
	)
	if s.notifier != nil {
		s.notifier.SessionCreated(ctx, userID, session.ID, len(conceptRows), len(conflictRows))
	}
	return &IngestOutcome{SessionID: &session.ID}, nil
}

func (s *ingestService) lookupCollisions(ctx context.Context, userID uuid.UUID, candidates []extraction.Candidate) (map[string]*types.Concept, error) {
	norms := make([]string, 0, len(candidates))
	for _, c := range candidates {
		norms = append(norms, types.NormalizeConceptName(c.Name))
	}
	rows, err := s.conceptRepo.GetByNormalizedNames(ctx, nil, userID, norms)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*types.Concept, len(rows))
	for _, row := range rows {
		out[row.NormalizedName] = row
	}
	return out, nil
}

// buildReviewRows materializes the session's proposed concepts and the
// conflict snapshots for every name collision. Candidates colliding with
// an existing node are flagged as duplicates and carry the matched id;
// the conflict row snapshots the existing node as of detection time.
func buildReviewRows(sessionID uuid.UUID, candidates []extraction.Candidate, existingByNorm map[string]*types.Concept) ([]*types.ReviewConcept, []*types.ReviewConflict) {
	conceptRows := make([]*types.ReviewConcept, 0, len(candidates))
	var conflictRows []*types.ReviewConflict
	seenConflict := make(map[string]bool)

	for i, cand := range candidates {
		row := &types.ReviewConcept{
			ID:              uuid.New(),
			SessionID:       sessionID,
			Name:            cand.Name,
			Definition:      cand.Definition,
			Domain:          cand.Domain,
			ComplexityScore: cand.ComplexityScore,
			Confidence:      cand.Confidence,
			SortIndex:       i,
		}
		if raw, err := json.Marshal(cand.RelatedConcepts); err == nil {
			row.RelatedConcepts = datatypes.JSON(raw)
		}

		norm := types.NormalizeConceptName(cand.Name)
		if existing, ok := existingByNorm[norm]; ok {
			matched := existing.ID
			row.IsDuplicate = true
			row.MatchedExistingID = &matched
			if !seenConflict[norm] {
				seenConflict[norm] = true
				conflictRows = append(conflictRows, &types.ReviewConflict{
					ID:                 uuid.New(),
					SessionID:          sessionID,
					NewConceptName:     cand.Name,
					ExistingConceptID:  existing.ID,
					ExistingName:       existing.Name,
					ExistingDefinition: existing.Definition,
				})
			}
		}
		conceptRows = append(conceptRows, row)
	}
	return conceptRows, conflictRows
}

// directApproved maps candidates straight to approved concepts for the
// skip-review path. Collisions collapse onto the existing node, which is
// what the overwrite resolution would have done.
func directApproved(candidates []extraction.Candidate, existingByNorm map[string]*types.Concept) []ApprovedConcept {
	out := make([]ApprovedConcept, 0, len(candidates))
	for _, cand := range candidates {
		id := uuid.New()
		if existing, ok := existingByNorm[types.NormalizeConceptName(cand.Name)]; ok {
			id = existing.ID
		}
		out = append(out, ApprovedConcept{
			ID:              id.String(),
			Name:            cand.Name,
			Definition:      cand.Definition,
			Domain:          cand.Domain,
			ComplexityScore: cand.ComplexityScore,
			Confidence:      cand.Confidence,
			RelatedConcepts: cand.RelatedConcepts,
		})
	}
	return out
}
