package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/conceptgraph-backend/internal/data/graph"
	"github.com/yungbote/conceptgraph-backend/internal/data/repos/knowledge"
	reviewrepo "github.com/yungbote/conceptgraph-backend/internal/data/repos/review"
	types "github.com/yungbote/conceptgraph-backend/internal/domain"
	errsx "github.com/yungbote/conceptgraph-backend/internal/pkg/errors"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
	"github.com/yungbote/conceptgraph-backend/internal/platform/neo4jdb"
)

// ApprovedConcept is one reviewer-accepted concept as submitted by the
// client. Its ID is either the session's provisional id (a new node) or
// an existing node's id when the reviewer collapsed a duplicate onto it.
type ApprovedConcept struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Definition      string   `json:"definition"`
	Domain          string   `json:"domain"`
	ComplexityScore int      `json:"complexity_score"`
	Confidence      float64  `json:"confidence"`
	RelatedConcepts []string `json:"related_concepts"`
}

type CommitStats struct {
	ConceptsCreated      int `json:"concepts_created"`
	RelationshipsCreated int `json:"relationships_created"`
}

type ReviewSessionService interface {
	GetPending(ctx context.Context, userID uuid.UUID) ([]SessionSummary, error)
	Get(ctx context.Context, userID, sessionID uuid.UUID) (*SessionPayload, error)
	Approve(ctx context.Context, userID, sessionID uuid.UUID, approved []ApprovedConcept, removedIDs []string) (*CommitStats, error)
	Cancel(ctx context.Context, userID, sessionID uuid.UUID) error

	// CommitDirect writes concepts to the graph without a review session
	// (the skip-review ingest path).
	CommitDirect(ctx context.Context, userID uuid.UUID, approved []ApprovedConcept) (*CommitStats, error)
}

type reviewSessionService struct {
	db  *gorm.DB
	log *logger.Logger

	sessionRepo       reviewrepo.SessionRepo
	reviewConceptRepo reviewrepo.ConceptRepo
	conflictRepo      reviewrepo.ConflictRepo
	conceptRepo       knowledge.ConceptRepo
	edgeRepo          knowledge.ConceptEdgeRepo

	neo4j    *neo4jdb.Client
	notifier ReviewNotifier
}

func NewReviewSessionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessionRepo reviewrepo.SessionRepo,
	reviewConceptRepo reviewrepo.ConceptRepo,
	conflictRepo reviewrepo.ConflictRepo,
	conceptRepo knowledge.ConceptRepo,
	edgeRepo knowledge.ConceptEdgeRepo,
	neo4jClient *neo4jdb.Client,
	notifier ReviewNotifier,
) ReviewSessionService {
	return &reviewSessionService{
		db:                db,
		log:               baseLog.With("service", "ReviewSessionService"),
		sessionRepo:       sessionRepo,
		reviewConceptRepo: reviewConceptRepo,
		conflictRepo:      conflictRepo,
		conceptRepo:       conceptRepo,
		edgeRepo:          edgeRepo,
		neo4j:             neo4jClient,
		notifier:          notifier,
	}
}

func (s *reviewSessionService) GetPending(ctx context.Context, userID uuid.UUID) ([]SessionSummary, error) {
	rows, err := s.sessionRepo.GetPendingByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	out := make([]SessionSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, SessionSummary{
			SessionID:   row.ID.String(),
			SourceTitle: row.SourceTitle,
			CreatedAt:   row.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out, nil
}

func (s *reviewSessionService) Get(ctx context.Context, userID, sessionID uuid.UUID) (*SessionPayload, error) {
	session, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, errsx.ErrNotFound
	}

	concepts, err := s.reviewConceptRepo.GetBySessionID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	conflicts, err := s.conflictRepo.GetBySessionID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}

	payload := &SessionPayload{
		SessionID:   session.ID.String(),
		SourceTitle: session.SourceTitle,
		Status:      session.Status,
		Concepts:    make([]ConceptPayload, 0, len(concepts)),
		Conflicts:   make([]ConflictPayload, 0, len(conflicts)),
	}
	for _, row := range concepts {
		payload.Concepts = append(payload.Concepts, conceptPayloadFromRow(row))
	}
	for _, row := range conflicts {
		payload.Conflicts = append(payload.Conflicts, ConflictPayload{
			NewConceptName: row.NewConceptName,
			Existing: ExistingConceptPayload{
				ID:         row.ExistingConceptID.String(),
				Name:       row.ExistingName,
				Definition: row.ExistingDefinition,
			},
		})
	}
	return payload, nil
}

func (s *reviewSessionService) Approve(ctx context.Context, userID, sessionID uuid.UUID, approved []ApprovedConcept, removedIDs []string) (*CommitStats, error) {
	session, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, errsx.ErrNotFound
	}
	if session.Status != types.ReviewSessionStatusPending {
		return nil, errsx.ErrSessionClosed
	}

	var stats *CommitStats
	var committed []*types.Concept
	var newEdges []*types.ConceptEdge
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commitErr error
		stats, committed, newEdges, commitErr = s.commit(ctx, tx, userID, approved)
		if commitErr != nil {
			return commitErr
		}
		return s.sessionRepo.UpdateStatus(ctx, tx, sessionID, types.ReviewSessionStatusApproved, len(approved))
	}); err != nil {
		// The session stays pending; the client retries with a freshly
		// computed partition.
		s.log.Warn("approve commit failed", "session_id", sessionID, "error", err)
		return nil, err
	}

	s.log.Info("review session approved",
		"session_id", sessionID,
		"approved", len(approved),
		"removed", len(removedIDs),
		"concepts_created", stats.ConceptsCreated,
		"relationships_created", stats.RelationshipsCreated,
	)
	s.fanOut(ctx, userID, sessionID, stats, committed, newEdges)
	return stats, nil
}

func (s *reviewSessionService) Cancel(ctx context.Context, userID, sessionID uuid.UUID) error {
	session, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return err
	}
	if session == nil || session.UserID != userID {
		return errsx.ErrNotFound
	}
	if session.Status != types.ReviewSessionStatusPending {
		// Cancelling a closed session is a no-op, not an error: the
		// client clears local state regardless.
		return nil
	}
	if err := s.sessionRepo.UpdateStatus(ctx, nil, sessionID, types.ReviewSessionStatusCancelled, 0); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.SessionCancelled(ctx, userID, sessionID)
	}
	return nil
}

func (s *reviewSessionService) CommitDirect(ctx context.Context, userID uuid.UUID, approved []ApprovedConcept) (*CommitStats, error) {
	var stats *CommitStats
	var committed []*types.Concept
	var newEdges []*types.ConceptEdge
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commitErr error
		stats, committed, newEdges, commitErr = s.commit(ctx, tx, userID, approved)
		return commitErr
	}); err != nil {
		return nil, err
	}
	s.syncGraph(ctx, userID, committed, newEdges)
	return stats, nil
}

// commit writes the approved concepts and their relation edges inside
// the caller's transaction. A row already present at an approved id is
// updated in place (the overwrite/merge path); anything else is
// inserted under its provisional id. Entries that normalize to the same
// name collapse onto the first occurrence so the batch cannot trip the
// per-user unique index.
func (s *reviewSessionService) commit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, approved []ApprovedConcept) (*CommitStats, []*types.Concept, []*types.ConceptEdge, error) {
	ids := make([]uuid.UUID, 0, len(approved))
	for _, a := range approved {
		id, err := uuid.Parse(a.ID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: bad concept id %q", errsx.ErrInvalidArgument, a.ID)
		}
		ids = append(ids, id)
	}

	existingRows, err := s.conceptRepo.GetByIDs(ctx, tx, ids)
	if err != nil {
		return nil, nil, nil, err
	}
	existingByID := make(map[uuid.UUID]*types.Concept, len(existingRows))
	for _, row := range existingRows {
		existingByID[row.ID] = row
	}

	stats := &CommitStats{}
	committed := make([]*types.Concept, 0, len(approved))
	toInsert := make([]*types.Concept, 0, len(approved))
	rowByNorm := make(map[string]*types.Concept, len(approved))
	for i, a := range approved {
		id := ids[i]
		norm := types.NormalizeConceptName(a.Name)
		if prior, ok := rowByNorm[norm]; ok {
			s.log.Warn("duplicate concept name in approved batch, collapsing", "name", a.Name)
			committed = append(committed, prior)
			continue
		}
		if existing, ok := existingByID[id]; ok {
			if existing.UserID != userID {
				return nil, nil, nil, fmt.Errorf("%w: concept %s", errsx.ErrNotFound, id)
			}
			if err := s.conceptRepo.UpdateFields(ctx, tx, id, map[string]interface{}{
				"name":             a.Name,
				"normalized_name":  norm,
				"definition":       a.Definition,
				"domain":           a.Domain,
				"complexity_score": a.ComplexityScore,
				"confidence":       a.Confidence,
			}); err != nil {
				return nil, nil, nil, err
			}
			updated := *existing
			updated.Name = a.Name
			updated.NormalizedName = norm
			updated.Definition = a.Definition
			updated.Domain = a.Domain
			updated.ComplexityScore = a.ComplexityScore
			updated.Confidence = a.Confidence
			committed = append(committed, &updated)
			rowByNorm[norm] = &updated
		} else {
			row := &types.Concept{
				ID:              id,
				UserID:          userID,
				Name:            a.Name,
				NormalizedName:  norm,
				Definition:      a.Definition,
				Domain:          a.Domain,
				ComplexityScore: a.ComplexityScore,
				Confidence:      a.Confidence,
			}
			toInsert = append(toInsert, row)
			committed = append(committed, row)
			rowByNorm[norm] = row
		}
		stats.ConceptsCreated++
	}
	if _, err := s.conceptRepo.Create(ctx, tx, toInsert); err != nil {
		return nil, nil, nil, err
	}

	newEdges, err := s.linkRelated(ctx, tx, userID, approved, committed)
	if err != nil {
		return nil, nil, nil, err
	}
	stats.RelationshipsCreated = len(newEdges)
	return stats, committed, newEdges, nil
}

// linkRelated creates a related edge for every approved concept whose
// related_concepts hint names another concept of the same user, either
// one committed in this batch or one already in the graph. Hints that
// resolve nowhere are ignored.
func (s *reviewSessionService) linkRelated(ctx context.Context, tx *gorm.DB, userID uuid.UUID, approved []ApprovedConcept, committed []*types.Concept) ([]*types.ConceptEdge, error) {
	idByNorm := make(map[string]uuid.UUID, len(committed))
	for _, c := range committed {
		idByNorm[c.NormalizedName] = c.ID
	}

	var unresolved []string
	for _, a := range approved {
		for _, rel := range a.RelatedConcepts {
			norm := types.NormalizeConceptName(rel)
			if norm == "" {
				continue
			}
			if _, ok := idByNorm[norm]; !ok {
				unresolved = append(unresolved, norm)
			}
		}
	}
	if len(unresolved) > 0 {
		rows, err := s.conceptRepo.GetByNormalizedNames(ctx, tx, userID, unresolved)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			idByNorm[row.NormalizedName] = row.ID
		}
	}

	involved := make([]uuid.UUID, 0, len(committed))
	for _, c := range committed {
		involved = append(involved, c.ID)
	}
	existingEdges, err := s.edgeRepo.GetByConceptIDs(ctx, tx, involved)
	if err != nil {
		return nil, err
	}
	seen := make(map[[2]uuid.UUID]bool, len(existingEdges))
	for _, e := range existingEdges {
		seen[[2]uuid.UUID{e.FromConceptID, e.ToConceptID}] = true
		seen[[2]uuid.UUID{e.ToConceptID, e.FromConceptID}] = true
	}

	var edges []*types.ConceptEdge
	for i, a := range approved {
		fromID := committed[i].ID
		for _, rel := range a.RelatedConcepts {
			toID, ok := idByNorm[types.NormalizeConceptName(rel)]
			if !ok || toID == fromID {
				continue
			}
			pair := [2]uuid.UUID{fromID, toID}
			if seen[pair] {
				continue
			}
			seen[pair] = true
			seen[[2]uuid.UUID{toID, fromID}] = true
			edges = append(edges, &types.ConceptEdge{
				ID:            uuid.New(),
				UserID:        userID,
				FromConceptID: fromID,
				ToConceptID:   toID,
				EdgeType:      types.EdgeTypeRelated,
			})
		}
	}
	if _, err := s.edgeRepo.Create(ctx, tx, edges); err != nil {
		return nil, err
	}
	return edges, nil
}

// fanOut runs the post-commit side effects. The Postgres commit is
// already durable, so failures here degrade the mirror and the event
// stream, not the data.
func (s *reviewSessionService) fanOut(ctx context.Context, userID, sessionID uuid.UUID, stats *CommitStats, committed []*types.Concept, newEdges []*types.ConceptEdge) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return graph.SyncUserConceptGraph(gctx, s.neo4j, s.log, userID, committed, newEdges)
	})
	g.Go(func() error {
		if s.notifier != nil {
			s.notifier.SessionApproved(gctx, userID, sessionID, stats.ConceptsCreated, stats.RelationshipsCreated)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("post-approve fan-out failed", "session_id", sessionID, "error", err)
	}
}

func (s *reviewSessionService) syncGraph(ctx context.Context, userID uuid.UUID, committed []*types.Concept, newEdges []*types.ConceptEdge) {
	if err := graph.SyncUserConceptGraph(ctx, s.neo4j, s.log, userID, committed, newEdges); err != nil {
		s.log.Warn("neo4j sync failed", "error", err)
	}
}
