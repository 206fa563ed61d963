package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	types "github.com/yungbote/conceptgraph-backend/internal/domain"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
	"github.com/yungbote/conceptgraph-backend/internal/platform/neo4jdb"
)

// SyncUserConceptGraph mirrors committed concepts and edges into Neo4j.
// The Postgres rows stay authoritative; the mirror is rebuilt by MERGE so
// the call is safe to repeat after a failed attempt.
func SyncUserConceptGraph(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, userID uuid.UUID, concepts []*types.Concept, edges []*types.ConceptEdge) error {
	if client == nil || client.Driver == nil {
		return nil
	}
	if userID == uuid.Nil {
		return fmt.Errorf("neo4j concept graph sync: missing userID")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	nodes := make([]map[string]any, 0, len(concepts))
	for _, c := range concepts {
		if c == nil || c.ID == uuid.Nil {
			continue
		}
		nodes = append(nodes, map[string]any{
			"id":               c.ID.String(),
			"user_id":          userID.String(),
			"name":             c.Name,
			"normalized_name":  c.NormalizedName,
			"definition":       c.Definition,
			"domain":           c.Domain,
			"complexity_score": int64(c.ComplexityScore),
			"confidence":       c.Confidence,
			"synced_at":        now,
		})
	}

	rels := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		if e == nil || e.FromConceptID == uuid.Nil || e.ToConceptID == uuid.Nil {
			continue
		}
		rels = append(rels, map[string]any{
			"id":        e.ID.String(),
			"from_id":   e.FromConceptID.String(),
			"to_id":     e.ToConceptID.String(),
			"edge_type": e.EdgeType,
			"synced_at": now,
		})
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	// Schema helpers are best-effort; they may fail for restricted users.
	if res, err := session.Run(ctx, `CREATE CONSTRAINT concept_id_unique IF NOT EXISTS FOR (c:Concept) REQUIRE c.id IS UNIQUE`, nil); err != nil {
		if log != nil {
			log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
	} else {
		_, _ = res.Consume(ctx)
	}
	if res, err := session.Run(ctx, `CREATE INDEX concept_user_idx IF NOT EXISTS FOR (c:Concept) ON (c.user_id, c.normalized_name)`, nil); err != nil {
		if log != nil {
			log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
	} else {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if len(nodes) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $nodes AS n
MERGE (c:Concept {id: n.id})
SET c += n
`, map[string]any{"nodes": nodes})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}

		if len(rels) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $rels AS r
MATCH (a:Concept {id: r.from_id})
MATCH (b:Concept {id: r.to_id})
MERGE (a)-[e:RELATED_TO]->(b)
SET e.id = r.id,
    e.edge_type = r.edge_type,
    e.synced_at = r.synced_at
`, map[string]any{"rels": rels})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4j concept graph sync: %w", err)
	}
	return nil
}
