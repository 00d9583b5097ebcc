package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nelc/HCx-sub001/internal/logger"
	"github.com/nelc/HCx-sub001/internal/platform/neo4jdb"
)

// CourseGraphService queries the external graph-backed course-relationship
// store for a 0-100 relatedness signal per candidate course. Traversal
// mechanics live in the graph service; this client only consumes the
// aggregate.
type CourseGraphService interface {
	RelatednessScores(ctx context.Context, courseIDs []uuid.UUID, gapSkillNames []string) (map[uuid.UUID]float64, error)
}

type courseGraphService struct {
	log     *logger.Logger
	client  *neo4jdb.Client
	timeout time.Duration
}

func NewCourseGraphService(log *logger.Logger, client *neo4jdb.Client) CourseGraphService {
	return &courseGraphService{
		log:     log.With("service", "CourseGraphService"),
		client:  client,
		timeout: 5 * time.Second,
	}
}

// RelatednessScores counts, per candidate course, graph edges from the
// course to skills named in the open gaps, scaled by 25 and capped at
// 100. A nil client or any failure returns an empty map so the caller
// degrades to "no enrichment".
func (s *courseGraphService) RelatednessScores(ctx context.Context, courseIDs []uuid.UUID, gapSkillNames []string) (map[uuid.UUID]float64, error) {
	if s.client == nil || len(courseIDs) == 0 || len(gapSkillNames) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ids := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		ids = append(ids, id.String())
	}

	session := s.client.ReadSession(ctx)
	defer func() { _ = session.Close(ctx) }()

	result, err := session.Run(ctx, `
		MATCH (c:Course)-[:TEACHES|COVERS]->(s:Skill)
		WHERE c.id IN $ids AND toLower(s.name) IN $skills
		RETURN c.id AS course_id, count(DISTINCT s) AS hits
	`, map[string]any{
		"ids":    ids,
		"skills": lowerAll(gapSkillNames),
	})
	if err != nil {
		s.log.Warn("graph relatedness query failed, degrading to no enrichment", "error", err)
		return nil, nil
	}

	scores := make(map[uuid.UUID]float64)
	for result.Next(ctx) {
		record := result.Record()
		rawID, _ := record.Get("course_id")
		rawHits, _ := record.Get("hits")
		idStr, ok := rawID.(string)
		if !ok {
			continue
		}
		courseID, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		hits, ok := rawHits.(int64)
		if !ok || hits <= 0 {
			continue
		}
		score := 25 * float64(hits)
		if score > 100 {
			score = 100
		}
		scores[courseID] = score
	}
	if err := result.Err(); err != nil {
		s.log.Warn("graph relatedness stream failed, degrading to no enrichment", "error", err)
		return nil, nil
	}
	return scores, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
