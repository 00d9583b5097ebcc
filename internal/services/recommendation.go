package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nelc/HCx-sub001/internal/logger"
	pkgerrors "github.com/nelc/HCx-sub001/internal/pkg/errors"
	"github.com/nelc/HCx-sub001/internal/recommend"
	"github.com/nelc/HCx-sub001/internal/repos"
	"github.com/nelc/HCx-sub001/internal/scoring"
	"github.com/nelc/HCx-sub001/internal/types"
)

// enrichmentConcurrency bounds the LLM fan-out across candidate courses.
const enrichmentConcurrency = 4

// enrichmentTimeout bounds each external enrichment call so collaborator
// slowness can never block the numeric pipeline indefinitely.
const enrichmentTimeout = 10 * time.Second

// RecommendationService runs the read half of the pipeline: derive gaps
// from persisted SkillResults, match them against the catalog, and rank
// the hits into deduplicated, explainable sections.
type RecommendationService interface {
	GetRecommendations(ctx context.Context, userID uuid.UUID, opts RecommendationOptions) (*RecommendationSet, error)
	UpdateStatus(ctx context.Context, userID, courseID uuid.UUID, status string) error
}

// RecommendationOptions carries the inputs owned by the surrounding
// application: the visibility allow-list (fail-closed) and the optional
// interest/career skill names for the secondary sections.
type RecommendationOptions struct {
	AllowedCourseIDs []uuid.UUID
	InterestSkills   []string
	CareerSkills     []string
	Policy           recommend.Policy
}

type RecommendationSet struct {
	UserID       uuid.UUID           `json:"user_id"`
	OverallScore int                 `json:"overall_score"`
	Category     scoring.Category    `json:"category"`
	Gaps         []scoring.Gap       `json:"gaps"`
	Sections     []recommend.Section `json:"sections"`
}

type recommendationService struct {
	db             *gorm.DB
	log            *logger.Logger
	assignmentRepo repos.ExamAssignmentRepo
	skillResultRepo repos.SkillResultRepo
	skillRepo      repos.SkillRepo
	courseRepo     repos.CourseRepo
	recordRepo     repos.RecommendationRecordRepo
	llm            LLMClient
	graph          CourseGraphService
	cfg            recommend.Config
}

func NewRecommendationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	assignmentRepo repos.ExamAssignmentRepo,
	skillResultRepo repos.SkillResultRepo,
	skillRepo repos.SkillRepo,
	courseRepo repos.CourseRepo,
	recordRepo repos.RecommendationRecordRepo,
	llm LLMClient,
	graph CourseGraphService,
	cfg recommend.Config,
) RecommendationService {
	return &recommendationService{
		db:              db,
		log:             baseLog.With("service", "RecommendationService"),
		assignmentRepo:  assignmentRepo,
		skillResultRepo: skillResultRepo,
		skillRepo:       skillRepo,
		courseRepo:      courseRepo,
		recordRepo:      recordRepo,
		llm:             llm,
		graph:           graph,
		cfg:             cfg,
	}
}

func (s *recommendationService) GetRecommendations(ctx context.Context, userID uuid.UUID, opts RecommendationOptions) (*RecommendationSet, error) {
	policy := opts.Policy
	if policy == "" {
		policy = s.cfg.DefaultPolicy
	}
	weights := s.cfg.WeightsFor(policy)

	assignment, results, err := s.latestScoredResults(ctx, userID)
	if err != nil {
		return nil, err
	}

	overall := 0
	if assignment.OverallScore != nil {
		overall = *assignment.OverallScore
	}
	category := scoring.Categorize(overall)

	skillIDs := make([]uuid.UUID, 0, len(results))
	for _, r := range results {
		skillIDs = append(skillIDs, r.SkillID)
	}
	names, err := s.skillRepo.NameMap(ctx, nil, skillIDs)
	if err != nil {
		return nil, fmt.Errorf("load skill names: %w", err)
	}
	gaps := scoring.PrioritizeGaps(results, names)

	set := &RecommendationSet{
		UserID:       userID,
		OverallScore: overall,
		Category:     category,
		Gaps:         gaps,
	}
	// No gaps means empty sections, not an error.
	if len(gaps) == 0 {
		set.Sections = emptySections()
		return set, nil
	}

	catalog, err := s.courseRepo.ListCatalog(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	s.enrichCatalog(ctx, catalog)

	examName, examNameAr := "", ""
	if assignment.Exam != nil {
		examName = assignment.Exam.Name
		examNameAr = assignment.Exam.NameAr
	}

	gapSection := s.buildSection(ctx, recommend.SectionGapBased, gaps, catalog, category, policy, weights, examName, examNameAr)
	interestSection := s.buildSection(ctx, recommend.SectionInterestBased, syntheticGaps(opts.InterestSkills), catalog, category, policy, weights, examName, examNameAr)
	careerSection := s.buildSection(ctx, recommend.SectionCareerBased, syntheticGaps(opts.CareerSkills), catalog, category, policy, weights, examName, examNameAr)

	allowed := make(map[uuid.UUID]bool, len(opts.AllowedCourseIDs))
	for _, id := range opts.AllowedCourseIDs {
		allowed[id] = true
	}
	set.Sections = recommend.AssembleSections(
		[]recommend.Section{gapSection, interestSection, careerSection},
		allowed,
	)

	if err := s.persistProposed(ctx, userID, set.Sections); err != nil {
		// Snapshot persistence is best-effort; the computed list is the
		// product, not the record.
		s.log.Warn("failed to persist proposed recommendations", "user_id", userID, "error", err)
	}
	return set, nil
}

func (s *recommendationService) latestScoredResults(ctx context.Context, userID uuid.UUID) (*types.ExamAssignment, []*types.SkillResult, error) {
	assignments, err := s.assignmentRepo.ListScoredByUser(ctx, nil, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load assignments: %w", err)
	}
	if len(assignments) == 0 {
		return nil, nil, pkgerrors.ErrNotFound
	}
	latest := assignments[0]
	results, err := s.skillResultRepo.ListByAssignment(ctx, nil, latest.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load skill results: %w", err)
	}
	return latest, results, nil
}

func (s *recommendationService) buildSection(
	ctx context.Context,
	name string,
	gaps []scoring.Gap,
	catalog []*types.Course,
	category scoring.Category,
	policy recommend.Policy,
	weights recommend.Weights,
	examName, examNameAr string,
) recommend.Section {
	if len(gaps) == 0 {
		return recommend.Section{Name: name, Items: []recommend.Recommendation{}}
	}
	matches := recommend.Match(gaps, catalog, category)

	var graphScores map[uuid.UUID]float64
	if policy == recommend.PolicyEnrichedFiveFactor && s.graph != nil && len(matches) > 0 {
		courseIDs := make([]uuid.UUID, 0, len(matches))
		for id := range matches {
			courseIDs = append(courseIDs, id)
		}
		skillNames := make([]string, 0, len(gaps))
		for _, g := range gaps {
			skillNames = append(skillNames, g.SkillName)
		}
		scores, err := s.graph.RelatednessScores(ctx, courseIDs, skillNames)
		if err != nil {
			s.log.Warn("graph enrichment unavailable", "section", name, "error", err)
		} else {
			graphScores = scores
		}
	}

	items := recommend.Rank(matches, len(gaps), category, policy, weights, graphScores)
	for i := range items {
		exact := false
		if info := matches[items[i].CourseID]; info != nil && info.Course != nil {
			exact = info.Course.DifficultyLevel == category.RecommendedDifficulty
		}
		items[i].ReasonAr, items[i].ReasonEn = recommend.ComposeReason(recommend.ReasonInput{
			ExamName:        examName,
			ExamNameAr:      examNameAr,
			MatchedSkills:   items[i].MatchingSkills,
			ExactDifficulty: exact,
		})
	}
	return recommend.Section{Name: name, Items: items}
}

// enrichCatalog fills missing extracted skills via the language-model
// collaborator, fanning out with bounded concurrency. Any failure leaves
// the course unenriched; the remaining channels still apply.
func (s *recommendationService) enrichCatalog(ctx context.Context, catalog []*types.Course) {
	if s.llm == nil {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichmentConcurrency)
	for _, course := range catalog {
		if course == nil || len(course.ExtractedSkillList()) > 0 || course.Description == "" {
			continue
		}
		c := course
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, enrichmentTimeout)
			defer cancel()
			skills, err := s.llm.ExtractSkills(callCtx, c.Name, c.Description)
			if err != nil {
				s.log.Warn("skill extraction failed, continuing without enrichment",
					"course_id", c.ID, "error", err)
				return nil
			}
			if len(skills) == 0 {
				return nil
			}
			raw, err := json.Marshal(skills)
			if err != nil {
				return nil
			}
			c.ExtractedSkills = datatypes.JSON(raw)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *recommendationService) persistProposed(ctx context.Context, userID uuid.UUID, sections []recommend.Section) error {
	var records []*types.RecommendationRecord
	for _, sec := range sections {
		for _, rec := range sec.Items {
			raw, err := json.Marshal(rec.Breakdown)
			if err != nil {
				continue
			}
			records = append(records, &types.RecommendationRecord{
				UserID:    userID,
				CourseID:  rec.CourseID,
				Section:   sec.Name,
				Score:     rec.Score,
				Breakdown: datatypes.JSON(raw),
				ReasonAr:  rec.ReasonAr,
				ReasonEn:  rec.ReasonEn,
			})
		}
	}
	return s.recordRepo.UpsertProposed(ctx, nil, records)
}

func (s *recommendationService) UpdateStatus(ctx context.Context, userID, courseID uuid.UUID, status string) error {
	switch status {
	case types.RecommendationStatusAccepted, types.RecommendationStatusDismissed:
	default:
		return pkgerrors.ErrInvalidArgument
	}
	return s.recordRepo.UpdateStatus(ctx, nil, userID, courseID, status)
}

// syntheticGaps lifts caller-supplied skill names (interest/career
// inputs from the surrounding application) into gap form so the matcher
// can treat every section uniformly. Ids are derived from the name so
// repeated requests stay deterministic.
func syntheticGaps(skillNames []string) []scoring.Gap {
	gaps := make([]scoring.Gap, 0, len(skillNames))
	for _, name := range skillNames {
		if name == "" {
			continue
		}
		gaps = append(gaps, scoring.Gap{
			SkillID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
			SkillName: name,
			GapScore:  50,
			Priority:  scoring.GapPriorityModerate,
		})
	}
	return gaps
}

func emptySections() []recommend.Section {
	return []recommend.Section{
		{Name: recommend.SectionGapBased, Items: []recommend.Recommendation{}},
		{Name: recommend.SectionInterestBased, Items: []recommend.Recommendation{}},
		{Name: recommend.SectionCareerBased, Items: []recommend.Recommendation{}},
	}
}
