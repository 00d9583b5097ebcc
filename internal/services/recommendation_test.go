package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nelc/HCx-sub001/internal/logger"
	pkgerrors "github.com/nelc/HCx-sub001/internal/pkg/errors"
	"github.com/nelc/HCx-sub001/internal/recommend"
	"github.com/nelc/HCx-sub001/internal/types"
)

type recFixture struct {
	userID       uuid.UUID
	assignmentID uuid.UUID
	skillID      uuid.UUID
	courseID     uuid.UUID

	assignmentRepo *fakeAssignmentRepo
	resultRepo     *fakeSkillResultRepo
	skillRepo      *fakeSkillRepo
	courseRepo     *fakeCourseRepo
	recordRepo     *fakeRecordRepo
	llm            *fakeLLM
	graph          *fakeGraph
}

// newRecFixture builds a user with one scored assignment carrying a low
// SQL result and a catalog with one intermediate course curated against
// that skill.
func newRecFixture() *recFixture {
	f := &recFixture{
		userID:       uuid.New(),
		assignmentID: uuid.New(),
		skillID:      uuid.New(),
		courseID:     uuid.New(),
	}
	overall := 50
	f.assignmentRepo = &fakeAssignmentRepo{
		scoredByUser: []*types.ExamAssignment{
			{
				ID:           f.assignmentID,
				UserID:       f.userID,
				Status:       types.AssignmentStatusScored,
				OverallScore: &overall,
				Exam:         &types.Exam{Name: "Data Skills Assessment", NameAr: "تقييم مهارات البيانات"},
			},
		},
	}
	f.resultRepo = &fakeSkillResultRepo{byAssignment: []*types.SkillResult{
		{AssignmentID: f.assignmentID, SkillID: f.skillID, Score: 30, Level: types.SkillLevelLow, GapPercentage: 70},
	}}
	f.skillRepo = &fakeSkillRepo{names: map[uuid.UUID]string{f.skillID: "SQL"}}
	f.courseRepo = &fakeCourseRepo{catalog: []*types.Course{
		{
			ID:              f.courseID,
			Name:            "Intro to Databases",
			NameAr:          "مقدمة في قواعد البيانات",
			DifficultyLevel: types.DifficultyIntermediate,
			Skills: []types.CourseSkill{
				{
					CourseID:       f.courseID,
					SkillID:        f.skillID,
					Skill:          &types.Skill{ID: f.skillID, Name: "SQL"},
					RelevanceScore: 1.0,
				},
			},
		},
	}}
	f.recordRepo = &fakeRecordRepo{}
	f.llm = &fakeLLM{}
	f.graph = &fakeGraph{}
	return f
}

func (f *recFixture) service(t *testing.T) RecommendationService {
	return NewRecommendationService(
		testDB(t), logger.NewNop(),
		f.assignmentRepo, f.resultRepo, f.skillRepo, f.courseRepo, f.recordRepo,
		f.llm, f.graph, recommend.DefaultConfig(),
	)
}

func sectionByName(t *testing.T, sections []recommend.Section, name string) recommend.Section {
	t.Helper()
	for _, s := range sections {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("section %q missing", name)
	return recommend.Section{}
}

func TestGetRecommendationsGapBased(t *testing.T) {
	f := newRecFixture()
	svc := f.service(t)

	set, err := svc.GetRecommendations(context.Background(), f.userID, RecommendationOptions{
		AllowedCourseIDs: []uuid.UUID{f.courseID},
	})
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if set.OverallScore != 50 || set.Category.Name != "intermediate" {
		t.Fatalf("overall %d category %q", set.OverallScore, set.Category.Name)
	}
	if len(set.Gaps) != 1 || set.Gaps[0].SkillName != "SQL" {
		t.Fatalf("gaps = %+v", set.Gaps)
	}

	gapSec := sectionByName(t, set.Sections, recommend.SectionGapBased)
	if len(gapSec.Items) != 1 {
		t.Fatalf("gap_based items = %d, want 1", len(gapSec.Items))
	}
	item := gapSec.Items[0]
	if item.CourseID != f.courseID || item.Source != recommend.SectionGapBased {
		t.Fatalf("item = %+v", item)
	}
	// Full coverage of the single gap, curated relevance 1.0, exact
	// difficulty: 100*.40 + 50*.30 + 0*.20 + 100*.10 = 65.
	if item.Score != 65 {
		t.Fatalf("score = %v, want 65", item.Score)
	}
	if item.ReasonEn == "" || item.ReasonAr == "" {
		t.Fatalf("missing reasons: %+v", item)
	}

	if len(f.recordRepo.proposed) != 1 || len(f.recordRepo.proposed[0]) != 1 {
		t.Fatalf("proposed snapshots = %+v", f.recordRepo.proposed)
	}
	if rec := f.recordRepo.proposed[0][0]; rec.UserID != f.userID || rec.CourseID != f.courseID {
		t.Fatalf("snapshot = %+v", rec)
	}
}

func TestGetRecommendationsFailClosedAllowList(t *testing.T) {
	f := newRecFixture()
	svc := f.service(t)

	set, err := svc.GetRecommendations(context.Background(), f.userID, RecommendationOptions{})
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	for _, sec := range set.Sections {
		if len(sec.Items) != 0 {
			t.Fatalf("section %q leaked %d items past empty allow-list", sec.Name, len(sec.Items))
		}
	}
}

func TestGetRecommendationsNoScoredAssignment(t *testing.T) {
	f := newRecFixture()
	f.assignmentRepo.scoredByUser = nil
	svc := f.service(t)

	_, err := svc.GetRecommendations(context.Background(), f.userID, RecommendationOptions{})
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetRecommendationsNoGapsEmptySections(t *testing.T) {
	f := newRecFixture()
	f.resultRepo.byAssignment = []*types.SkillResult{
		{AssignmentID: f.assignmentID, SkillID: f.skillID, Score: 90, Level: types.SkillLevelHigh, GapPercentage: 10},
	}
	svc := f.service(t)

	set, err := svc.GetRecommendations(context.Background(), f.userID, RecommendationOptions{
		AllowedCourseIDs: []uuid.UUID{f.courseID},
	})
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if len(set.Gaps) != 0 {
		t.Fatalf("gaps = %+v, want none", set.Gaps)
	}
	if len(set.Sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(set.Sections))
	}
	for _, sec := range set.Sections {
		if len(sec.Items) != 0 {
			t.Fatalf("section %q has items without gaps", sec.Name)
		}
	}
	// The catalog and the language model must not be consulted at all.
	if f.llm.extractCalls != 0 {
		t.Fatalf("llm consulted despite no gaps")
	}
}

func TestGetRecommendationsEnrichmentFailureDegrades(t *testing.T) {
	f := newRecFixture()
	// An unannotated course whose name contains the gap skill; only the
	// containment fallback can reach it, and only because enrichment
	// failed to annotate it.
	fallbackID := uuid.New()
	f.courseRepo.catalog = []*types.Course{
		{ID: fallbackID, Name: "Advanced SQL Techniques", Description: "window functions and query plans"},
	}
	f.llm.err = errors.New("upstream 503")
	svc := f.service(t)

	set, err := svc.GetRecommendations(context.Background(), f.userID, RecommendationOptions{
		AllowedCourseIDs: []uuid.UUID{fallbackID},
	})
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if f.llm.extractCalls == 0 {
		t.Fatalf("enrichment never attempted")
	}
	gapSec := sectionByName(t, set.Sections, recommend.SectionGapBased)
	if len(gapSec.Items) != 1 || gapSec.Items[0].CourseID != fallbackID {
		t.Fatalf("fallback match missing: %+v", gapSec.Items)
	}
}

func TestGetRecommendationsEnrichedPolicyUsesGraph(t *testing.T) {
	f := newRecFixture()
	f.graph.scores = map[uuid.UUID]float64{f.courseID: 100}
	svc := f.service(t)

	set, err := svc.GetRecommendations(context.Background(), f.userID, RecommendationOptions{
		AllowedCourseIDs: []uuid.UUID{f.courseID},
		Policy:           recommend.PolicyEnrichedFiveFactor,
	})
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if f.graph.calls == 0 {
		t.Fatalf("graph never consulted under enriched policy")
	}
	gapSec := sectionByName(t, set.Sections, recommend.SectionGapBased)
	if len(gapSec.Items) != 1 {
		t.Fatalf("gap_based items = %d, want 1", len(gapSec.Items))
	}
	item := gapSec.Items[0]
	if item.Breakdown.Graph != 100 {
		t.Fatalf("graph sub-score = %v, want 100", item.Breakdown.Graph)
	}
	// 100*.35 + 50*.25 + 0*.15 + 100*.10 + 100*.15 = 72.5.
	if item.Score != 72.5 {
		t.Fatalf("score = %v, want 72.5", item.Score)
	}
}

func TestGetRecommendationsBasicPolicySkipsGraph(t *testing.T) {
	f := newRecFixture()
	f.graph.scores = map[uuid.UUID]float64{f.courseID: 100}
	svc := f.service(t)

	_, err := svc.GetRecommendations(context.Background(), f.userID, RecommendationOptions{
		AllowedCourseIDs: []uuid.UUID{f.courseID},
	})
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if f.graph.calls != 0 {
		t.Fatalf("graph consulted under basic policy")
	}
}

func TestGetRecommendationsCrossSectionDedupe(t *testing.T) {
	f := newRecFixture()
	svc := f.service(t)

	// The interest input names the same skill the gap already covers, so
	// the same course ranks in both candidate lists.
	set, err := svc.GetRecommendations(context.Background(), f.userID, RecommendationOptions{
		AllowedCourseIDs: []uuid.UUID{f.courseID},
		InterestSkills:   []string{"SQL"},
	})
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	gapSec := sectionByName(t, set.Sections, recommend.SectionGapBased)
	interestSec := sectionByName(t, set.Sections, recommend.SectionInterestBased)
	if len(gapSec.Items) != 1 {
		t.Fatalf("gap_based items = %d, want 1", len(gapSec.Items))
	}
	if len(interestSec.Items) != 0 {
		t.Fatalf("course surfaced twice: interest_based has %d items", len(interestSec.Items))
	}
}

func TestUpdateStatus(t *testing.T) {
	f := newRecFixture()
	svc := f.service(t)
	courseID := uuid.New()

	if err := svc.UpdateStatus(context.Background(), f.userID, courseID, types.RecommendationStatusAccepted); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if len(f.recordRepo.statusCalls) != 1 {
		t.Fatalf("status calls = %d, want 1", len(f.recordRepo.statusCalls))
	}
	call := f.recordRepo.statusCalls[0]
	if call.userID != f.userID || call.courseID != courseID || call.status != types.RecommendationStatusAccepted {
		t.Fatalf("call = %+v", call)
	}

	err := svc.UpdateStatus(context.Background(), f.userID, courseID, "bookmarked")
	if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}
