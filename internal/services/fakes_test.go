package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nelc/HCx-sub001/internal/types"
)

// testDB opens an in-memory database so the services' transaction wrapper
// has something real to begin and commit against. The fakes below never
// touch it.
func testDB(t interface{ Fatalf(string, ...interface{}) }) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return db
}

type fakeAssignmentRepo struct {
	assignments map[uuid.UUID]*types.ExamAssignment
	scoredByUser []*types.ExamAssignment

	markScoredCalls []markScoredCall
	listErr         error
}

type markScoredCall struct {
	id      uuid.UUID
	overall int
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.ExamAssignment, error) {
	return f.assignments[id], nil
}

func (f *fakeAssignmentRepo) ListScoredByUser(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.ExamAssignment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.scoredByUser, nil
}

func (f *fakeAssignmentRepo) MarkScored(_ context.Context, _ *gorm.DB, id uuid.UUID, overall int) error {
	f.markScoredCalls = append(f.markScoredCalls, markScoredCall{id: id, overall: overall})
	return nil
}

type fakeQuestionRepo struct {
	questions []*types.Question
}

func (f *fakeQuestionRepo) ListByExam(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.Question, error) {
	return f.questions, nil
}

type fakeResponseRepo struct {
	responses []*types.Response
}

func (f *fakeResponseRepo) ListByAssignment(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.Response, error) {
	return f.responses, nil
}

type fakeSkillResultRepo struct {
	upserts      [][]*types.SkillResult
	byAssignment []*types.SkillResult
	upsertErr    error
}

func (f *fakeSkillResultRepo) UpsertBatch(_ context.Context, _ *gorm.DB, results []*types.SkillResult) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, results)
	f.byAssignment = results
	return nil
}

func (f *fakeSkillResultRepo) ListByAssignment(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.SkillResult, error) {
	return f.byAssignment, nil
}

type fakeSkillRepo struct {
	names map[uuid.UUID]string
}

func (f *fakeSkillRepo) ListByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.Skill, error) {
	out := make([]*types.Skill, 0, len(ids))
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			out = append(out, &types.Skill{ID: id, Name: name})
		}
	}
	return out, nil
}

func (f *fakeSkillRepo) NameMap(_ context.Context, _ *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

type fakeCourseRepo struct {
	catalog []*types.Course
}

func (f *fakeCourseRepo) ListCatalog(_ context.Context, _ *gorm.DB) ([]*types.Course, error) {
	return f.catalog, nil
}

type fakeRecordRepo struct {
	proposed    [][]*types.RecommendationRecord
	statusCalls []statusCall
}

type statusCall struct {
	userID   uuid.UUID
	courseID uuid.UUID
	status   string
}

func (f *fakeRecordRepo) UpsertProposed(_ context.Context, _ *gorm.DB, records []*types.RecommendationRecord) error {
	f.proposed = append(f.proposed, records)
	return nil
}

func (f *fakeRecordRepo) UpdateStatus(_ context.Context, _ *gorm.DB, userID, courseID uuid.UUID, status string) error {
	f.statusCalls = append(f.statusCalls, statusCall{userID: userID, courseID: courseID, status: status})
	return nil
}

func (f *fakeRecordRepo) ListByUser(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.RecommendationRecord, error) {
	return nil, nil
}

type fakeLLM struct {
	skills     []string
	err        error
	extractCalls int
}

func (f *fakeLLM) ExtractSkills(_ context.Context, _, _ string) ([]string, error) {
	f.extractCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.skills, nil
}

func (f *fakeLLM) GenerateJSON(_ context.Context, _, _, _ string, _ map[string]any) (map[string]any, error) {
	return nil, fmt.Errorf("not implemented")
}

type fakeGraph struct {
	scores map[uuid.UUID]float64
	err    error
	calls  int
}

func (f *fakeGraph) RelatednessScores(_ context.Context, _ []uuid.UUID, _ []string) (map[uuid.UUID]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.scores, nil
}
