package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/nelc/HCx-sub001/internal/logger"
	pkgerrors "github.com/nelc/HCx-sub001/internal/pkg/errors"
	"github.com/nelc/HCx-sub001/internal/types"
)

func mustJSON(t *testing.T, v any) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return datatypes.JSON(raw)
}

func TestScoreSubmission(t *testing.T) {
	examID := uuid.New()
	assignmentID := uuid.New()
	skillA := uuid.New()
	skillB := uuid.New()
	mcqID := uuid.New()
	ratingID := uuid.New()

	assignmentRepo := &fakeAssignmentRepo{
		assignments: map[uuid.UUID]*types.ExamAssignment{
			assignmentID: {ID: assignmentID, ExamID: examID, Status: types.AssignmentStatusSubmitted},
		},
	}
	questionRepo := &fakeQuestionRepo{questions: []*types.Question{
		{
			ID: mcqID, ExamID: examID, Type: types.QuestionTypeMCQ, Weight: 1, SkillID: &skillA,
			Options: mustJSON(t, []types.QuestionOption{
				{Value: "a", Score: 10, IsCorrect: true},
				{Value: "b", Score: 0},
			}),
		},
		{ID: ratingID, ExamID: examID, Type: types.QuestionTypeSelfRating, Weight: 1, SkillID: &skillB},
	}}
	responseRepo := &fakeResponseRepo{responses: []*types.Response{
		{AssignmentID: assignmentID, QuestionID: mcqID, RawValue: "a"},
		{AssignmentID: assignmentID, QuestionID: ratingID, RawValue: "3"},
	}}
	resultRepo := &fakeSkillResultRepo{}

	svc := NewAssessmentService(testDB(t), logger.NewNop(), assignmentRepo, questionRepo, responseRepo, resultRepo)

	result, err := svc.ScoreSubmission(context.Background(), assignmentID)
	if err != nil {
		t.Fatalf("ScoreSubmission: %v", err)
	}
	// skill A: 10/10 -> 100, skill B: 3/10 -> 30, overall mean 65.
	if result.OverallScore != 65 {
		t.Fatalf("overall = %d, want 65", result.OverallScore)
	}
	if result.Category.Name != "intermediate" {
		t.Fatalf("category = %q, want intermediate", result.Category.Name)
	}
	if len(result.Skills) != 2 {
		t.Fatalf("got %d skill results, want 2", len(result.Skills))
	}
	byID := map[uuid.UUID]*types.SkillResult{}
	for _, r := range result.Skills {
		byID[r.SkillID] = r
	}
	if a := byID[skillA]; a == nil || a.Score != 100 || a.Level != types.SkillLevelHigh || a.GapPercentage != 0 {
		t.Fatalf("skill A result = %+v", a)
	}
	if b := byID[skillB]; b == nil || b.Score != 30 || b.Level != types.SkillLevelLow || b.GapPercentage != 70 {
		t.Fatalf("skill B result = %+v", b)
	}

	if len(resultRepo.upserts) != 1 {
		t.Fatalf("got %d upsert batches, want 1", len(resultRepo.upserts))
	}
	if len(assignmentRepo.markScoredCalls) != 1 {
		t.Fatalf("got %d MarkScored calls, want 1", len(assignmentRepo.markScoredCalls))
	}
	if call := assignmentRepo.markScoredCalls[0]; call.id != assignmentID || call.overall != 65 {
		t.Fatalf("MarkScored call = %+v", call)
	}
}

func TestScoreSubmissionRescoreIsIdempotent(t *testing.T) {
	examID := uuid.New()
	assignmentID := uuid.New()
	skillID := uuid.New()
	questionID := uuid.New()

	assignmentRepo := &fakeAssignmentRepo{
		assignments: map[uuid.UUID]*types.ExamAssignment{
			assignmentID: {ID: assignmentID, ExamID: examID, Status: types.AssignmentStatusScored},
		},
	}
	questionRepo := &fakeQuestionRepo{questions: []*types.Question{
		{ID: questionID, ExamID: examID, Type: types.QuestionTypeSelfRating, Weight: 1, SkillID: &skillID},
	}}
	responseRepo := &fakeResponseRepo{responses: []*types.Response{
		{AssignmentID: assignmentID, QuestionID: questionID, RawValue: "7"},
	}}
	resultRepo := &fakeSkillResultRepo{}

	svc := NewAssessmentService(testDB(t), logger.NewNop(), assignmentRepo, questionRepo, responseRepo, resultRepo)

	first, err := svc.ScoreSubmission(context.Background(), assignmentID)
	if err != nil {
		t.Fatalf("first ScoreSubmission: %v", err)
	}
	second, err := svc.ScoreSubmission(context.Background(), assignmentID)
	if err != nil {
		t.Fatalf("second ScoreSubmission: %v", err)
	}
	if first.OverallScore != second.OverallScore {
		t.Fatalf("re-score changed overall: %d vs %d", first.OverallScore, second.OverallScore)
	}
	if len(resultRepo.upserts) != 2 {
		t.Fatalf("got %d upsert batches, want 2", len(resultRepo.upserts))
	}
	if len(resultRepo.upserts[0]) != len(resultRepo.upserts[1]) {
		t.Fatalf("re-score changed result count")
	}
}

func TestScoreSubmissionDraftConflicts(t *testing.T) {
	assignmentID := uuid.New()
	assignmentRepo := &fakeAssignmentRepo{
		assignments: map[uuid.UUID]*types.ExamAssignment{
			assignmentID: {ID: assignmentID, Status: types.AssignmentStatusDraft},
		},
	}
	svc := NewAssessmentService(testDB(t), logger.NewNop(), assignmentRepo, &fakeQuestionRepo{}, &fakeResponseRepo{}, &fakeSkillResultRepo{})

	_, err := svc.ScoreSubmission(context.Background(), assignmentID)
	if !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestScoreSubmissionUnknownAssignment(t *testing.T) {
	svc := NewAssessmentService(testDB(t), logger.NewNop(), &fakeAssignmentRepo{assignments: map[uuid.UUID]*types.ExamAssignment{}}, &fakeQuestionRepo{}, &fakeResponseRepo{}, &fakeSkillResultRepo{})

	_, err := svc.ScoreSubmission(context.Background(), uuid.New())
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestScoreSubmissionPersistFailureAborts(t *testing.T) {
	examID := uuid.New()
	assignmentID := uuid.New()
	skillID := uuid.New()
	questionID := uuid.New()

	assignmentRepo := &fakeAssignmentRepo{
		assignments: map[uuid.UUID]*types.ExamAssignment{
			assignmentID: {ID: assignmentID, ExamID: examID, Status: types.AssignmentStatusSubmitted},
		},
	}
	questionRepo := &fakeQuestionRepo{questions: []*types.Question{
		{ID: questionID, ExamID: examID, Type: types.QuestionTypeSelfRating, Weight: 1, SkillID: &skillID},
	}}
	responseRepo := &fakeResponseRepo{responses: []*types.Response{
		{AssignmentID: assignmentID, QuestionID: questionID, RawValue: "5"},
	}}
	resultRepo := &fakeSkillResultRepo{upsertErr: errors.New("disk full")}

	svc := NewAssessmentService(testDB(t), logger.NewNop(), assignmentRepo, questionRepo, responseRepo, resultRepo)

	if _, err := svc.ScoreSubmission(context.Background(), assignmentID); err == nil {
		t.Fatalf("expected error when persistence fails")
	}
	// The assignment must not be marked scored if results were not stored.
	if len(assignmentRepo.markScoredCalls) != 0 {
		t.Fatalf("MarkScored called despite failed persistence")
	}
}

func TestGetResults(t *testing.T) {
	assignmentID := uuid.New()
	overall := 82
	assignmentRepo := &fakeAssignmentRepo{
		assignments: map[uuid.UUID]*types.ExamAssignment{
			assignmentID: {ID: assignmentID, Status: types.AssignmentStatusScored, OverallScore: &overall},
		},
	}
	resultRepo := &fakeSkillResultRepo{byAssignment: []*types.SkillResult{
		{AssignmentID: assignmentID, SkillID: uuid.New(), Score: 82, Level: types.SkillLevelHigh, GapPercentage: 18},
	}}
	svc := NewAssessmentService(testDB(t), logger.NewNop(), assignmentRepo, &fakeQuestionRepo{}, &fakeResponseRepo{}, resultRepo)

	result, err := svc.GetResults(context.Background(), assignmentID)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}
	if result.OverallScore != 82 || result.Category.Name != "advanced" {
		t.Fatalf("result = overall %d category %q", result.OverallScore, result.Category.Name)
	}
	if len(result.Skills) != 1 {
		t.Fatalf("got %d skills, want 1", len(result.Skills))
	}
}

func TestGetResultsUnscoredConflicts(t *testing.T) {
	assignmentID := uuid.New()
	assignmentRepo := &fakeAssignmentRepo{
		assignments: map[uuid.UUID]*types.ExamAssignment{
			assignmentID: {ID: assignmentID, Status: types.AssignmentStatusSubmitted},
		},
	}
	svc := NewAssessmentService(testDB(t), logger.NewNop(), assignmentRepo, &fakeQuestionRepo{}, &fakeResponseRepo{}, &fakeSkillResultRepo{})

	_, err := svc.GetResults(context.Background(), assignmentID)
	if !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}
