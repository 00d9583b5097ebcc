package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nelc/HCx-sub001/internal/logger"
	pkgerrors "github.com/nelc/HCx-sub001/internal/pkg/errors"
	"github.com/nelc/HCx-sub001/internal/repos"
	"github.com/nelc/HCx-sub001/internal/scoring"
	"github.com/nelc/HCx-sub001/internal/types"
)

// AssessmentService runs the accumulation half of the pipeline: fold an
// assignment's responses into persisted per-skill results and an overall
// score. SkillResults must be durably persisted before any recommendation
// computation for the same assignment is considered valid, so everything
// here happens in one transaction.
type AssessmentService interface {
	ScoreSubmission(ctx context.Context, assignmentID uuid.UUID) (*SubmissionResult, error)
	GetResults(ctx context.Context, assignmentID uuid.UUID) (*SubmissionResult, error)
}

type SubmissionResult struct {
	AssignmentID uuid.UUID             `json:"assignment_id"`
	OverallScore int                   `json:"overall_score"`
	Category     scoring.Category      `json:"category"`
	Skills       []*types.SkillResult  `json:"skills"`
}

type assessmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	assignmentRepo repos.ExamAssignmentRepo
	questionRepo   repos.QuestionRepo
	responseRepo   repos.ResponseRepo
	skillResultRepo repos.SkillResultRepo
}

func NewAssessmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	assignmentRepo repos.ExamAssignmentRepo,
	questionRepo repos.QuestionRepo,
	responseRepo repos.ResponseRepo,
	skillResultRepo repos.SkillResultRepo,
) AssessmentService {
	return &assessmentService{
		db:              db,
		log:             baseLog.With("service", "AssessmentService"),
		assignmentRepo:  assignmentRepo,
		questionRepo:    questionRepo,
		responseRepo:    responseRepo,
		skillResultRepo: skillResultRepo,
	}
}

func (s *assessmentService) ScoreSubmission(ctx context.Context, assignmentID uuid.UUID) (*SubmissionResult, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, nil, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	if assignment == nil {
		return nil, pkgerrors.ErrNotFound
	}
	// Re-scoring a scored assignment is idempotent by upsert; scoring a
	// draft is a state error.
	if assignment.Status == types.AssignmentStatusDraft {
		return nil, pkgerrors.ErrConflict
	}

	questions, err := s.questionRepo.ListByExam(ctx, nil, assignment.ExamID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	responses, err := s.responseRepo.ListByAssignment(ctx, nil, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}

	questionsByID := make(map[uuid.UUID]*types.Question, len(questions))
	for _, q := range questions {
		questionsByID[q.ID] = q
	}

	outcomes := scoring.AggregateSkills(questionsByID, responses)
	overall := scoring.OverallScore(outcomes)

	results := make([]*types.SkillResult, 0, len(outcomes))
	for _, o := range outcomes {
		results = append(results, &types.SkillResult{
			AssignmentID:  assignmentID,
			SkillID:       o.SkillID,
			Score:         o.Score,
			Level:         o.Level,
			GapPercentage: o.GapPercentage,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.skillResultRepo.UpsertBatch(ctx, tx, results); err != nil {
			return fmt.Errorf("persist skill results: %w", err)
		}
		if err := s.assignmentRepo.MarkScored(ctx, tx, assignmentID, overall); err != nil {
			return fmt.Errorf("mark assignment scored: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("assignment scored",
		"assignment_id", assignmentID,
		"skills", len(results),
		"overall", overall,
	)
	return &SubmissionResult{
		AssignmentID: assignmentID,
		OverallScore: overall,
		Category:     scoring.Categorize(overall),
		Skills:       results,
	}, nil
}

func (s *assessmentService) GetResults(ctx context.Context, assignmentID uuid.UUID) (*SubmissionResult, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, nil, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	if assignment == nil {
		return nil, pkgerrors.ErrNotFound
	}
	if assignment.Status != types.AssignmentStatusScored || assignment.OverallScore == nil {
		return nil, pkgerrors.ErrConflict
	}
	results, err := s.skillResultRepo.ListByAssignment(ctx, nil, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load skill results: %w", err)
	}
	return &SubmissionResult{
		AssignmentID: assignmentID,
		OverallScore: *assignment.OverallScore,
		Category:     scoring.Categorize(*assignment.OverallScore),
		Skills:       results,
	}, nil
}
