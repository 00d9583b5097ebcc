package scoring

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/nelc/HCx-sub001/internal/types"
)

// Skill classification thresholds on the 0-100 percentage scale.
const (
	LevelHighThreshold   = 70
	LevelMediumThreshold = 40
)

// skillAccumulator is the per-skill fold state. Built fresh per analysis
// run and never persisted; only the final percentage and classification
// survive as a SkillResult.
type skillAccumulator struct {
	totalWeightedScore float64
	totalWeightedMax   float64
	samples            int
}

// SkillOutcome is one skill's aggregated result, pre-persistence.
type SkillOutcome struct {
	SkillID       uuid.UUID
	Score         int
	Level         string
	GapPercentage int
	Samples       int
}

// AggregateSkills folds all scored responses of one completed assignment
// into one outcome per skill referenced by at least one response.
//
// Only the question weight is applied per response. The catalog skill
// weight is reserved for cross-skill domain aggregation and deliberately
// not used here.
//
// Output is sorted by skill id so repeated runs over the same input are
// byte-identical.
func AggregateSkills(questions map[uuid.UUID]*types.Question, responses []*types.Response) []SkillOutcome {
	acc := make(map[uuid.UUID]*skillAccumulator)
	for _, resp := range responses {
		if resp == nil {
			continue
		}
		q := questions[resp.QuestionID]
		if q == nil || q.SkillID == nil || *q.SkillID == uuid.Nil {
			continue
		}
		scored := ScoreResponse(q, resp)
		if scored.Pending {
			continue
		}
		a := acc[*q.SkillID]
		if a == nil {
			a = &skillAccumulator{}
			acc[*q.SkillID] = a
		}
		a.totalWeightedScore += scored.Score * q.Weight
		a.totalWeightedMax += scored.MaxScore * q.Weight
		a.samples++
	}

	out := make([]SkillOutcome, 0, len(acc))
	for skillID, a := range acc {
		pct := 0
		if a.totalWeightedMax > 0 {
			pct = int(math.Round(100 * a.totalWeightedScore / a.totalWeightedMax))
		}
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		out = append(out, SkillOutcome{
			SkillID:       skillID,
			Score:         pct,
			Level:         ClassifyLevel(pct),
			GapPercentage: 100 - pct,
			Samples:       a.samples,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SkillID.String() < out[j].SkillID.String()
	})
	return out
}

// ClassifyLevel maps a 0-100 percentage to a proficiency level.
func ClassifyLevel(pct int) string {
	switch {
	case pct >= LevelHighThreshold:
		return types.SkillLevelHigh
	case pct >= LevelMediumThreshold:
		return types.SkillLevelMedium
	default:
		return types.SkillLevelLow
	}
}

// OverallScore is the unweighted arithmetic mean of per-skill
// percentages. Skills with few questions count the same as skills with
// many; that symmetry is a stated policy, not an accident.
func OverallScore(outcomes []SkillOutcome) int {
	if len(outcomes) == 0 {
		return 0
	}
	sum := 0
	for _, o := range outcomes {
		sum += o.Score
	}
	return int(math.Round(float64(sum) / float64(len(outcomes))))
}
