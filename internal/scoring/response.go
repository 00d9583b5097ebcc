// Package scoring converts raw assessment responses into normalized
// per-skill proficiency scores and gap magnitudes. Everything in this
// package is pure: no I/O, no clock, no randomness.
package scoring

import (
	"strconv"
	"strings"

	"github.com/nelc/HCx-sub001/internal/types"
)

// ResponseMaxScore is the common scale every question type normalizes to.
const ResponseMaxScore = 10.0

// Scored is the outcome of scoring a single response.
type Scored struct {
	Score    float64
	MaxScore float64
	// IsCorrect is nil when correctness is not defined for the input
	// (e.g. an unmatched mcq value or an ungraded open_text answer).
	IsCorrect *bool
	// Pending marks an open_text answer still awaiting manual grading.
	// Pending responses contribute nothing to skill aggregation.
	Pending bool
}

// ScoreResponse maps one raw response onto the common 0-10 scale.
// Malformed input never produces an error, only a conservative zero.
func ScoreResponse(q *types.Question, resp *types.Response) Scored {
	if q == nil || resp == nil {
		return Scored{MaxScore: ResponseMaxScore}
	}
	switch q.Type {
	case types.QuestionTypeMCQ:
		return scoreMCQ(q, resp.RawValue)
	case types.QuestionTypeLikert:
		return scoreLikert(resp.RawValue)
	case types.QuestionTypeSelfRating:
		return scoreSelfRating(resp.RawValue)
	case types.QuestionTypeOpenText:
		return scoreOpenText(resp)
	default:
		return Scored{MaxScore: ResponseMaxScore}
	}
}

func scoreMCQ(q *types.Question, raw string) Scored {
	opts := q.MCQOptions()
	maxScore := 0.0
	for _, o := range opts {
		if o.Score > maxScore {
			maxScore = o.Score
		}
	}
	if maxScore < ResponseMaxScore {
		maxScore = ResponseMaxScore
	}
	value := strings.TrimSpace(raw)
	for _, o := range opts {
		if o.Value == value {
			correct := o.IsCorrect
			return Scored{Score: o.Score, MaxScore: maxScore, IsCorrect: &correct}
		}
	}
	// Unselected or unknown value: zero, correctness undefined.
	return Scored{Score: 0, MaxScore: maxScore}
}

func scoreLikert(raw string) Scored {
	v, ok := parseIntValue(raw)
	if !ok || v < 1 || v > 5 {
		return Scored{Score: 0, MaxScore: ResponseMaxScore}
	}
	correct := v >= 3
	return Scored{
		Score:     float64(v-1) / 4.0 * ResponseMaxScore,
		MaxScore:  ResponseMaxScore,
		IsCorrect: &correct,
	}
}

func scoreSelfRating(raw string) Scored {
	v, ok := parseIntValue(raw)
	if !ok || v < 1 || v > 10 {
		return Scored{Score: 0, MaxScore: ResponseMaxScore}
	}
	correct := v >= 5
	return Scored{Score: float64(v), MaxScore: ResponseMaxScore, IsCorrect: &correct}
}

func scoreOpenText(resp *types.Response) Scored {
	if resp.Score == nil || resp.GradedPercentage == nil {
		return Scored{MaxScore: ResponseMaxScore, Pending: true}
	}
	score := *resp.Score
	if score < 0 {
		score = 0
	}
	if score > ResponseMaxScore {
		score = ResponseMaxScore
	}
	correct := *resp.GradedPercentage >= 50
	return Scored{Score: score, MaxScore: ResponseMaxScore, IsCorrect: &correct}
}

// parseIntValue tolerates float-formatted numerics ("3.0") since raw
// values arrive from loosely-typed frontends.
func parseIntValue(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}
