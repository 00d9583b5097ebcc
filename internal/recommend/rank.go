package recommend

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/nelc/HCx-sub001/internal/scoring"
)

// Section names, in priority order for cross-section deduplication.
const (
	SectionGapBased      = "gap_based"
	SectionInterestBased = "interest_based"
	SectionCareerBased   = "career_based"
)

// Breakdown exposes the 0-100 sub-scores behind a recommendation for
// auditability.
type Breakdown struct {
	SkillMatch          float64 `json:"skill_match"`
	Relevance           float64 `json:"relevance"`
	AIMatch             float64 `json:"ai_match"`
	DifficultyAlignment float64 `json:"difficulty_alignment"`
	Graph               float64 `json:"graph,omitempty"`
}

type Recommendation struct {
	CourseID       uuid.UUID `json:"course_id"`
	CourseName     string    `json:"course_name"`
	CourseNameAr   string    `json:"course_name_ar,omitempty"`
	MatchingSkills []string  `json:"matching_skills"`
	Score          float64   `json:"recommendation_score"`
	Breakdown      Breakdown `json:"score_breakdown"`
	Source         string    `json:"source"`
	ReasonAr       string    `json:"reason_ar,omitempty"`
	ReasonEn       string    `json:"reason_en,omitempty"`

	coverage int
}

// Rank fuses the match evidence into one weighted score per course and
// sorts descending. Ties break by descending skill coverage, then by
// course id; no randomness anywhere.
//
// graphScores carries the 0-100 graph-relationship signal per course for
// the EnrichedFiveFactor policy; a nil or partial map degrades those
// courses to a zero graph sub-score.
func Rank(matches map[uuid.UUID]*MatchInfo, totalGaps int, category scoring.Category, policy Policy, w Weights, graphScores map[uuid.UUID]float64) []Recommendation {
	recs := make([]Recommendation, 0, len(matches))
	for courseID, info := range matches {
		if info == nil || info.Course == nil {
			continue
		}
		bd := Breakdown{
			SkillMatch:          skillMatchScore(info.Coverage(), totalGaps),
			Relevance:           clamp100(50 * info.LinkRelevance),
			AIMatch:             clamp100(25 * float64(info.FuzzyMatches)),
			DifficultyAlignment: difficultyAlignment(info.Course.DifficultyLevel, category),
		}
		if policy == PolicyEnrichedFiveFactor {
			bd.Graph = clamp100(graphScores[courseID])
		}
		score := bd.SkillMatch*w.SkillMatch +
			bd.Relevance*w.Relevance +
			bd.AIMatch*w.AIMatch +
			bd.DifficultyAlignment*w.DifficultyAlignment +
			bd.Graph*w.Graph
		recs = append(recs, Recommendation{
			CourseID:       courseID,
			CourseName:     info.Course.Name,
			CourseNameAr:   info.Course.NameAr,
			MatchingSkills: info.MatchedSkills,
			Score:          math.Round(score*100) / 100,
			Breakdown:      bd,
			coverage:       info.Coverage(),
		})
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		if recs[i].coverage != recs[j].coverage {
			return recs[i].coverage > recs[j].coverage
		}
		return recs[i].CourseID.String() < recs[j].CourseID.String()
	})
	return recs
}

func skillMatchScore(coverage, totalGaps int) float64 {
	if totalGaps <= 0 {
		return 0
	}
	return clamp100(100 * float64(coverage) / float64(totalGaps))
}

func difficultyAlignment(courseLevel string, category scoring.Category) float64 {
	level := normalizeName(courseLevel)
	if difficultyRank(level) < 0 {
		return 50
	}
	if level == category.RecommendedDifficulty {
		return 100
	}
	if category.Allows(level) {
		return 80
	}
	return 50
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Section is one named, ranked slice of the final output.
type Section struct {
	Name  string           `json:"name"`
	Items []Recommendation `json:"items"`
}

// AssembleSections applies the visibility allow-list and cross-section
// deduplication to ranked per-section candidates. Sections must arrive
// in priority order; a course id surfaces only in the first section that
// contains it.
//
// The allow-list is fail-closed: an empty list means nothing is shown.
// That is a deliberate safety property.
func AssembleSections(ordered []Section, allowed map[uuid.UUID]bool) []Section {
	seen := make(map[uuid.UUID]bool)
	out := make([]Section, 0, len(ordered))
	for _, sec := range ordered {
		kept := make([]Recommendation, 0, len(sec.Items))
		for _, rec := range sec.Items {
			if !allowed[rec.CourseID] {
				continue
			}
			if seen[rec.CourseID] {
				continue
			}
			seen[rec.CourseID] = true
			rec.Source = sec.Name
			kept = append(kept, rec)
		}
		out = append(out, Section{Name: sec.Name, Items: kept})
	}
	return out
}
