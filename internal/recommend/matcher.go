package recommend

import (
	"strings"

	"github.com/google/uuid"

	"github.com/nelc/HCx-sub001/internal/scoring"
	"github.com/nelc/HCx-sub001/internal/types"
)

// fuzzyMatchThreshold is the token-set similarity above which a free-text
// extracted skill counts as a match.
const fuzzyMatchThreshold = 0.5

// MatchInfo accumulates, per course, the union of hits from all three
// match channels plus the evidence needed for scoring and explanations.
type MatchInfo struct {
	Course *types.Course
	// MatchedSkills holds the matched gap-skill names in canonical gap
	// order, for downstream explanation text.
	MatchedSkills []string
	// LinkRelevance is the sum of catalog relevance_score over matched
	// curated links.
	LinkRelevance float64
	// FuzzyMatches counts free-text/AI channel hits.
	FuzzyMatches int
	// FallbackOnly marks courses matched solely through the low-confidence
	// name/description containment channel.
	FallbackOnly bool

	matchedGaps map[uuid.UUID]struct{}
}

// Coverage is the number of distinct gap skills this course addresses.
func (m *MatchInfo) Coverage() int { return len(m.matchedGaps) }

func (m *MatchInfo) recordGap(g scoring.Gap) {
	if m.matchedGaps == nil {
		m.matchedGaps = make(map[uuid.UUID]struct{})
	}
	if _, seen := m.matchedGaps[g.SkillID]; seen {
		return
	}
	m.matchedGaps[g.SkillID] = struct{}{}
	if g.SkillName != "" {
		m.MatchedSkills = append(m.MatchedSkills, g.SkillName)
	}
}

// Match computes match sets per course for the given prioritized gaps.
// Three independent channels apply: curated catalog links, free-text
// extracted skills, and name/description containment as a last resort
// for otherwise unannotated courses.
//
// Difficulty never filters here with one exception: a declared difficulty
// strictly above the learner's category discards the course outright,
// since advanced-only material is useless to a beginner.
func Match(gaps []scoring.Gap, catalog []*types.Course, category scoring.Category) map[uuid.UUID]*MatchInfo {
	out := make(map[uuid.UUID]*MatchInfo)
	if len(gaps) == 0 {
		return out
	}
	for _, course := range catalog {
		if course == nil {
			continue
		}
		if difficultyRank(course.DifficultyLevel) > difficultyRank(category.RecommendedDifficulty) {
			continue
		}
		info := matchCourse(gaps, course)
		if info != nil {
			out[course.ID] = info
		}
	}
	return out
}

func matchCourse(gaps []scoring.Gap, course *types.Course) *MatchInfo {
	info := &MatchInfo{Course: course}
	extracted := course.ExtractedSkillList()

	// Channel 1: curated catalog links, by skill id or normalized name.
	// The name fallback exists because the same logical skill may be
	// registered under different ids in different domains.
	for _, g := range gaps {
		gapName := normalizeName(g.SkillName)
		for _, link := range course.Skills {
			if link.SkillID == g.SkillID ||
				(gapName != "" && link.Skill != nil && normalizeName(link.Skill.Name) == gapName) {
				info.recordGap(g)
				info.LinkRelevance += link.RelevanceScore
				break
			}
		}
	}

	// Channel 2: probabilistic match against free-text extracted skills.
	for _, g := range gaps {
		if g.SkillName == "" {
			continue
		}
		for _, ex := range extracted {
			if fuzzySkillMatch(g.SkillName, ex) {
				info.recordGap(g)
				info.FuzzyMatches++
				break
			}
		}
	}

	if info.Coverage() > 0 {
		return info
	}

	// Channel 3: containment fallback, only for courses with no curated
	// links and no meaningfully-extracted skills. Lowest confidence; it
	// exists to avoid empty recommendation sets.
	if len(course.Skills) == 0 && len(extracted) == 0 {
		haystack := strings.ToLower(course.Name + " " + course.Description + " " + course.Subject)
		for _, g := range gaps {
			needle := strings.ToLower(strings.TrimSpace(g.SkillName))
			if needle != "" && strings.Contains(haystack, needle) {
				info.recordGap(g)
			}
		}
		if info.Coverage() > 0 {
			info.FallbackOnly = true
			return info
		}
	}
	return nil
}

// fuzzySkillMatch declares a match when the token-set similarity exceeds
// the threshold or one string contains the other. Tolerates paraphrased
// or partially-specified skill names; treat results as probabilistic.
func fuzzySkillMatch(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return false
	}
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		return true
	}
	return tokenSetSimilarity(la, lb) > fuzzyMatchThreshold
}

// tokenSetSimilarity is intersection over union of whitespace-split
// lowercase tokens.
func tokenSetSimilarity(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}
	return set
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// difficultyRank orders the known difficulty levels; unknown or empty
// strings rank below everything so they are never discarded, only scored
// lower.
func difficultyRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case types.DifficultyBeginner:
		return 0
	case types.DifficultyIntermediate:
		return 1
	case types.DifficultyAdvanced:
		return 2
	default:
		return -1
	}
}
