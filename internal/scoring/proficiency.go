package scoring

import "github.com/nelc/HCx-sub001/internal/types"

const (
	CategoryBeginner     = "beginner"
	CategoryIntermediate = "intermediate"
	CategoryAdvanced     = "advanced"
)

// Category names a proficiency band along with the course difficulty a
// learner in that band should be recommended and the ordered set of
// difficulties they may be shown at all.
type Category struct {
	Name                  string
	RecommendedDifficulty string
	AllowedDifficulties   []string
}

var (
	categoryBeginner = Category{
		Name:                  CategoryBeginner,
		RecommendedDifficulty: types.DifficultyBeginner,
		AllowedDifficulties:   []string{types.DifficultyBeginner},
	}
	categoryIntermediate = Category{
		Name:                  CategoryIntermediate,
		RecommendedDifficulty: types.DifficultyIntermediate,
		AllowedDifficulties:   []string{types.DifficultyIntermediate, types.DifficultyBeginner},
	}
	categoryAdvanced = Category{
		Name:                  CategoryAdvanced,
		RecommendedDifficulty: types.DifficultyAdvanced,
		AllowedDifficulties:   []string{types.DifficultyAdvanced, types.DifficultyIntermediate, types.DifficultyBeginner},
	}
)

// Categorize maps a 0-100 overall score to its proficiency band.
// Pure lookup; idempotent under repeated calls.
func Categorize(score int) Category {
	switch {
	case score >= 70:
		return categoryAdvanced
	case score >= 40:
		return categoryIntermediate
	default:
		return categoryBeginner
	}
}

// Allows reports whether the category permits showing the given course
// difficulty. Unknown/unset difficulties are always allowed; they are
// handled by scoring, not filtering.
func (c Category) Allows(difficulty string) bool {
	if difficulty == "" {
		return true
	}
	for _, d := range c.AllowedDifficulties {
		if d == difficulty {
			return true
		}
	}
	return false
}
