package scoring

import (
	"testing"

	"github.com/nelc/HCx-sub001/internal/types"
)

func TestCategorize_Bands(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, CategoryBeginner},
		{39, CategoryBeginner},
		{40, CategoryIntermediate},
		{69, CategoryIntermediate},
		{70, CategoryAdvanced},
		{100, CategoryAdvanced},
	}
	for _, tc := range cases {
		if got := Categorize(tc.score); got.Name != tc.want {
			t.Fatalf("score %d: expected %s, got %s", tc.score, tc.want, got.Name)
		}
	}
}

func TestCategorize_Idempotent(t *testing.T) {
	for score := 0; score <= 100; score++ {
		first := Categorize(score)
		second := Categorize(score)
		if first.Name != second.Name || first.RecommendedDifficulty != second.RecommendedDifficulty {
			t.Fatalf("score %d: categorization not stable", score)
		}
	}
}

func TestCategory_AllowedDifficulties(t *testing.T) {
	adv := Categorize(85)
	if len(adv.AllowedDifficulties) != 3 {
		t.Fatalf("advanced should see all 3 difficulties, got %v", adv.AllowedDifficulties)
	}
	inter := Categorize(50)
	if inter.Allows(types.DifficultyAdvanced) {
		t.Fatalf("intermediate must not be shown advanced material")
	}
	if !inter.Allows(types.DifficultyBeginner) {
		t.Fatalf("intermediate may be shown beginner material")
	}
	beg := Categorize(10)
	if !beg.Allows("") {
		t.Fatalf("unknown difficulty is never filtered")
	}
	if beg.Allows(types.DifficultyIntermediate) {
		t.Fatalf("beginner only sees beginner material")
	}
}
