package scoring

import (
	"sort"

	"github.com/google/uuid"

	"github.com/nelc/HCx-sub001/internal/types"
)

const (
	GapPriorityCritical = 1 // level == low
	GapPriorityModerate = 2 // level == medium
)

// Gap is an open proficiency gap derived from a persisted SkillResult.
// Gaps are recomputed per request for freshness, never stored.
type Gap struct {
	SkillID   uuid.UUID
	SkillName string
	GapScore  int
	Priority  int
}

// PrioritizeGaps turns skill results with level != high into a gap list
// in the canonical iteration order consumed by the matcher: priority
// ascending, gap descending, then skill id ascending so ties are fully
// deterministic.
func PrioritizeGaps(results []*types.SkillResult, skillNames map[uuid.UUID]string) []Gap {
	gaps := make([]Gap, 0, len(results))
	for _, r := range results {
		if r == nil || r.Level == types.SkillLevelHigh {
			continue
		}
		priority := GapPriorityModerate
		if r.Level == types.SkillLevelLow {
			priority = GapPriorityCritical
		}
		gaps = append(gaps, Gap{
			SkillID:   r.SkillID,
			SkillName: skillNames[r.SkillID],
			GapScore:  r.GapPercentage,
			Priority:  priority,
		})
	}
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Priority != gaps[j].Priority {
			return gaps[i].Priority < gaps[j].Priority
		}
		if gaps[i].GapScore != gaps[j].GapScore {
			return gaps[i].GapScore > gaps[j].GapScore
		}
		return gaps[i].SkillID.String() < gaps[j].SkillID.String()
	})
	return gaps
}
