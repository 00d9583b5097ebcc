package recommend

import (
	"fmt"
	"strings"
)

// ReasonInput carries the facts the composer formats; no scoring logic
// belongs here.
type ReasonInput struct {
	ExamName        string
	ExamNameAr      string
	MatchedSkills   []string
	ExactDifficulty bool
}

// ComposeReason builds the bilingual justification strings from the
// source exam, the top 3 matched skill names, and whether the course
// difficulty exactly matches the learner's recommended difficulty.
func ComposeReason(in ReasonInput) (reasonAr, reasonEn string) {
	skills := in.MatchedSkills
	if len(skills) > 3 {
		skills = skills[:3]
	}
	examEn := strings.TrimSpace(in.ExamName)
	if examEn == "" {
		examEn = "your latest assessment"
	}
	examAr := strings.TrimSpace(in.ExamNameAr)
	if examAr == "" {
		examAr = examEn
	}

	if len(skills) == 0 {
		reasonEn = fmt.Sprintf("Recommended based on your results in %s.", examEn)
		reasonAr = fmt.Sprintf("موصى بها بناءً على نتائجك في %s.", examAr)
	} else {
		list := strings.Join(skills, ", ")
		listAr := strings.Join(skills, "، ")
		reasonEn = fmt.Sprintf("Addresses your skill gaps in %s identified in %s.", list, examEn)
		reasonAr = fmt.Sprintf("تعالج فجوات المهارات لديك في %s التي ظهرت في %s.", listAr, examAr)
	}

	if in.ExactDifficulty {
		reasonEn += " The course difficulty matches your current proficiency level."
		reasonAr += " يتوافق مستوى صعوبة الدورة مع مستوى إتقانك الحالي."
	}
	return reasonAr, reasonEn
}
