package progress

import (
	"fmt"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// CriteriaCheck is the outcome of evaluating a lesson's completion criteria.
// Missing holds one human-readable line per unmet criterion.
type CriteriaCheck struct {
	Met     bool     `json:"met"`
	Missing []string `json:"missing"`
}

// CheckCompletionCriteria evaluates each enabled criterion independently and
// reports every unmet one. Criteria the lesson does not require are ignored.
func CheckCompletionCriteria(lp models.LessonProgress, req models.LessonRequirements) CriteriaCheck {
	missing := make([]string, 0, 4)

	if req.RequireContentView && !lp.Criteria.ViewedAllContent {
		missing = append(missing, "view all lesson content")
	}
	if req.RequireAssessment && !lp.Criteria.PassedAssessment {
		missing = append(missing, "pass the lesson assessment")
	}
	if req.RequireMinimumTime && !lp.Criteria.MetMinimumTime {
		if req.MinimumTimeMinutes > 0 {
			missing = append(missing, fmt.Sprintf("spend at least %d minutes on the lesson", req.MinimumTimeMinutes))
		} else {
			missing = append(missing, "meet the minimum time requirement")
		}
	}
	if req.RequireInteraction && !lp.Criteria.CompletedInteractions {
		missing = append(missing, "complete the required interactions")
	}

	return CriteriaCheck{Met: len(missing) == 0, Missing: missing}
}
