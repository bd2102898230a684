package progress

import "math"

// Weights control how much each completion axis contributes to the overall
// percentage. Axes without underlying data are skipped and the result is
// renormalised over the weights actually used, so a lesson with no
// assessment is not dragged down by the missing axis.
type Weights struct {
	Content      float64
	Time         float64
	Assessments  float64
	Interactions float64
}

// DefaultWeights are the workbook defaults.
var DefaultWeights = Weights{Content: 0.4, Time: 0.2, Assessments: 0.3, Interactions: 0.1}

// PercentageInput is the snapshot the percentage calculation reads.
type PercentageInput struct {
	LessonsCompleted      int
	TotalLessons          int
	AssessmentScore       *float64 // 0-100
	InteractionsCompleted int
	TotalInteractions     int
	RawProgress           *float64 // 0-100 normalized position within the content
}

// CompletionPercent computes the weighted completion percentage (0-100).
//
// The Time weight intentionally reads RawProgress rather than elapsed time,
// matching the behaviour the workbook has always shipped with. Switching it
// to a genuine time axis changes every stored completion rate, so it stays
// as-is until product decides otherwise.
func CompletionPercent(in PercentageInput, w Weights) float64 {
	var sum, used float64

	if in.TotalLessons > 0 {
		ratio := clamp01(float64(in.LessonsCompleted) / float64(in.TotalLessons))
		sum += ratio * w.Content
		used += w.Content
	}

	if in.RawProgress != nil {
		sum += clamp01(*in.RawProgress/100) * w.Time
		used += w.Time
	}

	if in.AssessmentScore != nil {
		sum += clamp01(*in.AssessmentScore/100) * w.Assessments
		used += w.Assessments
	}

	if in.TotalInteractions > 0 {
		ratio := clamp01(float64(in.InteractionsCompleted) / float64(in.TotalInteractions))
		sum += ratio * w.Interactions
		used += w.Interactions
	}

	if used == 0 {
		return 0
	}

	return math.Round(sum/used*10000) / 100
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
