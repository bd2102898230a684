package livesession

import (
	"math"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// Engagement scoring caps and weights. The caps are heuristic ceilings used
// only for normalisation, not limits on the underlying counters; tune them
// here when coaching formats change.
const (
	capMessages        = 50
	capReactions       = 20
	capPolls           = 10
	capHandRaises      = 5
	capSpeakingMinutes = 30

	weightMessages   = 0.30
	weightReactions  = 0.20
	weightPolls      = 0.25
	weightHandRaises = 0.15
	weightSpeaking   = 0.10
)

// EngagementScore condenses a participant's activity counters into a 0-100
// score. Each counter is normalised against its cap, clamped to [0,1], then
// combined with the fixed weights and rounded to an integer.
func EngagementScore(p models.SessionParticipant) int {
	e := p.Engagement

	weighted := normalise(e.MessagesSent, capMessages)*weightMessages +
		normalise(e.ReactionsSent, capReactions)*weightReactions +
		normalise(e.PollsAnswered, capPolls)*weightPolls +
		normalise(e.HandRaises, capHandRaises)*weightHandRaises +
		normalise(e.SpeakingMinutes, capSpeakingMinutes)*weightSpeaking

	return int(math.Round(weighted * 100))
}

func normalise(count, ceiling int) float64 {
	if count <= 0 {
		return 0
	}
	ratio := float64(count) / float64(ceiling)
	if ratio > 1 {
		return 1
	}
	return ratio
}
