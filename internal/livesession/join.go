package livesession

import (
	"time"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// Rejection reasons surfaced verbatim to the client.
const (
	ReasonSessionEnded = "Session has ended"
	ReasonLocked       = "Session is locked"
	ReasonAtCapacity   = "Session is at capacity"
	ReasonNotInvited   = "Not invited to this session"
)

// JoinContext carries the collaborator facts the engine does not own: the
// invitation lookup and participant lookup live in other services.
type JoinContext struct {
	Now                   time.Time
	HasAcceptedInvitation bool
	IsParticipant         bool
}

// JoinDecision is the tagged outcome of a join eligibility check.
type JoinDecision struct {
	CanJoin bool   `json:"can_join"`
	Reason  string `json:"reason,omitempty"`
}

// CanUserJoinSession evaluates the join checks in a fixed order, first
// failing check wins: ended/cancelled, lock gate, capacity, then access
// (accepted invite, existing participant record, guests allowed, or
// public session).
func CanUserJoinSession(session models.LiveSession, userID string, jc JoinContext) JoinDecision {
	if session.HasEnded() {
		return JoinDecision{Reason: ReasonSessionEnded}
	}

	if session.LockedUntil != nil && session.LockedUntil.After(jc.Now) {
		return JoinDecision{Reason: ReasonLocked}
	}

	if session.CurrentParticipantCount >= session.Capacity.Maximum {
		return JoinDecision{Reason: ReasonAtCapacity}
	}

	if jc.HasAcceptedInvitation || jc.IsParticipant ||
		session.Settings.AllowGuests || session.IsPublic {
		return JoinDecision{CanJoin: true}
	}

	return JoinDecision{Reason: ReasonNotInvited}
}
