package models

import "time"

// SessionStatus enumerates the lifecycle states of a live session.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionLive      SessionStatus = "live"
	SessionEnded     SessionStatus = "ended"
	SessionCancelled SessionStatus = "cancelled"
)

// SessionCapacity bounds how many people a session can hold.
type SessionCapacity struct {
	Maximum       int `json:"maximum"`
	WaitingRoom   int `json:"waiting_room"`
	BreakoutRooms int `json:"breakout_rooms"`
}

// SessionSettings is the behaviour toggle bag configured by the host.
type SessionSettings struct {
	AllowGuests     bool `json:"allow_guests"`
	MuteOnEntry     bool `json:"mute_on_entry"`
	AllowChat       bool `json:"allow_chat"`
	AllowReactions  bool `json:"allow_reactions"`
	AllowRecording  bool `json:"allow_recording"`
	RequireApproval bool `json:"require_approval"`
}

// LiveSession is a scheduled or running coaching meeting.
// CurrentParticipantCount must never exceed Capacity.Maximum; the
// repository enforces that bound with a guarded increment.
type LiveSession struct {
	ID                      string          `gorm:"size:36;primaryKey" json:"id"`
	HostID                  string          `gorm:"size:36;not null;index" json:"host_id"`
	Title                   string          `gorm:"size:255;not null" json:"title"`
	Description             string          `gorm:"type:text" json:"description"`
	Status                  SessionStatus   `gorm:"size:32;not null;index" json:"status"`
	ScheduledStart          time.Time       `gorm:"not null" json:"scheduled_start"`
	ScheduledEnd            time.Time       `gorm:"not null" json:"scheduled_end"`
	ActualStart             *time.Time      `json:"actual_start"`
	ActualEnd               *time.Time      `json:"actual_end"`
	LockedUntil             *time.Time      `json:"locked_until"`
	IsPublic                bool            `gorm:"not null;default:false" json:"is_public"`
	CurrentParticipantCount int             `gorm:"not null;default:0" json:"current_participant_count"`
	Capacity                SessionCapacity `gorm:"embedded;embeddedPrefix:capacity_" json:"capacity"`
	Settings                SessionSettings `gorm:"embedded;embeddedPrefix:settings_" json:"settings"`
	Version                 int             `gorm:"not null;default:1" json:"version"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`

	Participants []SessionParticipant `gorm:"foreignKey:SessionID" json:"participants,omitempty"`
}

// HasEnded reports whether the session can no longer be joined at all.
func (s LiveSession) HasEnded() bool {
	return s.Status == SessionEnded || s.Status == SessionCancelled
}

// InvitationStatus tracks the recipient's answer to a session invite.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// SessionInvitation links a user to a session they were asked to attend.
// Invitations are owned by the invite workflow; the join engine only
// consumes the accepted/not-accepted fact.
type SessionInvitation struct {
	ID          string           `gorm:"size:36;primaryKey" json:"id"`
	SessionID   string           `gorm:"size:36;not null;uniqueIndex:idx_session_invitee" json:"session_id"`
	UserID      string           `gorm:"size:36;not null;uniqueIndex:idx_session_invitee" json:"user_id"`
	InvitedBy   string           `gorm:"size:36;not null" json:"invited_by"`
	Status      InvitationStatus `gorm:"size:32;not null" json:"status"`
	RespondedAt *time.Time       `json:"responded_at"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Accepted reports whether the invite grants entry.
func (i SessionInvitation) Accepted() bool {
	return i.Status == InvitationAccepted
}
