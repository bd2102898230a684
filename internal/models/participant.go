package models

import "time"

// ParticipantRole is the six-value role a participant holds in a session.
type ParticipantRole string

const (
	RoleHost        ParticipantRole = "host"
	RoleCoHost      ParticipantRole = "co_host"
	RolePresenter   ParticipantRole = "presenter"
	RoleModerator   ParticipantRole = "moderator"
	RoleParticipant ParticipantRole = "participant"
	RoleObserver    ParticipantRole = "observer"
)

// Valid reports whether the value is a known participant role.
func (r ParticipantRole) Valid() bool {
	switch r {
	case RoleHost, RoleCoHost, RolePresenter, RoleModerator, RoleParticipant, RoleObserver:
		return true
	}
	return false
}

// ParticipantPermissions is the ten-flag capability set derived from a role.
// It is never set independently: any role change replaces all ten flags.
type ParticipantPermissions struct {
	CanSpeak       bool `json:"can_speak"`
	CanShareVideo  bool `json:"can_share_video"`
	CanShareScreen bool `json:"can_share_screen"`
	CanChat        bool `json:"can_chat"`
	CanLaunchPolls bool `json:"can_launch_polls"`
	CanModerate    bool `json:"can_moderate"`
	CanRecord      bool `json:"can_record"`
	CanInvite      bool `json:"can_invite"`
	CanMute        bool `json:"can_mute"`
	CanKick        bool `json:"can_kick"`
}

// ConnectionStatus describes the transport-level state of a participant.
type ConnectionStatus string

const (
	ConnectionConnected    ConnectionStatus = "connected"
	ConnectionReconnecting ConnectionStatus = "reconnecting"
	ConnectionDisconnected ConnectionStatus = "disconnected"
)

// EngagementStats accumulates the activity counters used for scoring.
// The counters are unbounded; the scoring caps live in the engine.
type EngagementStats struct {
	MessagesSent    int `json:"messages_sent"`
	ReactionsSent   int `json:"reactions_sent"`
	PollsAnswered   int `json:"polls_answered"`
	HandRaises      int `json:"hand_raises"`
	SpeakingMinutes int `json:"speaking_minutes"`
}

// SessionParticipant is one user's membership in a live session.
type SessionParticipant struct {
	ID            string                 `gorm:"size:36;primaryKey" json:"id"`
	SessionID     string                 `gorm:"size:36;not null;uniqueIndex:idx_session_user" json:"session_id"`
	UserID        string                 `gorm:"size:36;not null;uniqueIndex:idx_session_user" json:"user_id"`
	DisplayName   string                 `gorm:"size:255" json:"display_name"`
	Role          ParticipantRole        `gorm:"size:32;not null" json:"role"`
	Permissions   ParticipantPermissions `gorm:"embedded;embeddedPrefix:perm_" json:"permissions"`
	Connection    ConnectionStatus       `gorm:"size:32;not null" json:"connection"`
	MicEnabled    bool                   `gorm:"not null;default:false" json:"mic_enabled"`
	CameraEnabled bool                   `gorm:"not null;default:false" json:"camera_enabled"`
	ScreenSharing bool                   `gorm:"not null;default:false" json:"screen_sharing"`
	Engagement    EngagementStats        `gorm:"embedded;embeddedPrefix:engagement_" json:"engagement"`
	JoinedAt      time.Time              `json:"joined_at"`
	LeftAt        *time.Time             `json:"left_at"`
	Version       int                    `gorm:"not null;default:1" json:"version"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// Active reports whether the participant currently occupies a seat.
func (p SessionParticipant) Active() bool {
	return p.LeftAt == nil
}
