// Package livesession implements the pure rules for live coaching sessions:
// role-to-permission derivation, join eligibility, engagement scoring and
// scheduling validation. The package performs no I/O; the service layer
// loads snapshots, consults these functions, and persists the outcome.
package livesession

import "github.com/c50bossio/6fb-workbook-api/internal/models"

// PermissionsForRole maps a role to its full ten-flag permission set. The
// mapping is total and pure; callers must replace the whole permission
// record on any role change so nothing elevated survives a demotion.
func PermissionsForRole(role models.ParticipantRole) models.ParticipantPermissions {
	switch role {
	case models.RoleHost:
		return models.ParticipantPermissions{
			CanSpeak:       true,
			CanShareVideo:  true,
			CanShareScreen: true,
			CanChat:        true,
			CanLaunchPolls: true,
			CanModerate:    true,
			CanRecord:      true,
			CanInvite:      true,
			CanMute:        true,
			CanKick:        true,
		}
	case models.RoleCoHost:
		return models.ParticipantPermissions{
			CanSpeak:       true,
			CanShareVideo:  true,
			CanShareScreen: true,
			CanChat:        true,
			CanLaunchPolls: true,
			CanModerate:    true,
			CanRecord:      true,
			CanInvite:      true,
			CanMute:        true,
		}
	case models.RolePresenter:
		return models.ParticipantPermissions{
			CanSpeak:       true,
			CanShareVideo:  true,
			CanShareScreen: true,
			CanChat:        true,
			CanLaunchPolls: true,
		}
	case models.RoleModerator:
		return models.ParticipantPermissions{
			CanSpeak:      true,
			CanShareVideo: true,
			CanChat:       true,
			CanModerate:   true,
			CanMute:       true,
		}
	case models.RoleParticipant:
		return models.ParticipantPermissions{
			CanSpeak:      true,
			CanShareVideo: true,
			CanChat:       true,
		}
	default:
		// Observers and unknown roles get nothing.
		return models.ParticipantPermissions{}
	}
}
