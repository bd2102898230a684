package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/c50bossio/6fb-workbook-api/internal/dto"
	"github.com/c50bossio/6fb-workbook-api/internal/livesession"
	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

func newSessionFixture() (*liveSessionService, *memSessionRepo, *memParticipantRepo, *memInvitationRepo, *memActivityRepo, *capturingPublisher) {
	sessions := newMemSessionRepo()
	participants := newMemParticipantRepo()
	invitations := newMemInvitationRepo()
	activity := &memActivityRepo{}
	publisher := &capturingPublisher{}

	svc := NewLiveSessionService(sessions, participants, invitations, activity, publisher, validator.New(), testLogger()).(*liveSessionService)
	return svc, sessions, participants, invitations, activity, publisher
}

func scheduleRequest(start, end time.Time) dto.ScheduleSessionRequest {
	return dto.ScheduleSessionRequest{
		Title:          "Clipper Technique Workshop",
		ScheduledStart: start.Format(time.RFC3339),
		ScheduledEnd:   end.Format(time.RFC3339),
		IsPublic:       true,
		Capacity:       models.SessionCapacity{Maximum: 3},
	}
}

func TestScheduleCreatesSessionWithHostSeat(t *testing.T) {
	svc, _, participants, _, _, publisher := newSessionFixture()

	now := time.Now().UTC()
	resp, err := svc.Schedule(context.Background(), "host-1", scheduleRequest(now.Add(time.Hour), now.Add(2*time.Hour)))
	require.NoError(t, err)
	require.Equal(t, string(models.SessionScheduled), resp.Status)
	require.Equal(t, "host-1", resp.HostID)

	host, err := participants.GetBySessionAndUser(context.Background(), resp.ID, "host-1")
	require.NoError(t, err)
	require.Equal(t, models.RoleHost, host.Role)
	require.True(t, host.Permissions.CanKick)
	require.Contains(t, publisher.subjects(), SubjectSessionScheduled)
}

func TestScheduleRejectsBadTimingWithAllViolations(t *testing.T) {
	svc, _, _, _, _, _ := newSessionFixture()

	now := time.Now().UTC()
	// Starts in the past and runs for under five minutes.
	_, err := svc.Schedule(context.Background(), "host-1", scheduleRequest(now.Add(-time.Hour), now.Add(-time.Hour).Add(2*time.Minute)))

	var verr *TimingValidationError
	require.ErrorAs(t, err, &verr)
	require.GreaterOrEqual(t, len(verr.Violations), 2)
}

func TestJoinPublicSessionTakesSeat(t *testing.T) {
	svc, sessions, _, _, activity, publisher := newSessionFixture()

	now := time.Now().UTC()
	created, err := svc.Schedule(context.Background(), "host-1", scheduleRequest(now.Add(time.Hour), now.Add(2*time.Hour)))
	require.NoError(t, err)

	resp, err := svc.Join(context.Background(), created.ID, "user-1", dto.JoinSessionRequest{DisplayName: "Marcus"})
	require.NoError(t, err)
	require.Equal(t, string(models.RoleParticipant), resp.Role)
	require.True(t, resp.Permissions.CanChat)
	require.False(t, resp.Permissions.CanModerate)

	stored, err := sessions.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.CurrentParticipantCount)
	require.Contains(t, activity.typesRecorded(), models.ActivitySessionJoin)
	require.Contains(t, publisher.subjects(), SubjectSessionJoined)
}

func TestJoinRejectionsInOrder(t *testing.T) {
	svc, sessions, _, _, _, _ := newSessionFixture()

	now := time.Now().UTC()
	created, err := svc.Schedule(context.Background(), "host-1", scheduleRequest(now.Add(time.Hour), now.Add(2*time.Hour)))
	require.NoError(t, err)

	// Fill the remaining seats.
	_, err = svc.Join(context.Background(), created.ID, "user-1", dto.JoinSessionRequest{})
	require.NoError(t, err)
	_, err = svc.Join(context.Background(), created.ID, "user-2", dto.JoinSessionRequest{})
	require.NoError(t, err)
	_, err = svc.Join(context.Background(), created.ID, "user-3", dto.JoinSessionRequest{})
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), created.ID, "user-4", dto.JoinSessionRequest{})
	var jerr *JoinRejectedError
	require.ErrorAs(t, err, &jerr)
	require.Equal(t, livesession.ReasonAtCapacity, jerr.Reason)

	// A locked session rejects before capacity is even considered.
	stored, err := sessions.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	until := now.Add(30 * time.Minute)
	stored.LockedUntil = &until
	require.NoError(t, sessions.UpdateWithVersion(context.Background(), stored))

	_, err = svc.Join(context.Background(), created.ID, "user-4", dto.JoinSessionRequest{})
	require.ErrorAs(t, err, &jerr)
	require.Equal(t, livesession.ReasonLocked, jerr.Reason)

	// An ended session wins over everything.
	stored, err = sessions.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	stored.Status = models.SessionEnded
	require.NoError(t, sessions.UpdateWithVersion(context.Background(), stored))

	_, err = svc.Join(context.Background(), created.ID, "user-4", dto.JoinSessionRequest{})
	require.ErrorAs(t, err, &jerr)
	require.Equal(t, livesession.ReasonSessionEnded, jerr.Reason)
}

func TestJoinPrivateSessionNeedsAcceptedInvitation(t *testing.T) {
	svc, _, _, invitations, _, _ := newSessionFixture()

	now := time.Now().UTC()
	req := scheduleRequest(now.Add(time.Hour), now.Add(2*time.Hour))
	req.IsPublic = false
	created, err := svc.Schedule(context.Background(), "host-1", req)
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), created.ID, "user-1", dto.JoinSessionRequest{})
	var jerr *JoinRejectedError
	require.ErrorAs(t, err, &jerr)
	require.Equal(t, livesession.ReasonNotInvited, jerr.Reason)

	// A pending invitation is not enough.
	require.NoError(t, svc.Invite(context.Background(), created.ID, "host-1", dto.InviteRequest{UserID: "user-1"}))
	_, err = svc.Join(context.Background(), created.ID, "user-1", dto.JoinSessionRequest{})
	require.ErrorAs(t, err, &jerr)

	// Accepting it opens the door.
	invitation, err := invitations.GetBySessionAndUser(context.Background(), created.ID, "user-1")
	require.NoError(t, err)
	require.NoError(t, invitations.UpdateStatus(context.Background(), invitation.ID, models.InvitationAccepted, now))

	_, err = svc.Join(context.Background(), created.ID, "user-1", dto.JoinSessionRequest{})
	require.NoError(t, err)
}

func TestLeaveReleasesSeatAndIsIdempotent(t *testing.T) {
	svc, sessions, _, _, _, publisher := newSessionFixture()

	now := time.Now().UTC()
	created, err := svc.Schedule(context.Background(), "host-1", scheduleRequest(now.Add(time.Hour), now.Add(2*time.Hour)))
	require.NoError(t, err)
	_, err = svc.Join(context.Background(), created.ID, "user-1", dto.JoinSessionRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.Leave(context.Background(), created.ID, "user-1"))
	require.NoError(t, svc.Leave(context.Background(), created.ID, "user-1"))

	stored, err := sessions.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, 0, stored.CurrentParticipantCount, "second leave must not decrement again")
	require.Contains(t, publisher.subjects(), SubjectSessionLeft)
}

func TestChangeRoleReplacesEveryPermission(t *testing.T) {
	svc, _, _, _, _, publisher := newSessionFixture()

	now := time.Now().UTC()
	created, err := svc.Schedule(context.Background(), "host-1", scheduleRequest(now.Add(time.Hour), now.Add(2*time.Hour)))
	require.NoError(t, err)
	_, err = svc.Join(context.Background(), created.ID, "user-1", dto.JoinSessionRequest{})
	require.NoError(t, err)

	promoted, err := svc.ChangeRole(context.Background(), created.ID, "host-1", dto.ChangeRoleRequest{UserID: "user-1", Role: "co_host"})
	require.NoError(t, err)
	require.True(t, promoted.Permissions.CanModerate)
	require.True(t, promoted.Permissions.CanMute)
	require.False(t, promoted.Permissions.CanKick)

	// Demotion wipes the elevated flags completely.
	demoted, err := svc.ChangeRole(context.Background(), created.ID, "host-1", dto.ChangeRoleRequest{UserID: "user-1", Role: "observer"})
	require.NoError(t, err)
	require.Equal(t, models.ParticipantPermissions{}, demoted.Permissions)

	// Only the host may change roles.
	_, err = svc.ChangeRole(context.Background(), created.ID, "user-1", dto.ChangeRoleRequest{UserID: "user-1", Role: "host"})
	require.ErrorIs(t, err, ErrNotHost)
	require.Contains(t, publisher.subjects(), SubjectRoleChanged)
}

func TestRecordEngagementAccumulatesAndScores(t *testing.T) {
	svc, _, _, _, _, _ := newSessionFixture()

	now := time.Now().UTC()
	created, err := svc.Schedule(context.Background(), "host-1", scheduleRequest(now.Add(time.Hour), now.Add(2*time.Hour)))
	require.NoError(t, err)
	_, err = svc.Join(context.Background(), created.ID, "user-1", dto.JoinSessionRequest{})
	require.NoError(t, err)

	_, err = svc.RecordEngagement(context.Background(), created.ID, "user-1", dto.RecordEngagementRequest{Kind: "message", Amount: 25})
	require.NoError(t, err)
	resp, err := svc.RecordEngagement(context.Background(), created.ID, "user-1", dto.RecordEngagementRequest{Kind: "speaking_minute", Amount: 15})
	require.NoError(t, err)

	require.Equal(t, 25, resp.Engagement.MessagesSent)
	require.Equal(t, 15, resp.Engagement.SpeakingMinutes)
	// 25/50*.30 + 15/30*.10 = 0.20 → 20
	require.Equal(t, 20, resp.EngagementScore)
}

func TestLockAndEndAreHostOnly(t *testing.T) {
	svc, _, _, _, _, publisher := newSessionFixture()

	now := time.Now().UTC()
	created, err := svc.Schedule(context.Background(), "host-1", scheduleRequest(now.Add(time.Hour), now.Add(2*time.Hour)))
	require.NoError(t, err)

	_, err = svc.Lock(context.Background(), created.ID, "user-1", dto.LockSessionRequest{Minutes: 10})
	require.ErrorIs(t, err, ErrNotHost)

	locked, err := svc.Lock(context.Background(), created.ID, "host-1", dto.LockSessionRequest{Minutes: 10})
	require.NoError(t, err)
	require.NotNil(t, locked.LockedUntil)

	ended, err := svc.End(context.Background(), created.ID, "host-1")
	require.NoError(t, err)
	require.Equal(t, string(models.SessionEnded), ended.Status)
	require.NotNil(t, ended.ActualEnd)

	_, err = svc.End(context.Background(), created.ID, "host-1")
	require.ErrorIs(t, err, ErrSessionEnded)
	require.Contains(t, publisher.subjects(), SubjectSessionLocked)
	require.Contains(t, publisher.subjects(), SubjectSessionEnded)
}
