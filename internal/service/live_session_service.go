package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/c50bossio/6fb-workbook-api/internal/dto"
	"github.com/c50bossio/6fb-workbook-api/internal/livesession"
	"github.com/c50bossio/6fb-workbook-api/internal/models"
	"github.com/c50bossio/6fb-workbook-api/internal/observability"
	"github.com/c50bossio/6fb-workbook-api/internal/repository"
)

// ErrNotHost rejects host-only operations attempted by someone else.
var ErrNotHost = errors.New("only the session host may perform this action")

// ErrSessionEnded rejects writes against a finished session.
var ErrSessionEnded = errors.New("session has already ended")

// TimingValidationError reports every violated scheduling rule at once.
type TimingValidationError struct {
	Violations []string
}

func (e *TimingValidationError) Error() string {
	return "invalid session timing: " + strings.Join(e.Violations, "; ")
}

// JoinRejectedError carries the verbatim rejection reason for a refused join.
type JoinRejectedError struct {
	Reason string
}

func (e *JoinRejectedError) Error() string {
	return e.Reason
}

// LiveSessionService manages coaching sessions and their participants.
type LiveSessionService interface {
	Schedule(ctx context.Context, hostID string, req dto.ScheduleSessionRequest) (dto.SessionResponse, error)
	Get(ctx context.Context, sessionID string) (dto.SessionResponse, error)
	Join(ctx context.Context, sessionID, userID string, req dto.JoinSessionRequest) (dto.ParticipantResponse, error)
	Leave(ctx context.Context, sessionID, userID string) error
	ChangeRole(ctx context.Context, sessionID, actorID string, req dto.ChangeRoleRequest) (dto.ParticipantResponse, error)
	RecordEngagement(ctx context.Context, sessionID, userID string, req dto.RecordEngagementRequest) (dto.ParticipantResponse, error)
	Invite(ctx context.Context, sessionID, actorID string, req dto.InviteRequest) error
	Lock(ctx context.Context, sessionID, actorID string, req dto.LockSessionRequest) (dto.SessionResponse, error)
	End(ctx context.Context, sessionID, actorID string) (dto.SessionResponse, error)
	ListParticipants(ctx context.Context, sessionID string) ([]dto.ParticipantResponse, error)
}

type liveSessionService struct {
	sessions     repository.SessionRepository
	participants repository.ParticipantRepository
	invitations  repository.InvitationRepository
	activity     repository.ActivityRepository
	publisher    Publisher
	validator    *validator.Validate
	logger       zerolog.Logger
	now          func() time.Time
}

// NewLiveSessionService constructs the live session service.
func NewLiveSessionService(
	sessions repository.SessionRepository,
	participants repository.ParticipantRepository,
	invitations repository.InvitationRepository,
	activity repository.ActivityRepository,
	publisher Publisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) LiveSessionService {
	return &liveSessionService{
		sessions:     sessions,
		participants: participants,
		invitations:  invitations,
		activity:     activity,
		publisher:    publisher,
		validator:    validate,
		logger:       logger.With().Str("component", "live_session_service").Logger(),
		now:          time.Now,
	}
}

// Schedule validates the timing rules and creates the session together
// with the host's participant seat.
func (s *liveSessionService) Schedule(ctx context.Context, hostID string, req dto.ScheduleSessionRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SessionResponse{}, err
	}

	start, err := time.Parse(time.RFC3339, req.ScheduledStart)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	end, err := time.Parse(time.RFC3339, req.ScheduledEnd)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	now := s.now().UTC()
	if timing := livesession.ValidateSessionTiming(start, end, now); !timing.Valid {
		return dto.SessionResponse{}, &TimingValidationError{Violations: timing.Errors}
	}

	session := &models.LiveSession{
		ID:             uuid.NewString(),
		HostID:         hostID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         models.SessionScheduled,
		ScheduledStart: start.UTC(),
		ScheduledEnd:   end.UTC(),
		IsPublic:       req.IsPublic,
		Capacity:       req.Capacity,
		Settings:       req.Settings,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return dto.SessionResponse{}, err
	}

	// The host holds a seat from the start, so joining their own session
	// passes the participant-record access check.
	host := &models.SessionParticipant{
		ID:          uuid.NewString(),
		SessionID:   session.ID,
		UserID:      hostID,
		Role:        models.RoleHost,
		Permissions: livesession.PermissionsForRole(models.RoleHost),
		Connection:  models.ConnectionDisconnected,
		JoinedAt:    now,
	}
	if err := s.participants.Create(ctx, host); err != nil {
		return dto.SessionResponse{}, err
	}

	s.publisher.Publish(Event{
		Subject:    SubjectSessionScheduled,
		UserID:     hostID,
		OccurredAt: now,
		Data:       map[string]any{"session_id": session.ID, "title": session.Title},
	})
	s.logger.Info().Str("session_id", session.ID).Str("host_id", hostID).Msg("session scheduled")

	return dto.NewSessionResponse(session), nil
}

func (s *liveSessionService) Get(ctx context.Context, sessionID string) (dto.SessionResponse, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	return dto.NewSessionResponse(session), nil
}

// Join runs the eligibility checks and, if admitted, takes a seat under
// the capacity guard.
func (s *liveSessionService) Join(ctx context.Context, sessionID, userID string, req dto.JoinSessionRequest) (dto.ParticipantResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ParticipantResponse{}, err
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return dto.ParticipantResponse{}, err
	}

	existing, err := s.participants.GetBySessionAndUser(ctx, sessionID, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return dto.ParticipantResponse{}, err
	}

	invited := false
	if invitation, ierr := s.invitations.GetBySessionAndUser(ctx, sessionID, userID); ierr == nil {
		invited = invitation.Accepted()
	} else if !errors.Is(ierr, repository.ErrNotFound) {
		return dto.ParticipantResponse{}, ierr
	}

	now := s.now().UTC()
	decision := livesession.CanUserJoinSession(*session, userID, livesession.JoinContext{
		Now:                   now,
		HasAcceptedInvitation: invited,
		IsParticipant:         existing != nil,
	})
	if !decision.CanJoin {
		observability.SessionJoins().WithLabelValues("rejected").Inc()
		return dto.ParticipantResponse{}, &JoinRejectedError{Reason: decision.Reason}
	}

	rejoining := existing != nil && existing.Active()
	if !rejoining {
		if err := s.sessions.IncrementParticipants(ctx, sessionID, session.Capacity.Maximum); err != nil {
			if errors.Is(err, repository.ErrSessionFull) {
				observability.SessionJoins().WithLabelValues("rejected").Inc()
				return dto.ParticipantResponse{}, &JoinRejectedError{Reason: livesession.ReasonAtCapacity}
			}
			return dto.ParticipantResponse{}, err
		}
	}

	participant := existing
	if participant == nil {
		participant = &models.SessionParticipant{
			ID:          uuid.NewString(),
			SessionID:   sessionID,
			UserID:      userID,
			DisplayName: req.DisplayName,
			Role:        models.RoleParticipant,
			Permissions: livesession.PermissionsForRole(models.RoleParticipant),
			Connection:  models.ConnectionConnected,
			JoinedAt:    now,
		}
		if err := s.participants.Create(ctx, participant); err != nil {
			_ = s.sessions.DecrementParticipants(ctx, sessionID)
			return dto.ParticipantResponse{}, err
		}
	} else {
		participant.Connection = models.ConnectionConnected
		participant.LeftAt = nil
		if req.DisplayName != "" {
			participant.DisplayName = req.DisplayName
		}
		if err := s.participants.UpdateWithVersion(ctx, participant); err != nil {
			return dto.ParticipantResponse{}, err
		}
	}

	observability.SessionJoins().WithLabelValues("joined").Inc()
	s.recordSessionActivity(ctx, userID, models.ActivitySessionJoin, sessionID)
	s.publisher.Publish(Event{
		Subject:    SubjectSessionJoined,
		UserID:     userID,
		OccurredAt: now,
		Data:       map[string]any{"session_id": sessionID, "role": string(participant.Role)},
	})

	return dto.NewParticipantResponse(participant, livesession.EngagementScore(*participant)), nil
}

// Leave releases the seat. Leaving twice is a no-op.
func (s *liveSessionService) Leave(ctx context.Context, sessionID, userID string) error {
	participant, err := s.participants.GetBySessionAndUser(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if !participant.Active() {
		return nil
	}

	now := s.now().UTC()
	participant.LeftAt = &now
	participant.Connection = models.ConnectionDisconnected
	if err := s.participants.UpdateWithVersion(ctx, participant); err != nil {
		return err
	}
	if err := s.sessions.DecrementParticipants(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("decrement participant count")
	}

	s.recordSessionActivity(ctx, userID, models.ActivitySessionLeave, sessionID)
	s.publisher.Publish(Event{
		Subject:    SubjectSessionLeft,
		UserID:     userID,
		OccurredAt: now,
		Data:       map[string]any{"session_id": sessionID},
	})
	return nil
}

// ChangeRole reassigns a participant's role and replaces the full
// permission set from the new role. No permission survives the change.
func (s *liveSessionService) ChangeRole(ctx context.Context, sessionID, actorID string, req dto.ChangeRoleRequest) (dto.ParticipantResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ParticipantResponse{}, err
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return dto.ParticipantResponse{}, err
	}
	if session.HostID != actorID {
		return dto.ParticipantResponse{}, ErrNotHost
	}

	participant, err := s.participants.GetBySessionAndUser(ctx, sessionID, req.UserID)
	if err != nil {
		return dto.ParticipantResponse{}, err
	}

	previous := participant.Role
	participant.Role = models.ParticipantRole(req.Role)
	participant.Permissions = livesession.PermissionsForRole(participant.Role)
	if err := s.participants.UpdateWithVersion(ctx, participant); err != nil {
		return dto.ParticipantResponse{}, err
	}

	s.publisher.Publish(Event{
		Subject:    SubjectRoleChanged,
		UserID:     req.UserID,
		OccurredAt: s.now().UTC(),
		Data: map[string]any{
			"session_id": sessionID,
			"from":       string(previous),
			"to":         string(participant.Role),
		},
	})

	return dto.NewParticipantResponse(participant, livesession.EngagementScore(*participant)), nil
}

// RecordEngagement increments one engagement counter and returns the
// recomputed score.
func (s *liveSessionService) RecordEngagement(ctx context.Context, sessionID, userID string, req dto.RecordEngagementRequest) (dto.ParticipantResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ParticipantResponse{}, err
	}

	participant, err := s.participants.GetBySessionAndUser(ctx, sessionID, userID)
	if err != nil {
		return dto.ParticipantResponse{}, err
	}

	amount := req.Amount
	if amount == 0 {
		amount = 1
	}
	switch req.Kind {
	case "message":
		participant.Engagement.MessagesSent += amount
	case "reaction":
		participant.Engagement.ReactionsSent += amount
	case "poll_answer":
		participant.Engagement.PollsAnswered += amount
	case "hand_raise":
		participant.Engagement.HandRaises += amount
	case "speaking_minute":
		participant.Engagement.SpeakingMinutes += amount
	}

	if err := s.participants.UpdateWithVersion(ctx, participant); err != nil {
		return dto.ParticipantResponse{}, err
	}
	return dto.NewParticipantResponse(participant, livesession.EngagementScore(*participant)), nil
}

// Invite records a pending invitation for a user.
func (s *liveSessionService) Invite(ctx context.Context, sessionID, actorID string, req dto.InviteRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.HasEnded() {
		return ErrSessionEnded
	}

	actor, err := s.participants.GetBySessionAndUser(ctx, sessionID, actorID)
	if err != nil {
		return err
	}
	if !actor.Permissions.CanInvite {
		return ErrNotHost
	}

	return s.invitations.Create(ctx, &models.SessionInvitation{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		UserID:    req.UserID,
		InvitedBy: actorID,
		Status:    models.InvitationPending,
	})
}

// Lock closes the session door for the requested number of minutes.
func (s *liveSessionService) Lock(ctx context.Context, sessionID, actorID string, req dto.LockSessionRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SessionResponse{}, err
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	if session.HostID != actorID {
		return dto.SessionResponse{}, ErrNotHost
	}
	if session.HasEnded() {
		return dto.SessionResponse{}, ErrSessionEnded
	}

	now := s.now().UTC()
	until := now.Add(time.Duration(req.Minutes) * time.Minute)
	session.LockedUntil = &until
	if err := s.sessions.UpdateWithVersion(ctx, session); err != nil {
		return dto.SessionResponse{}, err
	}

	s.publisher.Publish(Event{
		Subject:    SubjectSessionLocked,
		UserID:     actorID,
		OccurredAt: now,
		Data:       map[string]any{"session_id": sessionID, "locked_until": until},
	})
	return dto.NewSessionResponse(session), nil
}

// End finishes the session. Ending twice is rejected.
func (s *liveSessionService) End(ctx context.Context, sessionID, actorID string) (dto.SessionResponse, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	if session.HostID != actorID {
		return dto.SessionResponse{}, ErrNotHost
	}
	if session.HasEnded() {
		return dto.SessionResponse{}, ErrSessionEnded
	}

	now := s.now().UTC()
	session.Status = models.SessionEnded
	session.ActualEnd = &now
	if err := s.sessions.UpdateWithVersion(ctx, session); err != nil {
		return dto.SessionResponse{}, err
	}

	s.publisher.Publish(Event{
		Subject:    SubjectSessionEnded,
		UserID:     actorID,
		OccurredAt: now,
		Data:       map[string]any{"session_id": sessionID},
	})
	s.logger.Info().Str("session_id", sessionID).Msg("session ended")
	return dto.NewSessionResponse(session), nil
}

func (s *liveSessionService) ListParticipants(ctx context.Context, sessionID string) ([]dto.ParticipantResponse, error) {
	participants, err := s.participants.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ParticipantResponse, 0, len(participants))
	for i := range participants {
		out = append(out, dto.NewParticipantResponse(&participants[i], livesession.EngagementScore(participants[i])))
	}
	return out, nil
}

func (s *liveSessionService) recordSessionActivity(ctx context.Context, userID string, kind models.ActivityType, sessionID string) {
	record := &models.ActivityRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       kind,
		SessionID:  sessionID,
		OccurredAt: s.now().UTC(),
	}
	if err := s.activity.Create(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("type", string(kind)).Msg("record activity")
	}
}
