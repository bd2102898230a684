package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/c50bossio/6fb-workbook-api/internal/dto"
	"github.com/c50bossio/6fb-workbook-api/internal/handler"
	"github.com/c50bossio/6fb-workbook-api/internal/service"
)

type stubLiveSessionService struct {
	session      dto.SessionResponse
	participant  dto.ParticipantResponse
	participants []dto.ParticipantResponse
	err          error
}

func (s stubLiveSessionService) Schedule(context.Context, string, dto.ScheduleSessionRequest) (dto.SessionResponse, error) {
	return s.session, s.err
}

func (s stubLiveSessionService) Get(context.Context, string) (dto.SessionResponse, error) {
	return s.session, s.err
}

func (s stubLiveSessionService) Join(context.Context, string, string, dto.JoinSessionRequest) (dto.ParticipantResponse, error) {
	return s.participant, s.err
}

func (s stubLiveSessionService) Leave(context.Context, string, string) error {
	return s.err
}

func (s stubLiveSessionService) ChangeRole(context.Context, string, string, dto.ChangeRoleRequest) (dto.ParticipantResponse, error) {
	return s.participant, s.err
}

func (s stubLiveSessionService) RecordEngagement(context.Context, string, string, dto.RecordEngagementRequest) (dto.ParticipantResponse, error) {
	return s.participant, s.err
}

func (s stubLiveSessionService) Invite(context.Context, string, string, dto.InviteRequest) error {
	return s.err
}

func (s stubLiveSessionService) Lock(context.Context, string, string, dto.LockSessionRequest) (dto.SessionResponse, error) {
	return s.session, s.err
}

func (s stubLiveSessionService) End(context.Context, string, string) (dto.SessionResponse, error) {
	return s.session, s.err
}

func (s stubLiveSessionService) ListParticipants(context.Context, string) ([]dto.ParticipantResponse, error) {
	return s.participants, s.err
}

func newSessionApp(svc service.LiveSessionService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/sessions", func(c *fiber.Ctx) error {
		c.Locals("user_id", "host-1")
		c.Locals("user_role", "coach")
		return c.Next()
	})
	handler.NewLiveSessionHandler(svc, zerolog.Nop()).Register(group)
	return app
}

func TestLiveSessionHandlerSchedule(t *testing.T) {
	svc := stubLiveSessionService{session: dto.SessionResponse{
		ID:     "session-1",
		HostID: "host-1",
		Title:  "Cutting Fundamentals",
		Status: "scheduled",
	}}
	app := newSessionApp(svc)

	start := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/",
		jsonBody(t, dto.ScheduleSessionRequest{
			Title:          "Cutting Fundamentals",
			ScheduledStart: start,
			ScheduledEnd:   end,
		}))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestLiveSessionHandlerTimingViolations(t *testing.T) {
	svc := stubLiveSessionService{err: &service.TimingValidationError{
		Violations: []string{"session cannot be scheduled in the past", "session must run for at least 5 minutes"},
	}}
	app := newSessionApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/",
		jsonBody(t, dto.ScheduleSessionRequest{Title: "Too Short"}))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	payload := decodeEnvelope(t, resp)
	require.False(t, payload.Success)
	require.Len(t, payload.Errors, 2)
}

func TestLiveSessionHandlerJoinRejected(t *testing.T) {
	svc := stubLiveSessionService{err: &service.JoinRejectedError{Reason: "Session is at capacity"}}
	app := newSessionApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/session-1/join",
		jsonBody(t, dto.JoinSessionRequest{DisplayName: "Marcus"}))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	payload := decodeEnvelope(t, resp)
	require.Equal(t, "Session is at capacity", payload.Message)
}

func TestLiveSessionHandlerEndTwice(t *testing.T) {
	svc := stubLiveSessionService{err: service.ErrSessionEnded}
	app := newSessionApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/session-1/end", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLiveSessionHandlerChangeRoleForbidden(t *testing.T) {
	svc := stubLiveSessionService{err: service.ErrNotHost}
	app := newSessionApp(svc)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/sessions/session-1/participants/role",
		jsonBody(t, dto.ChangeRoleRequest{UserID: "user-2", Role: "co_host"}))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLiveSessionHandlerListParticipants(t *testing.T) {
	svc := stubLiveSessionService{participants: []dto.ParticipantResponse{
		{ID: "sp-1", SessionID: "session-1", UserID: "host-1", Role: "host"},
	}}
	app := newSessionApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/session-1/participants", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
