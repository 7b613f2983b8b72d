package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sales-kpi-bot/models"
	"sales-kpi-bot/services"

	"github.com/stretchr/testify/require"
)

func (e *testEnv) sendEvent(t *testing.T, ev BotEvent) *BotReply {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/bot/event", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var reply BotReply
	require.NoError(t, json.Unmarshal(data, &reply))
	return &reply
}

func command(userID, chatID int64, cmd string) BotEvent {
	return BotEvent{UserID: userID, ChatID: chatID, Type: "command", Command: cmd}
}

func text(userID, chatID int64, body string) BotEvent {
	return BotEvent{UserID: userID, ChatID: chatID, Type: "text", Text: body}
}

func TestBotRegistrationFlow(t *testing.T) {
	env := setupTestApp(t)

	reply := env.sendEvent(t, command(42, 1, "/register"))
	require.Contains(t, reply.Messages[0], "full name")

	reply = env.sendEvent(t, text(42, 1, "Alice Wong"))
	require.Contains(t, reply.Messages[0], "nationality")

	reply = env.sendEvent(t, text(42, 1, "Thai"))
	require.Contains(t, reply.Messages[0], "phone")

	reply = env.sendEvent(t, text(42, 1, "0812345678"))
	require.Contains(t, reply.Messages[0], "upline")

	reply = env.sendEvent(t, text(42, 1, "Head Office"))
	require.True(t, reply.Done)
	require.Contains(t, reply.Messages[0], "Registration complete")

	user, err := env.users.Get(42)
	require.NoError(t, err)
	require.Equal(t, "Alice Wong", user.Name)
	require.Equal(t, "Thai", user.Nationality)
	require.Equal(t, 0, env.convs.ActiveCount())
}

func TestBotRegistrationRepromptsOnInvalidInput(t *testing.T) {
	env := setupTestApp(t)

	env.sendEvent(t, command(42, 1, "/register"))

	// One-character name fails, state does not advance
	reply := env.sendEvent(t, text(42, 1, "A"))
	require.Contains(t, reply.Messages[0], "full name")

	reply = env.sendEvent(t, text(42, 1, "Alice Wong"))
	require.Contains(t, reply.Messages[0], "nationality")
}

func TestBotRegisterTwice(t *testing.T) {
	env := setupTestApp(t)
	env.registerUser(t, 42, "Alice")

	reply := env.sendEvent(t, command(42, 1, "/register"))
	require.Contains(t, reply.Messages[0], "already registered")
	require.Equal(t, 0, env.convs.ActiveCount())
}

func TestBotCancelDiscardsConversation(t *testing.T) {
	env := setupTestApp(t)

	env.sendEvent(t, command(42, 1, "/register"))
	env.sendEvent(t, text(42, 1, "Alice Wong"))

	reply := env.sendEvent(t, command(42, 1, "/cancel"))
	require.Contains(t, reply.Messages[0], "Cancelled")
	require.Equal(t, 0, env.convs.ActiveCount())

	_, err := env.users.Get(42)
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestBotTargetSettingFlow(t *testing.T) {
	env := setupTestApp(t, 100)
	env.registerUser(t, 42, "Alice")

	reply := env.sendEvent(t, command(100, 1, "/kpi"))
	require.Contains(t, reply.Messages[0], "Alice")

	reply = env.sendEvent(t, text(100, 1, "1"))
	require.Contains(t, reply.Messages[0], "meetups")

	reply = env.sendEvent(t, text(100, 1, "10"))
	require.Contains(t, reply.Messages[0], "sales target")

	reply = env.sendEvent(t, text(100, 1, "5000"))
	require.Contains(t, reply.Messages[0], "confirm")
	require.Equal(t, []string{"yes", "no"}, reply.Options)

	reply = env.sendEvent(t, text(100, 1, "yes"))
	require.True(t, reply.Done)
	require.Contains(t, reply.Messages[0], "Targets saved")

	now := time.Now()
	target, err := env.targets.Get(42, int(now.Month()), now.Year())
	require.NoError(t, err)
	require.Equal(t, 10, target.MeetupTarget)
	require.Equal(t, 5000.0, target.SalesTarget)
}

func TestBotTargetSettingDeclined(t *testing.T) {
	env := setupTestApp(t, 100)
	env.registerUser(t, 42, "Alice")

	env.sendEvent(t, command(100, 1, "/kpi"))
	env.sendEvent(t, text(100, 1, "1"))
	env.sendEvent(t, text(100, 1, "10"))
	env.sendEvent(t, text(100, 1, "5000"))

	reply := env.sendEvent(t, text(100, 1, "no"))
	require.True(t, reply.Done)

	now := time.Now()
	_, err := env.targets.Get(42, int(now.Month()), now.Year())
	require.ErrorIs(t, err, services.ErrNoTarget)
}

func TestBotTargetSettingRequiresAdmin(t *testing.T) {
	env := setupTestApp(t, 100)
	env.registerUser(t, 42, "Alice")

	reply := env.sendEvent(t, command(42, 1, "/kpi"))
	require.Contains(t, reply.Messages[0], "Only admins")
	require.Equal(t, 0, env.convs.ActiveCount())
}

func TestBotMeetupFlowCollectsCountThenPhoto(t *testing.T) {
	env := setupTestApp(t)
	env.registerUser(t, 42, "Alice")

	reply := env.sendEvent(t, command(42, 1, "/submitkpi"))
	require.Contains(t, reply.Messages[0], "How many clients")

	// Out-of-range count re-prompts
	reply = env.sendEvent(t, text(42, 1, "150"))
	require.Contains(t, reply.Messages[0], "How many clients")

	reply = env.sendEvent(t, text(42, 1, "3"))
	require.Contains(t, reply.Messages[0], "photo")

	// Text at the photo step does not advance
	reply = env.sendEvent(t, text(42, 1, "here you go"))
	require.Contains(t, reply.Messages[0], "photo")

	conv, ok := env.convs.Get(42, 1)
	require.True(t, ok)
	require.Equal(t, services.StateAwaitingMeetupPhoto, conv.State)
	require.Equal(t, 3, conv.Data.ClientCount)
}

func TestBotSubmissionRequiresRegistration(t *testing.T) {
	env := setupTestApp(t)

	reply := env.sendEvent(t, command(42, 1, "/submitkpi"))
	require.Contains(t, reply.Messages[0], "/register")

	reply = env.sendEvent(t, command(42, 1, "/submitsale"))
	require.Contains(t, reply.Messages[0], "/register")
}

func TestBotProgressCheck(t *testing.T) {
	env := setupTestApp(t)
	env.registerUser(t, 42, "Alice")

	_, err := env.targets.Upsert(42, 6, 2025, 5, 1000)
	require.NoError(t, err)

	june := time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)
	require.NoError(t, env.records.Append(&models.KPIRecord{
		UserID:     42,
		RecordType: models.RecordTypeMeetup,
		Value:      4,
		PhotoLink:  "https://cdn.example.com/meetups/p.jpg",
		RecordDate: june,
	}))

	ev := command(42, 1, "/check")
	ev.Text = "6 2025"
	reply := env.sendEvent(t, ev)
	require.Contains(t, reply.Messages[0], "June 2025")
	require.Contains(t, reply.Messages[0], "4 / 5")
}

func TestBotProgressCheckWithoutTarget(t *testing.T) {
	env := setupTestApp(t)
	env.registerUser(t, 42, "Alice")

	ev := command(42, 1, "/check")
	ev.Text = "6 2025"
	reply := env.sendEvent(t, ev)
	require.Contains(t, reply.Messages[0], "No KPI target")
}

func TestBotTeamReport(t *testing.T) {
	env := setupTestApp(t, 100)
	env.registerUser(t, 42, "Alice")
	_, err := env.targets.Upsert(42, 6, 2025, 5, 1000)
	require.NoError(t, err)

	ev := command(100, 1, "/checkall")
	ev.Text = "6 2025"
	reply := env.sendEvent(t, ev)
	require.Contains(t, reply.Messages[0], "Alice")

	reply = env.sendEvent(t, command(42, 1, "/checkall"))
	require.Contains(t, reply.Messages[0], "Only admins")
}

func TestBotHelpShowsAdminCommandsToAdmins(t *testing.T) {
	env := setupTestApp(t, 100)

	reply := env.sendEvent(t, command(42, 1, "/help"))
	require.False(t, strings.Contains(reply.Messages[0], "/checkall"))

	reply = env.sendEvent(t, command(100, 1, "/help"))
	require.Contains(t, reply.Messages[0], "/checkall")
}

func TestBotUnexpectedTextOutsideConversation(t *testing.T) {
	env := setupTestApp(t)

	reply := env.sendEvent(t, text(42, 1, "hello"))
	require.Contains(t, reply.Messages[0], "/help")
}
