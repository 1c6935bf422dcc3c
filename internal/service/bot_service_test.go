package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmatch/chatbot/internal/attendance"
	"github.com/pharmatch/chatbot/internal/messenger"
	"github.com/pharmatch/chatbot/internal/models"
)

type fakeAttendance struct {
	checkInResult  *attendance.Result
	checkOutResult *attendance.Result
	todayRecord    *attendance.TodayRecord
	err            error
	calls          int
}

func (f *fakeAttendance) CheckIn(ctx context.Context, userID, note string) (*attendance.Result, error) {
	f.calls++
	if f.err != nil {
		return &attendance.Result{Outcome: attendance.OutcomeTransient}, f.err
	}
	return f.checkInResult, nil
}

func (f *fakeAttendance) CheckOut(ctx context.Context, userID, note string) (*attendance.Result, error) {
	f.calls++
	if f.err != nil {
		return &attendance.Result{Outcome: attendance.OutcomeTransient}, f.err
	}
	return f.checkOutResult, nil
}

func (f *fakeAttendance) Today(ctx context.Context, userID string) (*attendance.TodayRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.todayRecord, nil
}

func textOf(t *testing.T, msg messenger.Message) string {
	t.Helper()
	text, ok := msg.(messenger.TextMessage)
	require.True(t, ok, "expected a text message, got %T", msg)
	return text.Text
}

var testUser = &models.LinkedUser{SourceID: "U1", UserID: "user-1", DisplayName: "Tanaka"}

func TestCheckIn_SuccessReply(t *testing.T) {
	api := &fakeAttendance{
		checkInResult: &attendance.Result{
			Outcome:     attendance.OutcomeSuccess,
			CheckinTime: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
		},
	}
	s := NewBotService(api, "https://portal.example.com")

	messages, err := s.CheckIn(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	text := textOf(t, messages[0])
	// 09:00 UTC renders as 18:00 JST
	assert.Contains(t, text, "18:00")
	assert.Contains(t, text, "出勤を記録しました")
	assert.NotContains(t, text, "エラー")
}

func TestCheckIn_AlreadyCheckedInReply(t *testing.T) {
	api := &fakeAttendance{
		checkInResult: &attendance.Result{Outcome: attendance.OutcomeAlreadyCheckedIn},
	}
	s := NewBotService(api, "https://portal.example.com")

	messages, err := s.CheckIn(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	// Must be the specific warning variant, not the generic error
	text := textOf(t, messages[0])
	assert.Equal(t, replyAlreadyChecked, text)
	assert.NotEqual(t, replyGenericError, text)
}

func TestCheckIn_TransientFailure(t *testing.T) {
	api := &fakeAttendance{err: errors.New("connection refused")}
	s := NewBotService(api, "https://portal.example.com")

	_, err := s.CheckIn(context.Background(), testUser)
	require.Error(t, err)
}

func TestCheckOut_SuccessReply(t *testing.T) {
	api := &fakeAttendance{
		checkOutResult: &attendance.Result{
			Outcome:      attendance.OutcomeSuccess,
			CheckoutTime: time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC),
			WorkHours:    8.5,
		},
	}
	s := NewBotService(api, "https://portal.example.com")

	messages, err := s.CheckOut(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	text := textOf(t, messages[0])
	assert.Contains(t, text, "18:30")
	assert.Contains(t, text, "8.5時間")
}

func TestCheckOut_NothingToCheckOutSurfacesAPIMessage(t *testing.T) {
	api := &fakeAttendance{
		checkOutResult: &attendance.Result{
			Outcome: attendance.OutcomeNothingToCheckOut,
			Message: "本日の出勤記録がありません",
		},
	}
	s := NewBotService(api, "https://portal.example.com")

	messages, err := s.CheckOut(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	assert.Equal(t, "本日の出勤記録がありません", textOf(t, messages[0]))
}

func TestStatus_CheckedInOnly(t *testing.T) {
	checkin := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	api := &fakeAttendance{
		todayRecord: &attendance.TodayRecord{CheckinTime: &checkin},
	}
	s := NewBotService(api, "https://portal.example.com")

	messages, err := s.Status(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	text := textOf(t, messages[0])
	assert.Contains(t, text, "出勤: 09:00")
	// No checkout yet, so the checkout line is omitted entirely
	assert.NotContains(t, text, "退勤")
}

func TestStatus_CheckedInAndOut(t *testing.T) {
	checkin := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	checkout := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	api := &fakeAttendance{
		todayRecord: &attendance.TodayRecord{CheckinTime: &checkin, CheckoutTime: &checkout},
	}
	s := NewBotService(api, "https://portal.example.com")

	messages, err := s.Status(context.Background(), testUser)
	require.NoError(t, err)

	text := textOf(t, messages[0])
	assert.Contains(t, text, "出勤: 09:00")
	assert.Contains(t, text, "退勤: 18:00")
}

func TestStatus_NotCheckedIn(t *testing.T) {
	api := &fakeAttendance{todayRecord: &attendance.TodayRecord{}}
	s := NewBotService(api, "https://portal.example.com")

	messages, err := s.Status(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, replyNotCheckedIn, textOf(t, messages[0]))
}

func TestMenu_NoAPICall(t *testing.T) {
	api := &fakeAttendance{}
	s := NewBotService(api, "https://portal.example.com")

	messages, err := s.Menu(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	assert.Zero(t, api.calls, "menu must not call the attendance API")

	tmpl, ok := messages[0].(messenger.TemplateMessage)
	require.True(t, ok, "expected a template message, got %T", messages[0])
	assert.Len(t, tmpl.Template.Actions, 3)
	assert.Equal(t, "action=checkin", tmpl.Template.Actions[0].Data)
}

func TestOnboarding_ContainsPortalURL(t *testing.T) {
	s := NewBotService(&fakeAttendance{}, "https://portal.example.com")

	messages := s.Onboarding()
	require.Len(t, messages, 1)
	assert.Contains(t, textOf(t, messages[0]), "https://portal.example.com")
}

func TestHelp_EnumeratesCommands(t *testing.T) {
	s := NewBotService(&fakeAttendance{}, "https://portal.example.com")

	text := textOf(t, s.Help()[0])
	for _, token := range []string{"出勤", "退勤", "確認", "メニュー"} {
		assert.Contains(t, text, token)
	}
}
