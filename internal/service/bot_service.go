package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pharmatch/chatbot/internal/attendance"
	"github.com/pharmatch/chatbot/internal/messenger"
	"github.com/pharmatch/chatbot/internal/models"
)

// AttendanceAPI is the outbound attendance surface the handlers call.
type AttendanceAPI interface {
	CheckIn(ctx context.Context, userID, note string) (*attendance.Result, error)
	CheckOut(ctx context.Context, userID, note string) (*attendance.Result, error)
	Today(ctx context.Context, userID string) (*attendance.TodayRecord, error)
}

// Reply text fixed per outcome. The already-checked-in and generic-error
// variants are deliberately distinct: double check-in is an expected
// user-facing state, not a system fault.
const (
	replyCheckinSuccess  = "出勤を記録しました（%s）\n今日も一日がんばりましょう！"
	replyAlreadyChecked  = "本日はすでに出勤済みです。"
	replyCheckoutSuccess = "退勤を記録しました（%s）\n本日の勤務時間: %.1f時間\nおつかれさまでした！"
	replyStatusHeader    = "本日の勤怠"
	replyNotCheckedIn    = "本日はまだ出勤していません。"
	replyGenericError    = "エラーが発生しました。しばらくしてからもう一度お試しください。"
	replyOnboarding      = "アカウントが連携されていません。ポータル（%s）からアカウント連携を行ってください。"
	replyHelp            = "使えるコマンド:\n・出勤 / checkin\n・退勤 / checkout\n・確認 / status\n・メニュー / menu"
	menuText             = "操作を選んでください"
)

// BotService implements the bot's action handlers. Each handler calls at
// most one attendance endpoint and maps the classified outcome to reply
// messages. The per-user-per-day attendance state machine lives in the
// attendance API; this service only surfaces its rejections.
type BotService struct {
	attendance AttendanceAPI
	portalURL  string
	location   *time.Location
}

func NewBotService(api AttendanceAPI, portalURL string) *BotService {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	return &BotService{
		attendance: api,
		portalURL:  portalURL,
		location:   loc,
	}
}

// CheckIn records a check-in for the linked user.
func (s *BotService) CheckIn(ctx context.Context, user *models.LinkedUser) ([]messenger.Message, error) {
	result, err := s.attendance.CheckIn(ctx, user.UserID, "")
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case attendance.OutcomeSuccess:
		text := fmt.Sprintf(replyCheckinSuccess, s.formatTime(result.CheckinTime))
		return []messenger.Message{messenger.NewText(text)}, nil
	case attendance.OutcomeAlreadyCheckedIn:
		return []messenger.Message{messenger.NewText(replyAlreadyChecked)}, nil
	default:
		return nil, fmt.Errorf("checkin failed with outcome %d", result.Outcome)
	}
}

// CheckOut records a check-out for the linked user.
func (s *BotService) CheckOut(ctx context.Context, user *models.LinkedUser) ([]messenger.Message, error) {
	result, err := s.attendance.CheckOut(ctx, user.UserID, "")
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case attendance.OutcomeSuccess:
		text := fmt.Sprintf(replyCheckoutSuccess, s.formatTime(result.CheckoutTime), result.WorkHours)
		return []messenger.Message{messenger.NewText(text)}, nil
	case attendance.OutcomeNothingToCheckOut:
		// The API's own message is surfaced verbatim.
		return []messenger.Message{messenger.NewText(result.Message)}, nil
	default:
		return nil, fmt.Errorf("checkout failed with outcome %d", result.Outcome)
	}
}

// Status replies with today's attendance record. The checkout line is
// present only when a checkout exists.
func (s *BotService) Status(ctx context.Context, user *models.LinkedUser) ([]messenger.Message, error) {
	record, err := s.attendance.Today(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	if record.CheckinTime == nil {
		return []messenger.Message{messenger.NewText(replyNotCheckedIn)}, nil
	}

	text := fmt.Sprintf("%s\n出勤: %s", replyStatusHeader, s.formatTime(*record.CheckinTime))
	if record.CheckoutTime != nil {
		text += fmt.Sprintf("\n退勤: %s", s.formatTime(*record.CheckoutTime))
	}

	return []messenger.Message{messenger.NewText(text)}, nil
}

// Menu replies with the selectable actions. No attendance call is made.
func (s *BotService) Menu(ctx context.Context, user *models.LinkedUser) ([]messenger.Message, error) {
	buttons := messenger.NewButtons(menuText, menuText,
		messenger.NewPostbackAction("出勤", "action="+string(models.CommandCheckIn)),
		messenger.NewPostbackAction("退勤", "action="+string(models.CommandCheckOut)),
		messenger.NewPostbackAction("勤怠確認", "action="+string(models.CommandStatus)),
	)
	return []messenger.Message{buttons}, nil
}

// Onboarding is the fixed reply for senders with no linked account.
func (s *BotService) Onboarding() []messenger.Message {
	text := fmt.Sprintf(replyOnboarding, s.portalURL)
	return []messenger.Message{messenger.NewText(text)}
}

// Help enumerates the commands for unrecognized message text.
func (s *BotService) Help() []messenger.Message {
	return []messenger.Message{messenger.NewText(replyHelp)}
}

// GenericError is the reply for transient or unclassified failures.
func (s *BotService) GenericError() []messenger.Message {
	return []messenger.Message{messenger.NewText(replyGenericError)}
}

func (s *BotService) formatTime(t time.Time) string {
	return t.In(s.location).Format("15:04")
}
