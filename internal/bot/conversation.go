package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vaccine-reminder/internal/model"
	"vaccine-reminder/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageChildName
	stageChildBirth
	stageChildGender
	stageReminderDose
	stageReminderDate
	stageReminderMessage
)

type conversationState struct {
	stage  conversationStage
	child  service.ChildInput
	doseID uint
	date   string
}

type confirmationAction int

const (
	actionComplete confirmationAction = iota
	actionDeleteDose
	actionDeleteChild
	actionDeleteAccount
)

type confirmationRequest struct {
	action confirmationAction
	id     uint
	date   time.Time
}

const (
	cbCompletePrefix   = "complete:"
	cbDeleteDosePrefix = "deldose:"
	cbOverviewPrefix   = "overview:"
	cbSchedulePrefix   = "schedule:"
)

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageChildName:
		if len([]rune(text)) < 2 {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The name must be at least 2 characters long. Try again.", cancelKeyboard())
		}
		state.child.Name = text
		state.stage = stageChildBirth
		return b.sendWithReplyMarkup(msg.Chat.ID, "📅 <b>Step 2:</b> date of birth in <code>YYYY-MM-DD</code> format.", cancelKeyboard())
	case stageChildBirth:
		if _, err := model.ParseDate("date_of_birth", text); err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "I cannot read that date. Use <code>2024-01-31</code>.", cancelKeyboard())
		}
		state.child.DateOfBirth = text
		state.stage = stageChildGender
		return b.sendWithReplyMarkup(msg.Chat.ID, "⚧ <b>Step 3:</b> gender?", genderKeyboard())
	case stageChildGender:
		if _, err := model.ParseGender(text); err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Pick one of the buttons.", genderKeyboard())
		}
		state.child.Gender = text
		b.clearConversation(msg.From.ID)
		return b.finishAddChild(ctx, msg.From, state.child, msg.Chat.ID)

	case stageReminderDose:
		id, err := parseID(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Send the dose number, for example <code>12</code>.", cancelKeyboard())
		}
		state.doseID = id
		state.stage = stageReminderDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "📅 When should I remind you? <code>YYYY-MM-DD</code>, today or later.", todayKeyboard())
	case stageReminderDate:
		if isTodayInput(text) {
			text = model.FormatDate(b.clock.Today())
		}
		if _, err := model.ParseDate("reminder_date", text); err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "I cannot read that date. Use <code>2024-01-31</code>.", todayKeyboard())
		}
		state.date = text
		state.stage = stageReminderMessage
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ What should the reminder say? (at least 5 characters, or Skip for the default text)", skipKeyboard())
	case stageReminderMessage:
		b.clearConversation(msg.From.ID)
		return b.finishRemind(ctx, msg.From, *state, text, msg.Chat.ID)

	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Dialog reset. Start again from the menu.")
	}
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.runConfirmed(ctx, msg.Chat.ID, msg.From, req)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "↩️ Nothing changed.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirm or cancel the pending action.", confirmKeyboard())
	}
}

func (b *Bot) runConfirmed(ctx context.Context, chatID int64, from *tgbotapi.User, req confirmationRequest) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	switch req.action {
	case actionComplete:
		dose, err := b.svc.Schedule.MarkCompleted(ctx, user.ID, req.id, req.date)
		if err != nil {
			return b.replyError(chatID, err)
		}
		return b.sendText(chatID, fmt.Sprintf("✅ %s (#%d) recorded as given on %s.",
			escape(dose.Vaccine.Name), dose.ID, model.FormatDate(req.date)))
	case actionDeleteDose:
		if err := b.svc.Schedule.DeleteDose(ctx, user.ID, req.id); err != nil {
			return b.replyError(chatID, err)
		}
		return b.sendText(chatID, fmt.Sprintf("🗑 Dose #%d and its reminders were removed.", req.id))
	case actionDeleteChild:
		if err := b.svc.Children.Delete(ctx, user.ID, req.id); err != nil {
			return b.replyError(chatID, err)
		}
		return b.sendText(chatID, "🗑 Child profile, schedule and reminders were removed.")
	case actionDeleteAccount:
		if err := b.svc.Users.DeleteAccount(ctx, user.ID); err != nil {
			return b.replyError(chatID, err)
		}
		msg := tgbotapi.NewMessage(chatID, "👋 Your account and all data were deleted. Send /start to begin again.")
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		_, err := b.api.Send(msg)
		return err
	default:
		return nil
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	b.ackCallback(cb)

	data := cb.Data
	chatID := cb.Message.Chat.ID
	b.log.Info("callback", zap.Int64("from", cb.From.ID), zap.String("data", data))

	prefix, raw, ok := splitCallback(data)
	if !ok {
		return nil
	}
	id, err := parseID(raw)
	if err != nil {
		return nil
	}

	switch prefix {
	case cbCompletePrefix:
		return b.askCompleteConfirmation(ctx, chatID, cb.From, id, b.clock.Today())
	case cbDeleteDosePrefix:
		return b.askDeleteDoseConfirmation(ctx, chatID, cb.From, id)
	case cbOverviewPrefix:
		return b.sendOverview(ctx, chatID, cb.From, id)
	case cbSchedulePrefix:
		return b.sendSchedule(ctx, chatID, cb.From, id)
	default:
		return nil
	}
}

func splitCallback(data string) (prefix, id string, ok bool) {
	for _, p := range []string{cbCompletePrefix, cbDeleteDosePrefix, cbOverviewPrefix, cbSchedulePrefix} {
		if strings.HasPrefix(data, p) {
			return p, strings.TrimPrefix(data, p), true
		}
	}
	return "", "", false
}
