package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vaccine-reminder/internal/model"
	"vaccine-reminder/internal/vaccination"
)

const defaultUpcomingDays = 7

func (b *Bot) startRemindConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	state := &conversationState{stage: stageReminderDose}
	prompt := "🔔 New reminder.\n<b>Step 1:</b> which dose? Send its number from /schedule."
	if id, err := parseID(msg.CommandArguments()); err == nil {
		state.doseID = id
		state.stage = stageReminderDate
		prompt = fmt.Sprintf("🔔 New reminder for dose #%d.\n📅 When? <code>YYYY-MM-DD</code>, today or later.", id)
	}
	b.setConversation(msg.From.ID, state)
	if state.stage == stageReminderDate {
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, todayKeyboard())
	}
	return b.sendWithReplyMarkup(msg.Chat.ID, prompt, cancelKeyboard())
}

func (b *Bot) finishRemind(ctx context.Context, from *tgbotapi.User, state conversationState, message string, chatID int64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	if isSkipInput(message) {
		dose, err := b.svc.Schedule.GetDose(ctx, user.ID, state.doseID)
		if err != nil {
			return b.replyError(chatID, err)
		}
		child, err := b.svc.Children.Get(ctx, user.ID, dose.ChildID)
		if err != nil {
			return b.replyError(chatID, err)
		}
		message = vaccination.ReminderMessage(child.Child.Name, dose.Vaccine.Name, dose.Due())
	}

	reminder, err := b.svc.Reminders.CreateManual(ctx, user.ID, state.doseID, state.date, message)
	if err != nil {
		return b.replyError(chatID, err)
	}
	b.log.Info("reminder added via chat", zap.Uint("reminder_id", reminder.ID), zap.Uint("user_id", user.ID))
	return b.sendText(chatID, fmt.Sprintf("🔔 Reminder #%d set for %s.", reminder.ID, model.FormatDate(reminder.Date())))
}

// handleReminders lists unsent reminders for the next days: /reminders [days|all].
func (b *Bot) handleReminders(ctx context.Context, msg *tgbotapi.Message) error {
	days := defaultUpcomingDays
	args := strings.TrimSpace(msg.CommandArguments())
	if strings.EqualFold(args, "all") {
		return b.sendAllReminders(ctx, msg)
	}
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 0 || n > 365 {
			return b.sendText(msg.Chat.ID, "The number of days must be between 0 and 365, for example /reminders 14")
		}
		days = n
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	views, err := b.svc.Reminders.Upcoming(ctx, user.ID, days)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if len(views) == 0 {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("No reminders in the next %d days. Add one with /remind.", days))
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🔔 <b>Reminders for the next %d days</b>\n\n", days))
	for _, v := range views {
		builder.WriteString(fmt.Sprintf("• %s · %s · dose #%d\n   %s\n",
			model.FormatDate(v.Reminder.Date()),
			escape(v.Child.Name),
			v.Dose.ID,
			escape(v.Reminder.Message)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) sendAllReminders(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	views, err := b.svc.Reminders.ListForUser(ctx, user.ID)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if len(views) == 0 {
		return b.sendText(msg.Chat.ID, "You have no reminders yet. Add one with /remind.")
	}

	var builder strings.Builder
	builder.WriteString("🔔 <b>All reminders</b>\n\n")
	for _, v := range views {
		mark := "⏳"
		if v.Reminder.Sent {
			mark = "✅"
		}
		builder.WriteString(fmt.Sprintf("%s %s · %s · %s\n",
			mark,
			model.FormatDate(v.Reminder.Date()),
			escape(v.Child.Name),
			escape(shortText(v.VaccineName(), 30))))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}
