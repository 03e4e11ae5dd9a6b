package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vaccine-reminder/internal/model"
	"vaccine-reminder/internal/service"
)

func (b *Bot) handleSchedule(ctx context.Context, msg *tgbotapi.Message) error {
	childID, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give the child number: /schedule 3. See /children for numbers.")
	}
	return b.sendSchedule(ctx, msg.Chat.ID, msg.From, childID)
}

func (b *Bot) sendSchedule(ctx context.Context, chatID int64, from *tgbotapi.User, childID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	views, err := b.svc.Schedule.ListSchedule(ctx, user.ID, childID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if len(views) == 0 {
		return b.sendText(chatID, "No doses scheduled yet. Book one with /book.")
	}
	title := fmt.Sprintf("📋 <b>Schedule of %s</b>", escape(views[0].Child.Name))
	return b.sendDoseList(chatID, title, views)
}

// sendDoseList renders doses with a completion button for every open one.
func (b *Bot) sendDoseList(chatID int64, title string, views []service.DoseView) error {
	var builder strings.Builder
	builder.WriteString(title)
	builder.WriteString("\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, v := range views {
		builder.WriteString(service.FormatDose(v))
		if v.Dose.IsCompleted() {
			continue
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ #%d · %s", v.Dose.ID, shortText(v.VaccineName(), 20)),
				fmt.Sprintf("%s%d", cbCompletePrefix, v.Dose.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbDeleteDosePrefix, v.Dose.ID)),
		))
	}

	text := strings.TrimSpace(builder.String())
	if len(buttons) == 0 {
		return b.sendText(chatID, text)
	}
	return b.sendWithReplyMarkup(chatID, text, tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

func (b *Bot) handleDueSoon(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	views, err := b.svc.Schedule.DueSoon(ctx, user.ID)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if len(views) == 0 {
		return b.sendText(msg.Chat.ID, "🎉 Nothing is due in the next days.")
	}
	return b.sendDoseList(msg.Chat.ID, "⏳ <b>Due soon</b>", views)
}

func (b *Bot) handleOverdue(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	views, err := b.svc.Schedule.Overdue(ctx, user.ID)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if len(views) == 0 {
		return b.sendText(msg.Chat.ID, "🎉 No overdue doses.")
	}
	return b.sendDoseList(msg.Chat.ID, "⚠️ <b>Overdue</b>", views)
}

func (b *Bot) handleUpcoming(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	views, err := b.svc.Schedule.Upcoming(ctx, user.ID)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if len(views) == 0 {
		return b.sendText(msg.Chat.ID, "No upcoming doses.")
	}
	return b.sendDoseList(msg.Chat.ID, "🗓 <b>Upcoming</b>", views)
}

// handleBook schedules a catalog vaccine manually: /book <child> <vaccine> <date>.
func (b *Bot) handleBook(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 3 {
		return b.sendText(msg.Chat.ID, "Usage: /book &lt;child&gt; &lt;vaccine&gt; &lt;YYYY-MM-DD&gt;. See /children and /vaccines for numbers.")
	}
	childID, err := parseID(args[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, "The child number must be a positive integer.")
	}
	vaccineID, err := parseID(args[1])
	if err != nil {
		return b.sendText(msg.Chat.ID, "The vaccine number must be a positive integer.")
	}
	on, err := model.ParseDate("scheduled_date", args[2])
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	dose, err := b.svc.Schedule.ScheduleManual(ctx, user.ID, childID, vaccineID, on)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📌 %s booked as dose #%d on %s.",
		escape(dose.Vaccine.Name), dose.ID, model.FormatDate(dose.Due())))
}

// handleComplete records a dose: /complete <dose> [YYYY-MM-DD], today by default.
func (b *Bot) handleComplete(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 || len(args) > 2 {
		return b.sendText(msg.Chat.ID, "Give the dose number: /complete 12 or /complete 12 2024-05-01")
	}
	doseID, err := parseID(args[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, "The dose number must be a positive integer.")
	}
	on := b.clock.Today()
	if len(args) == 2 {
		if on, err = model.ParseDate("completed_date", args[1]); err != nil {
			return b.replyError(msg.Chat.ID, err)
		}
	}
	return b.askCompleteConfirmation(ctx, msg.Chat.ID, msg.From, doseID, on)
}

func (b *Bot) askCompleteConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, doseID uint, on time.Time) error {
	dose, err := b.ownedDose(ctx, from, doseID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if on.After(b.clock.Today()) {
		return b.sendText(chatID, "⚠️ A dose cannot be recorded in the future.")
	}

	text := fmt.Sprintf("Record %s (#%d) as given on %s?", escape(dose.Vaccine.Name), dose.ID, model.FormatDate(on))
	if completed, ok := dose.CompletedOn(); ok {
		text = fmt.Sprintf("%s (#%d) is already recorded on %s. Replace the date with %s?",
			escape(dose.Vaccine.Name), dose.ID, model.FormatDate(completed), model.FormatDate(on))
	}
	b.setConfirmation(from.ID, confirmationRequest{action: actionComplete, id: dose.ID, date: on})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleDeleteDose(ctx context.Context, msg *tgbotapi.Message) error {
	doseID, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give the dose number: /deletedose 12")
	}
	return b.askDeleteDoseConfirmation(ctx, msg.Chat.ID, msg.From, doseID)
}

func (b *Bot) askDeleteDoseConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, doseID uint) error {
	dose, err := b.ownedDose(ctx, from, doseID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	text := fmt.Sprintf("Delete %s (#%d, %s) and its reminders?",
		escape(dose.Vaccine.Name), dose.ID, model.FormatDate(dose.Due()))
	b.setConfirmation(from.ID, confirmationRequest{action: actionDeleteDose, id: dose.ID})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) ownedDose(ctx context.Context, from *tgbotapi.User, doseID uint) (*model.ScheduledDose, error) {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return nil, err
	}
	return b.svc.Schedule.GetDose(ctx, user.ID, doseID)
}
