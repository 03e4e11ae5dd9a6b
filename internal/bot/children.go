package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vaccine-reminder/internal/model"
	"vaccine-reminder/internal/service"
)

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /addchild — register a child step by step\n" +
	"• /children — your children with ages\n" +
	"• /overview &lt;child&gt; — vaccination progress of a child\n" +
	"• /schedule &lt;child&gt; — all doses of a child\n" +
	"• /book &lt;child&gt; &lt;vaccine&gt; &lt;YYYY-MM-DD&gt; — book a catalog vaccine on a date\n" +
	"• /complete &lt;dose&gt; [YYYY-MM-DD] — record a dose as given\n" +
	"• /deletedose &lt;dose&gt; — remove a dose and its reminders\n" +
	"• /duesoon — doses due in the next days\n" +
	"• /overdue — doses past their date\n" +
	"• /upcoming — all doses still ahead\n" +
	"• /remind — add your own reminder to a dose\n" +
	"• /reminders [days|all] — reminders coming up (default 7 days)\n" +
	"• /vaccines [number] — the vaccine catalog\n" +
	"• /email [address] — set or clear the email for reminders\n" +
	"• /report — send the summary now\n" +
	"• /language [code] — show or change the interface language\n" +
	"• /deletechild &lt;child&gt; — remove a child profile\n" +
	"• /deleteaccount — delete your account and all data\n" +
	"• /cancel — stop the current input"

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I keep track of your children's vaccinations and remind you before each dose.</b>\n\n"+
			"Start with /addchild, then check /schedule and /duesoon.\n\n%s",
		escape(user.DisplayName()), helpText,
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, helpText)
}

func (b *Bot) startAddChildConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.log.Info("start add child conversation", zap.Int64("from", msg.From.ID))
	b.setConversation(msg.From.ID, &conversationState{stage: stageChildName})
	return b.sendWithReplyMarkup(msg.Chat.ID, "👶 Registering a child.\n<b>Step 1:</b> what is the child's name?", cancelKeyboard())
}

func (b *Bot) finishAddChild(ctx context.Context, from *tgbotapi.User, input service.ChildInput, chatID int64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	child, doses, err := b.svc.Children.Create(ctx, user.ID, input)
	if err != nil {
		return b.replyError(chatID, err)
	}

	var summary strings.Builder
	summary.WriteString("✅ <b>Child registered</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> %d\n", child.ID))
	summary.WriteString(fmt.Sprintf("• <b>Name:</b> %s\n", escape(child.Name)))
	summary.WriteString(fmt.Sprintf("• <b>Born:</b> %s\n", model.FormatDate(child.BirthDate())))
	summary.WriteString(fmt.Sprintf("• <b>Gender:</b> %s\n", child.Gender))
	summary.WriteString(fmt.Sprintf("• <b>Doses scheduled:</b> %d\n", len(doses)))
	if err := b.sendText(chatID, strings.TrimSpace(summary.String())); err != nil {
		return err
	}
	return b.sendSchedule(ctx, chatID, from, child.ID)
}

func (b *Bot) handleListChildren(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	profiles, err := b.svc.Children.List(ctx, user.ID)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if len(profiles) == 0 {
		return b.sendText(msg.Chat.ID, "No children yet. Add one with /addchild.")
	}

	var builder strings.Builder
	builder.WriteString("👶 <b>Your children</b>\n\n")
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, p := range profiles {
		builder.WriteString(formatProfile(p))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("📋 %s", shortText(p.Child.Name, 16)), fmt.Sprintf("%s%d", cbSchedulePrefix, p.Child.ID)),
			tgbotapi.NewInlineKeyboardButtonData("📊 Overview", fmt.Sprintf("%s%d", cbOverviewPrefix, p.Child.ID)),
		))
	}

	return b.sendWithReplyMarkup(msg.Chat.ID, strings.TrimSpace(builder.String()), tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

func (b *Bot) handleOverview(ctx context.Context, msg *tgbotapi.Message) error {
	childID, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give the child number: /overview 3")
	}
	return b.sendOverview(ctx, msg.Chat.ID, msg.From, childID)
}

func (b *Bot) sendOverview(ctx context.Context, chatID int64, from *tgbotapi.User, childID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	overview, err := b.svc.Children.HealthOverview(ctx, user.ID, childID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, formatOverview(*overview))
}

func (b *Bot) handleDeleteChild(ctx context.Context, msg *tgbotapi.Message) error {
	childID, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give the child number: /deletechild 3")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	profile, err := b.svc.Children.Get(ctx, user.ID, childID)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}

	text := fmt.Sprintf("Delete %s (#%d) with the whole vaccination schedule and reminders?",
		escape(profile.Child.Name), profile.Child.ID)
	b.setConfirmation(msg.From.ID, confirmationRequest{action: actionDeleteChild, id: profile.Child.ID})
	return b.sendWithReplyMarkup(msg.Chat.ID, text, confirmKeyboard())
}
