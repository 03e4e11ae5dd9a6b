package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleVaccines lists the catalog, or one entry with /vaccines <id>.
func (b *Bot) handleVaccines(ctx context.Context, msg *tgbotapi.Message) error {
	if args := strings.TrimSpace(msg.CommandArguments()); args != "" {
		id, err := parseID(args)
		if err != nil {
			return b.sendText(msg.Chat.ID, "Send a vaccine number, for example /vaccines 3")
		}
		v, err := b.svc.Catalog.Get(ctx, id)
		if err != nil {
			return b.replyError(msg.Chat.ID, err)
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("💉 <b>%s</b> (dose %d)\n%s\nRecommended at %s.\nBook it with /book &lt;child&gt; %d &lt;YYYY-MM-DD&gt;",
			escape(v.Name), v.DoseNumber, escape(v.Description), formatMonths(v.RecommendedAgeMonths), v.ID))
	}

	vaccines, err := b.svc.Catalog.List(ctx)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if len(vaccines) == 0 {
		return b.sendText(msg.Chat.ID, "The vaccine catalog is empty.")
	}

	var builder strings.Builder
	builder.WriteString("💉 <b>Vaccine catalog</b>\n\n")
	for _, v := range vaccines {
		required := ""
		if v.IsRequired {
			required = " · required"
		}
		builder.WriteString(fmt.Sprintf("<code>#%d</code> <b>%s</b> (dose %d) at %s%s\n   %s\n",
			v.ID, escape(v.Name), v.DoseNumber, formatMonths(v.RecommendedAgeMonths), required, escape(v.Description)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

// handleEmail shows, sets or clears (/email off) the reminder address.
func (b *Bot) handleEmail(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		if user.Email == "" {
			return b.sendText(msg.Chat.ID, "No email set. Use /email you@example.com to also get reminders by email.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Reminders are also emailed to <b>%s</b>. Use /email off to stop.", escape(user.Email)))
	}
	if strings.EqualFold(arg, "off") {
		arg = ""
	}

	updated, err := b.svc.Users.SetEmail(ctx, user.ID, arg)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if updated.Email == "" {
		return b.sendText(msg.Chat.ID, "📭 Email reminders turned off.")
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📬 Reminders will also be emailed to <b>%s</b>.", escape(updated.Email)))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	text, ok, err := b.svc.Reports.DailySummary(ctx, *user)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if !ok {
		return b.sendText(msg.Chat.ID, "🎉 Nothing overdue or due soon.")
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleDeleteAccount(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.setConfirmation(msg.From.ID, confirmationRequest{action: actionDeleteAccount})
	return b.sendWithReplyMarkup(msg.Chat.ID,
		"⚠️ Delete your account with every child, dose and reminder? This cannot be undone.",
		confirmKeyboard())
}

// handleLanguage shows or sets the interface language: /language [code].
func (b *Bot) handleLanguage(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🌐 Language: <b>%s</b>. Change it with /language &lt;code&gt;.", escape(user.Language)))
	}
	updated, err := b.svc.Users.SetLanguage(ctx, user.ID, arg)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🌐 Language set to <b>%s</b>.", escape(updated.Language)))
}
