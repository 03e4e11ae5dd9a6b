package bot

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vaccine-reminder/internal/model"
	"vaccine-reminder/internal/service"
)

// Services is everything the bot calls into.
type Services struct {
	Users     *service.UserService
	Children  *service.ChildService
	Schedule  *service.ScheduleService
	Reminders *service.ReminderService
	Catalog   *service.CatalogService
	Reports   *service.ReportService
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           *tgbotapi.BotAPI
	svc           Services
	clock         service.Clock
	log           *zap.Logger
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
}

func New(token string, svc Services, clock service.Clock, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log = log.Named("bot")
	log.Info("bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:           api,
		svc:           svc,
		clock:         clock,
		log:           log,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Error("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Error("handle message", zap.Error(err))
			}
		}
	}

	return ctx.Err()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled. Pick a command from the menu to start again.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.log.Info("command",
			zap.Int64("from", msg.From.ID),
			zap.String("command", msg.Command()),
			zap.String("args", msg.CommandArguments()))
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if state := b.getConversation(msg.From.ID); state != nil {
		b.log.Debug("conversation step", zap.Int64("from", msg.From.ID), zap.Int("stage", int(state.stage)))
		return b.handleConversation(ctx, msg, state)
	}

	return b.sendText(msg.Chat.ID, "I did not understand that. Use /addchild to register a child or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	// A new command abandons any half-finished dialog.
	if msg.Command() != "cancel" {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
	}

	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "addchild":
		return b.startAddChildConversation(ctx, msg)
	case "children":
		return b.handleListChildren(ctx, msg)
	case "overview":
		return b.handleOverview(ctx, msg)
	case "deletechild":
		return b.handleDeleteChild(ctx, msg)
	case "schedule":
		return b.handleSchedule(ctx, msg)
	case "book":
		return b.handleBook(ctx, msg)
	case "complete":
		return b.handleComplete(ctx, msg)
	case "deletedose":
		return b.handleDeleteDose(ctx, msg)
	case "duesoon":
		return b.handleDueSoon(ctx, msg)
	case "overdue":
		return b.handleOverdue(ctx, msg)
	case "upcoming":
		return b.handleUpcoming(ctx, msg)
	case "reminders":
		return b.handleReminders(ctx, msg)
	case "remind":
		return b.startRemindConversation(ctx, msg)
	case "vaccines":
		return b.handleVaccines(ctx, msg)
	case "email":
		return b.handleEmail(ctx, msg)
	case "language":
		return b.handleLanguage(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "deleteaccount":
		return b.handleDeleteAccount(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelAddChild):
		return true, b.startAddChildConversation(ctx, msg)
	case strings.ToLower(menuLabelChildren):
		return true, b.handleListChildren(ctx, msg)
	case strings.ToLower(menuLabelDueSoon):
		return true, b.handleDueSoon(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

// Notify delivers a reminder to the user's private chat.
func (b *Bot) Notify(ctx context.Context, notice service.Notice) error {
	if notice.User.TelegramID == 0 {
		return service.ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	text := fmt.Sprintf("🔔 <b>Vaccination reminder</b>\n%s\n\n💉 %s for %s on <b>%s</b>",
		escape(notice.Message),
		escape(notice.VaccineName),
		escape(notice.Child.Name),
		model.FormatDate(notice.Due))
	return b.sendText(notice.User.TelegramID, text)
}

// SendReports sends the vaccination summary to every user with something overdue or due soon.
func (b *Bot) SendReports(ctx context.Context) error {
	users, err := b.svc.Users.List(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, ok, err := b.svc.Reports.DailySummary(ctx, user)
		if err != nil {
			b.log.Error("build summary", zap.Uint("user_id", user.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		if err := b.sendText(user.TelegramID, text); err != nil {
			b.log.Warn("send summary", zap.Int64("chat_id", user.TelegramID), zap.Error(err))
		}
	}
	return nil
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.svc.Users.Register(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

// replyError turns a service error into a chat reply. Unexpected errors are
// logged and hidden from the user.
func (b *Bot) replyError(chatID int64, err error) error {
	text, known := userMessage(err)
	if !known {
		b.log.Error("request failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return b.sendText(chatID, text)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) ackCallback(cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn("callback ack", zap.Error(err))
	}
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func parseID(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(value), nil
}

func escape(s string) string {
	return html.EscapeString(s)
}
