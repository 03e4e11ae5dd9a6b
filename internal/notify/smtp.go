// Package notify delivers reminder notices outside of Telegram.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"vaccine-reminder/internal/config"
	"vaccine-reminder/internal/model"
	"vaccine-reminder/internal/service"
)

const sendTimeout = 30 * time.Second

type sendFunc func(ctx context.Context, msg *mail.Msg) error

// SMTPNotifier emails reminders to users that registered an address.
type SMTPNotifier struct {
	cfg  config.SMTPConfig
	send sendFunc
	now  func() time.Time
	log  *zap.Logger
}

func NewSMTPNotifier(cfg config.SMTPConfig, log *zap.Logger) *SMTPNotifier {
	n := &SMTPNotifier{cfg: cfg, now: time.Now, log: log.Named("smtp")}
	n.send = n.dialAndSend
	return n
}

// Notify sends notice to the user's email. Users without one are skipped
// with service.ErrNoRecipient.
func (n *SMTPNotifier) Notify(ctx context.Context, notice service.Notice) error {
	if notice.User.Email == "" {
		return service.ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := n.buildMessage(notice)
	if err != nil {
		return fmt.Errorf("build email for user %d: %w", notice.User.ID, err)
	}
	if err := n.send(ctx, msg); err != nil {
		return fmt.Errorf("send email to user %d: %w", notice.User.ID, err)
	}
	n.log.Info("reminder emailed", zap.Uint("reminder_id", notice.ReminderID), zap.Uint("user_id", notice.User.ID))
	return nil
}

func (n *SMTPNotifier) buildMessage(notice service.Notice) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(notice.User.Email); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(fmt.Sprintf("Vaccine Reminder: %s for %s", notice.VaccineName, notice.Child.Name))
	msg.SetDateWithValue(n.now())
	msg.SetMessageIDWithValue(fmt.Sprintf("%s@%s", uuid.NewString(), n.domain()))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hello %s,\r\n\r\n%s\r\n\r\nThis is a reminder that %s is scheduled for the %s vaccine on %s.\r\n",
		notice.User.DisplayName(), notice.Message, notice.Child.Name, notice.VaccineName, model.FormatDate(notice.Due)))
	return msg, nil
}

func (n *SMTPNotifier) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithPort(n.cfg.Port),
		mail.WithTimeout(sendTimeout),
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password))
	}
	return mail.NewClient(n.cfg.Host, opts...)
}

func (n *SMTPNotifier) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := n.newClient()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// domain is the Message-ID right-hand side, taken from the sender address.
func (n *SMTPNotifier) domain() string {
	if at := strings.LastIndex(n.cfg.From, "@"); at >= 0 && at < len(n.cfg.From)-1 {
		return strings.Trim(n.cfg.From[at+1:], "> ")
	}
	return "localhost"
}
