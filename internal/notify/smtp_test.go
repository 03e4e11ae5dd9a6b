package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/quotedprintable"
	netmail "net/mail"
	"strings"
	"testing"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"vaccine-reminder/internal/config"
	"vaccine-reminder/internal/model"
	"vaccine-reminder/internal/service"
)

var testSMTP = config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "bot@example.com", Password: "secret", From: "bot@example.com"}

type sentMail struct {
	raw     string
	header  netmail.Header
	subject string
	body    string
}

func newTestNotifier(t *testing.T, cfg config.SMTPConfig, sent *[]sentMail, sendErr error) *SMTPNotifier {
	t.Helper()
	n := NewSMTPNotifier(cfg, zap.NewNop())
	n.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	n.send = func(_ context.Context, msg *mail.Msg) error {
		*sent = append(*sent, render(t, msg))
		return sendErr
	}
	return n
}

// render writes msg out and reads it back the way a mail client would.
func render(t *testing.T, msg *mail.Msg) sentMail {
	t.Helper()
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	parsed, err := netmail.ReadMessage(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadMessage: %v\n%s", err, buf.String())
	}
	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	var body io.Reader = parsed.Body
	if strings.EqualFold(parsed.Header.Get("Content-Transfer-Encoding"), "quoted-printable") {
		body = quotedprintable.NewReader(parsed.Body)
	}
	text, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return sentMail{raw: buf.String(), header: parsed.Header, subject: subject, body: string(text)}
}

func testNotice() service.Notice {
	return service.Notice{
		User:        model.User{ID: 3, FirstName: "Ann", Email: "ann@example.com"},
		Child:       model.Child{Name: "Mia"},
		VaccineName: "MMR",
		Due:         time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
		ReminderID:  11,
		Message:     "Reminder: Mia is due for MMR on 2024-06-08",
	}
}

func headerBlock(raw string) string {
	if i := strings.Index(raw, "\r\n\r\n"); i >= 0 {
		return raw[:i]
	}
	return raw
}

func TestSMTPNotifier_SendsPlainTextMessage(t *testing.T) {
	var sent []sentMail
	n := newTestNotifier(t, testSMTP, &sent, nil)

	if err := n.Notify(context.Background(), testNotice()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sent))
	}
	got := sent[0]

	to, err := got.header.AddressList("To")
	if err != nil || len(to) != 1 || to[0].Address != "ann@example.com" {
		t.Fatalf("unexpected recipients: %v (%v)", to, err)
	}
	from, err := got.header.AddressList("From")
	if err != nil || len(from) != 1 || from[0].Address != "bot@example.com" {
		t.Fatalf("unexpected sender: %v (%v)", from, err)
	}
	if got.subject != "Vaccine Reminder: MMR for Mia" {
		t.Fatalf("unexpected subject %q", got.subject)
	}
	if id := got.header.Get("Message-Id"); !strings.HasPrefix(id, "<") || !strings.HasSuffix(id, "@example.com>") {
		t.Fatalf("unexpected Message-ID %q", id)
	}
	if date, err := got.header.Date(); err != nil || !date.Equal(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected Date %v (%v)", date, err)
	}
	if ct := got.header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "text/plain") || !strings.Contains(strings.ToLower(ct), "utf-8") {
		t.Fatalf("unexpected Content-Type %q", ct)
	}
	if !strings.Contains(got.body, "scheduled for the MMR vaccine on 2024-06-08") {
		t.Fatalf("body missing schedule sentence:\n%s", got.body)
	}
}

func TestSMTPNotifier_EncodesNonASCIIText(t *testing.T) {
	var sent []sentMail
	n := newTestNotifier(t, testSMTP, &sent, nil)
	notice := testNotice()
	notice.Child.Name = "Zoë"

	if err := n.Notify(context.Background(), notice); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	got := sent[0]

	headers := headerBlock(got.raw)
	for i := 0; i < len(headers); i++ {
		if headers[i] > 0x7e {
			t.Fatalf("raw 8-bit byte in headers:\n%s", headers)
		}
	}
	if got.subject != "Vaccine Reminder: MMR for Zoë" {
		t.Fatalf("subject did not round-trip: %q", got.subject)
	}
	if cte := got.header.Get("Content-Transfer-Encoding"); cte == "" {
		t.Fatalf("missing Content-Transfer-Encoding")
	}
	if !strings.Contains(got.body, "This is a reminder that Zoë is scheduled") {
		t.Fatalf("body did not round-trip:\n%s", got.body)
	}
}

func TestSMTPNotifier_SkipsUsersWithoutEmail(t *testing.T) {
	var sent []sentMail
	n := newTestNotifier(t, testSMTP, &sent, nil)

	notice := testNotice()
	notice.User.Email = ""
	if err := n.Notify(context.Background(), notice); !errors.Is(err, service.ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}
	if len(sent) != 0 {
		t.Fatalf("nothing should have been sent, got %d", len(sent))
	}
}

func TestSMTPNotifier_WrapsSendErrors(t *testing.T) {
	var sent []sentMail
	boom := errors.New("connection refused")
	n := newTestNotifier(t, testSMTP, &sent, boom)

	if err := n.Notify(context.Background(), testNotice()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestSMTPNotifier_RejectsInvalidRecipient(t *testing.T) {
	var sent []sentMail
	n := newTestNotifier(t, testSMTP, &sent, nil)
	notice := testNotice()
	notice.User.Email = "ann@"

	if err := n.Notify(context.Background(), notice); err == nil {
		t.Fatalf("expected invalid address rejected")
	}
	if len(sent) != 0 {
		t.Fatalf("nothing should have been sent, got %d", len(sent))
	}
}

func TestSMTPNotifier_HeaderInjection(t *testing.T) {
	var sent []sentMail
	n := newTestNotifier(t, testSMTP, &sent, nil)
	notice := testNotice()
	notice.Child.Name = "Mia\r\nBcc: evil@example.com"

	if err := n.Notify(context.Background(), notice); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	got := sent[0]
	if got.header.Get("Bcc") != "" || strings.Contains(headerBlock(got.raw), "\r\nBcc:") {
		t.Fatalf("header injection not prevented:\n%s", headerBlock(got.raw))
	}
}

func TestSMTPNotifier_ClientUsesConfiguredServer(t *testing.T) {
	n := NewSMTPNotifier(testSMTP, zap.NewNop())
	client, err := n.newClient()
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	if addr := client.ServerAddr(); addr != "smtp.example.com:587" {
		t.Fatalf("unexpected server address %q", addr)
	}
}

func TestSMTPNotifier_SendHonoursCancelledContext(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{Host: "127.0.0.1", Port: 2525, From: "bot@example.com"}, zap.NewNop())
	msg, err := n.buildMessage(testNotice())
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	started := time.Now()
	if err := n.send(ctx, msg); err == nil {
		t.Fatalf("expected send to fail on a cancelled context")
	}
	if took := time.Since(started); took > 5*time.Second {
		t.Fatalf("send ignored cancellation, took %s", took)
	}
}
