// Package mailer delivers the call notification after a record is
// persisted. Delivery failure never affects the stored record; the caller
// reports it and moves on.
package mailer

import (
	"context"
	"errors"
	"fmt"

	mail "github.com/wneessen/go-mail"

	"calldesk/record"
)

var ErrNotConfigured = errors.New("mailer: smtp credentials not configured")

// Settings identify the shared submission account.
type Settings struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Message is one outgoing notification.
type Message struct {
	From    string
	To      string
	CC      string
	Subject string
	Body    string
}

type Mailer struct {
	settings Settings
}

func New(settings Settings) *Mailer {
	if settings.Host == "" {
		settings.Host = "smtp.gmail.com"
	}
	if settings.Port == 0 {
		settings.Port = 587
	}
	return &Mailer{settings: settings}
}

// DefaultSubject is used when the form leaves the subject blank.
func DefaultSubject(counterpart string) string {
	return "【電話】" + counterpart
}

// Body renders the notification text for a persisted record.
func Body(rec record.CallRecord) string {
	return fmt.Sprintf("%sさん\n\n電話がありました。\n日時: %s\n相手: %s (%s)\n用件: %s\n\n詳細:\n%s",
		rec.ToPerson, rec.Timestamp, rec.Counterpart, rec.PhoneNumber, rec.RequestType, rec.Memo)
}

// Send submits the message over STARTTLS with the configured credentials.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if m.settings.Password == "" {
		return ErrNotConfigured
	}

	mm := mail.NewMsg()
	if err := mm.From(msg.From); err != nil {
		return fmt.Errorf("mailer: from %q: %w", msg.From, err)
	}
	if err := mm.To(msg.To); err != nil {
		return fmt.Errorf("mailer: to %q: %w", msg.To, err)
	}
	if msg.CC != "" {
		if err := mm.Cc(msg.CC); err != nil {
			return fmt.Errorf("mailer: cc %q: %w", msg.CC, err)
		}
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)

	client, err := mail.NewClient(m.settings.Host,
		mail.WithPort(m.settings.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.settings.Username),
		mail.WithPassword(m.settings.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("mailer: client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}
