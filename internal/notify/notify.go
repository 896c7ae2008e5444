package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type Message struct {
	To      []string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Options struct {
	From        string        `toml:"from"`
	AdminEmail  string        `toml:"admin-email"`
	SendTimeout time.Duration `toml:"send-timeout"`
	SMTP        SMTPOptions   `toml:"smtp"`
	ResendKey   string        `toml:"-"`
}

func (o *Options) FillDefaults() {
	if o.From == "" {
		o.From = "no-reply@xtesports"
	}
	if o.SendTimeout == 0 {
		o.SendTimeout = 30 * time.Second
	}
	o.SMTP.FillDefaults()
}

// NewSender picks the transport: SMTP when a host is configured, then Resend, and finally a
// sender that only logs, so that a site without mail still works.
func NewSender(log *slog.Logger, o Options) (Sender, error) {
	o.FillDefaults()
	switch {
	case o.SMTP.Host != "":
		return NewSMTPSender(o.From, o.SMTP, o.SendTimeout), nil
	case o.ResendKey != "":
		return NewResendSender(o.From, o.ResendKey), nil
	default:
		log.Warn("mail transport not configured, notifications will only be logged")
		return &LogSender{log: log}, nil
	}
}

type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients")
	}
	s.log.Info("mail not sent, no transport",
		slog.String("to", strings.Join(msg.To, ",")),
		slog.String("subject", msg.Subject),
	)
	return nil
}
