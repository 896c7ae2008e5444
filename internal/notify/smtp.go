package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

type SMTPOptions struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Secure   bool   `toml:"secure"`
	Username string `toml:"username"`
	Password string `toml:"-"`
}

func (o *SMTPOptions) FillDefaults() {
	if o.Port == 0 {
		o.Port = 587
	}
}

type SMTPSender struct {
	from    string
	o       SMTPOptions
	timeout time.Duration
}

func NewSMTPSender(from string, o SMTPOptions, timeout time.Duration) *SMTPSender {
	o.FillDefaults()
	return &SMTPSender{from: from, o: o, timeout: timeout}
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.o.Port),
		mail.WithTimeout(s.timeout),
	}
	if s.o.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if s.o.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.o.Username),
			mail.WithPassword(s.o.Password),
		)
	}
	return opts
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	c, err := mail.NewClient(s.o.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
